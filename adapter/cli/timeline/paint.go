package timeline

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	"github.com/spf13/cobra"
)

var (
	paintEntities   string
	paintKind       string
	paintTemplate   string
	paintLabel      string
	paintMode       string
	expectedVersion int
)

var paintCmd = &cobra.Command{
	Use:   "paint [cell]",
	Short: "Paint a cell of the draft",
	Long: `Paint a cell given as "dayKey|slot" or "dayKey|day" for a whole day.

Painting the same owner over an already covered range erases it again
unless --mode add is given.

Examples:
  shiftgrid timeline paint "2024-03-04|2" -e alice --kind work
  shiftgrid timeline paint "2024-03-04|0" -e alice,bob --template early
  shiftgrid timeline paint "2024-03-04|day" -e alice --kind vacation --mode erase`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PaintCellHandler == nil {
			return cli.ErrNotInitialized
		}

		result, err := app.PaintCellHandler.Handle(cmd.Context(), commands.PaintCellCommand{
			LocationID:      locationID,
			SessionID:       sessionID,
			Cell:            args[0],
			EntityIDs:       cli.SplitList(paintEntities),
			Kind:            paintKind,
			TemplateID:      paintTemplate,
			Label:           paintLabel,
			Mode:            paintMode,
			ExpectedVersion: expectedVersion,
		})
		if err != nil {
			return fmt.Errorf("failed to paint: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, result)
		}

		switch {
		case !result.Applied:
			fmt.Fprintln(out, "Nothing painted")
		case result.Erased:
			fmt.Fprintf(out, "Erased %s\n", strings.Join(result.AffectedCells, ", "))
		default:
			fmt.Fprintf(out, "Painted %s as %s\n", strings.Join(result.AffectedCells, ", "), result.Assignment.Label)
		}
		printDraft(out, result.Draft)
		return nil
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview [cell]",
	Short: "Show what painting a cell would do",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ResolvePaintPreviewHandler == nil {
			return cli.ErrNotInitialized
		}

		preview, err := app.ResolvePaintPreviewHandler.Handle(cmd.Context(), previewQuery(args[0]))
		if err != nil {
			return fmt.Errorf("failed to preview: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, preview)
		}
		switch {
		case !preview.Resolved:
			fmt.Fprintln(out, "Cell does not resolve to a paintable range")
		case !preview.WouldApply:
			fmt.Fprintln(out, "Painting would change nothing")
		case preview.WouldErase:
			fmt.Fprintf(out, "Would erase %s\n", strings.Join(preview.AffectedCells, ", "))
		default:
			fmt.Fprintf(out, "Would paint %s as %s\n", strings.Join(preview.AffectedCells, ", "), preview.Assignment.Label)
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{paintCmd, previewCmd} {
		c.Flags().StringVarP(&paintEntities, "entities", "e", "", "comma separated employee or resource ids")
		c.Flags().StringVarP(&paintKind, "kind", "k", "", "shift kind (work, vacation, sick, training, off)")
		c.Flags().StringVarP(&paintTemplate, "template", "t", "", "shift template id; wins over --kind")
		c.Flags().StringVar(&paintLabel, "label", "", "label override")
		c.Flags().StringVar(&paintMode, "mode", "", "paint mode (toggle, add, erase)")
	}
	paintCmd.Flags().IntVar(&expectedVersion, "expect-version", 0, "fail unless the draft is at this version")
}
