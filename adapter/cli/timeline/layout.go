package timeline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/spf13/cobra"
)

var (
	segmentsFile       string
	segmentsMaxColumns int
	segmentsNoMerge    bool
)

var layoutCmd = &cobra.Command{
	Use:   "layout [day]",
	Short: "Lay out one day of the draft as columns",
	Long: `Lay out the draft blocks of one day as time segments, each with the
entities active in it side by side.

Examples:
  shiftgrid timeline layout 2024-03-04
  shiftgrid timeline layout 2024-03-04 --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetDayLayoutHandler == nil {
			return cli.ErrNotInitialized
		}

		view, err := app.GetDayLayoutHandler.Handle(cmd.Context(), queries.GetDayLayoutQuery{
			LocationID: locationID,
			SessionID:  sessionID,
			DayKey:     args[0],
		})
		if err != nil {
			return fmt.Errorf("failed to lay out day: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, view)
		}
		fmt.Fprintf(out, "%s (draft v%d, %02d:00 + %dh)\n", view.DayKey, view.Version, view.Window.StartHour, view.Window.HoursCount)
		printSegments(out, view.Segments)
		return nil
	},
}

var segmentsCmd = &cobra.Command{
	Use:   "segments",
	Short: "Compute segments for blocks read from JSON",
	Long: `Read a JSON array of blocks ({"key","name","start","end"}) from a file
or stdin and print the resulting segments.

Examples:
  shiftgrid timeline segments --file blocks.json
  cat blocks.json | shiftgrid timeline segments --max-columns 3`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ComputeSegmentsHandler == nil {
			return cli.ErrNotInitialized
		}

		var r io.Reader = cmd.InOrStdin()
		if segmentsFile != "" && segmentsFile != "-" {
			data, err := security.ReadFile(segmentsFile)
			if err != nil {
				return fmt.Errorf("failed to read blocks file: %w", err)
			}
			r = bytes.NewReader(data)
		}

		var blocks []layout.SegmentBlock
		if err := json.NewDecoder(r).Decode(&blocks); err != nil {
			return fmt.Errorf("failed to decode blocks: %w", err)
		}

		q := queries.ComputeSegmentsQuery{Blocks: blocks}
		if cmd.Flags().Changed("max-columns") {
			q.MaxColumns = &segmentsMaxColumns
		}
		if segmentsNoMerge {
			merge := false
			q.MergeAdjacent = &merge
		}

		segments, err := app.ComputeSegmentsHandler.Handle(cmd.Context(), q)
		if err != nil {
			return fmt.Errorf("failed to compute segments: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, segments)
		}
		printSegments(out, segments)
		return nil
	},
}

func printSegments(w io.Writer, segments []layout.Segment) {
	if len(segments) == 0 {
		fmt.Fprintln(w, "  no segments")
		return
	}
	for _, seg := range segments {
		names := make([]string, 0, len(seg.Columns))
		for _, col := range seg.Columns {
			names = append(names, fmt.Sprintf("%s(%.0f%%)", col.Name, col.WidthPct))
		}
		fmt.Fprintf(w, "  [%g,%g) %s\n", seg.Start, seg.End, strings.Join(names, " | "))
	}
}

func init() {
	segmentsCmd.Flags().StringVarP(&segmentsFile, "file", "f", "", "blocks JSON file, - for stdin")
	segmentsCmd.Flags().IntVar(&segmentsMaxColumns, "max-columns", 0, "column limit (0 = unlimited)")
	segmentsCmd.Flags().BoolVar(&segmentsNoMerge, "no-merge", false, "keep adjacent segments with equal columns apart")
}
