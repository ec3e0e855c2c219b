package timeline

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/spf13/cobra"
)

var (
	locationID string
	sessionID  string
	asJSON     bool
)

// Cmd is the timeline command group
var Cmd = &cobra.Command{
	Use:   "timeline",
	Short: "Paint shift drafts and lay out days",
	Long: `Paint shifts onto a location's draft grid, undo gestures and lay out
a day as side-by-side columns.

Drafts are keyed by location and session. Without Redis they live only
for the lifetime of the process.`,
}

func init() {
	Cmd.PersistentFlags().StringVarP(&locationID, "location", "l", "default", "location id")
	Cmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "cli", "draft session id")
	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output as JSON")

	Cmd.AddCommand(paintCmd)
	Cmd.AddCommand(previewCmd)
	Cmd.AddCommand(undoCmd)
	Cmd.AddCommand(clearCmd)
	Cmd.AddCommand(layoutCmd)
	Cmd.AddCommand(segmentsCmd)
}

func printDraft(w io.Writer, d domain.Draft) {
	fmt.Fprintf(w, "Draft v%d (%d undo steps)\n", d.Version, d.UndoDepth)
	if len(d.Blocks) == 0 {
		fmt.Fprintln(w, "  no blocks")
		return
	}
	for _, b := range d.Blocks {
		fmt.Fprintf(w, "  %s [%d,%d) %s %v\n", b.DayKey, b.StartIndex, b.EndIndex, b.Label, b.EntityIDs)
	}
}
