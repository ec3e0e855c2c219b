package timeline

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	"github.com/spf13/cobra"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last paint on the draft",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UndoPaintHandler == nil {
			return cli.ErrNotInitialized
		}

		draft, err := app.UndoPaintHandler.Handle(cmd.Context(), commands.UndoPaintCommand{
			LocationID: locationID,
			SessionID:  sessionID,
		})
		if err != nil {
			return fmt.Errorf("failed to undo: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, draft)
		}
		printDraft(out, draft)
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the draft and its undo history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ClearDraftHandler == nil {
			return cli.ErrNotInitialized
		}

		if err := app.ClearDraftHandler.Handle(cmd.Context(), commands.ClearDraftCommand{
			LocationID: locationID,
			SessionID:  sessionID,
		}); err != nil {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Draft %s:%s cleared\n", locationID, sessionID)
		return nil
	},
}
