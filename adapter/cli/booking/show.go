package booking

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [booking-id]",
	Short: "Show a booking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetBookingHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid booking ID: %w", err)
		}

		b, err := app.GetBookingHandler.Handle(cmd.Context(), queries.GetBookingQuery{BookingID: id})
		if err != nil {
			return fmt.Errorf("failed to get booking: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, b)
		}
		printBooking(out, *b)
		if b.Notes != "" {
			fmt.Fprintf(out, "  notes: %s\n", b.Notes)
		}
		return nil
	},
}
