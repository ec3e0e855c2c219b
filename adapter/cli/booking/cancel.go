package booking

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	cancelReason string
	statusReason string
)

var cancelCmd = &cobra.Command{
	Use:   "cancel [booking-id]",
	Short: "Cancel a booking and release its interval",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CancelBookingHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid booking ID: %w", err)
		}

		ctx := cmd.Context()
		if err := app.CancelBookingHandler.Handle(ctx, commands.CancelBookingCommand{
			BookingID: id,
			Reason:    cancelReason,
			ActorID:   observability.ActorFromContext(ctx),
		}); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Booking cancelled: %s\n", id)
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status [booking-id] [status]",
	Short: "Move a booking to another status",
	Long: `Move a booking along its lifecycle:
pending -> booked | rejected | cancelled, booked -> completed | cancelled.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.UpdateBookingStatusHandler == nil {
			return cli.ErrNotInitialized
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid booking ID: %w", err)
		}

		ctx := cmd.Context()
		status, err := app.UpdateBookingStatusHandler.Handle(ctx, commands.UpdateBookingStatusCommand{
			BookingID: id,
			Status:    args[1],
			Reason:    statusReason,
			ActorID:   observability.ActorFromContext(ctx),
		})
		if err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Booking %s is now %s\n", id, status)
		return nil
	},
}

func init() {
	cancelCmd.Flags().StringVar(&cancelReason, "reason", "", "why the booking was cancelled")
	statusCmd.Flags().StringVar(&statusReason, "reason", "", "why the status changed")
}
