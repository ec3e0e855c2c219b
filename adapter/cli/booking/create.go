package booking

import (
	"errors"
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/spf13/cobra"
)

var (
	createLocation string
	createEmployee string
	createResource string
	createStart    string
	createEnd      string
	createStatus   string
	createNotes    string
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a booking",
	Long: `Book an employee, a resource, or both for [start, end).

Examples:
  shiftgrid booking create -l berlin --employee alice --start 2024-03-04T09:00:00Z --end 2024-03-04T17:00:00Z
  shiftgrid booking create -l berlin --resource room-1 --start 2024-03-04T09:00:00Z --end 2024-03-04T10:00:00Z --status pending`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateBookingHandler == nil {
			return cli.ErrNotInitialized
		}

		start, err := parseTime("start", createStart)
		if err != nil {
			return err
		}
		end, err := parseTime("end", createEnd)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		result, err := app.CreateBookingHandler.Handle(ctx, commands.CreateBookingCommand{
			LocationID: createLocation,
			EmployeeID: createEmployee,
			ResourceID: createResource,
			Start:      start,
			End:        end,
			Status:     createStatus,
			Notes:      createNotes,
			ActorID:    observability.ActorFromContext(ctx),
		})
		out := cmd.OutOrStdout()
		if err != nil {
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				fmt.Fprintln(out, "Booking rejected:")
				printConflict(out, queries.ConflictFromError(conflict))
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		if asJSON {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Booking created: %s\n", result.BookingID)
		fmt.Fprintf(out, "  status: %s\n", result.Status)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVarP(&createLocation, "location", "l", "", "location id")
	createCmd.Flags().StringVar(&createEmployee, "employee", "", "employee id")
	createCmd.Flags().StringVar(&createResource, "resource", "", "resource id")
	createCmd.Flags().StringVar(&createStart, "start", "", "start time (RFC3339)")
	createCmd.Flags().StringVar(&createEnd, "end", "", "end time (RFC3339)")
	createCmd.Flags().StringVar(&createStatus, "status", "", "initial status (pending, booked)")
	createCmd.Flags().StringVar(&createNotes, "notes", "", "free text notes")
}
