package booking

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/spf13/cobra"
)

var (
	listLocation string
	listEmployee string
	listResource string
	listFrom     string
	listTo       string
	listStatus   string
	listLimit    int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookings at a location",
	Long: `List bookings at a location ordered by start time.

Examples:
  shiftgrid booking list -l berlin
  shiftgrid booking list -l berlin --employee alice --status booked,pending
  shiftgrid booking list -l berlin --from 2024-03-04T00:00:00Z --to 2024-03-05T00:00:00Z`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListBookingsHandler == nil {
			return cli.ErrNotInitialized
		}

		from, err := parseOptionalTime("from", listFrom)
		if err != nil {
			return err
		}
		to, err := parseOptionalTime("to", listTo)
		if err != nil {
			return err
		}

		bookings, err := app.ListBookingsHandler.Handle(cmd.Context(), queries.ListBookingsQuery{
			LocationID: listLocation,
			EmployeeID: listEmployee,
			ResourceID: listResource,
			From:       from,
			To:         to,
			Statuses:   cli.SplitList(listStatus),
			Limit:      listLimit,
		})
		if err != nil {
			return fmt.Errorf("failed to list bookings: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			if bookings == nil {
				bookings = []queries.BookingDTO{}
			}
			return cli.PrintJSON(out, bookings)
		}
		if len(bookings) == 0 {
			fmt.Fprintln(out, "No bookings found.")
			return nil
		}
		for _, b := range bookings {
			printBooking(out, b)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listLocation, "location", "l", "", "location id")
	listCmd.Flags().StringVar(&listEmployee, "employee", "", "only this employee")
	listCmd.Flags().StringVar(&listResource, "resource", "", "only this resource")
	listCmd.Flags().StringVar(&listFrom, "from", "", "overlapping from (RFC3339)")
	listCmd.Flags().StringVar(&listTo, "to", "", "overlapping until (RFC3339)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "comma separated statuses")
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 0, "maximum results (default 200)")
}
