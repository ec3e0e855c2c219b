package booking

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/adapter/cli"
	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	checkEmployee string
	checkResource string
	checkStart    string
	checkEnd      string
	checkExclude  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether an interval is free",
	Long: `Check whether an employee, a resource, or both are free for
[start, end) and list every booking in the way.

Examples:
  shiftgrid booking check --employee alice --start 2024-03-04T09:00:00Z --end 2024-03-04T12:00:00Z`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CheckAvailabilityHandler == nil {
			return cli.ErrNotInitialized
		}

		start, err := parseTime("start", checkStart)
		if err != nil {
			return err
		}
		end, err := parseTime("end", checkEnd)
		if err != nil {
			return err
		}
		var exclude uuid.UUID
		if checkExclude != "" {
			exclude, err = uuid.Parse(checkExclude)
			if err != nil {
				return fmt.Errorf("invalid --exclude booking ID: %w", err)
			}
		}

		availability, err := app.CheckAvailabilityHandler.Handle(cmd.Context(), queries.CheckAvailabilityQuery{
			EmployeeID:       checkEmployee,
			ResourceID:       checkResource,
			Start:            start,
			End:              end,
			ExcludeBookingID: exclude,
		})
		if err != nil {
			return fmt.Errorf("failed to check availability: %w", err)
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return cli.PrintJSON(out, availability)
		}
		if availability.Available {
			fmt.Fprintln(out, "Available")
			return nil
		}
		fmt.Fprintf(out, "Unavailable (%d conflicts)\n", len(availability.Conflicts))
		for _, c := range availability.Conflicts {
			printConflict(out, c)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVar(&checkEmployee, "employee", "", "employee id")
	checkCmd.Flags().StringVar(&checkResource, "resource", "", "resource id")
	checkCmd.Flags().StringVar(&checkStart, "start", "", "start time (RFC3339)")
	checkCmd.Flags().StringVar(&checkEnd, "end", "", "end time (RFC3339)")
	checkCmd.Flags().StringVar(&checkExclude, "exclude", "", "booking id to ignore, e.g. when rescheduling it")
}
