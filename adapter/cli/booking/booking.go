package booking

import (
	"fmt"
	"io"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	"github.com/spf13/cobra"
)

var asJSON bool

// Cmd is the booking command group
var Cmd = &cobra.Command{
	Use:   "booking",
	Short: "Book employees and resources",
	Long: `Create, list, cancel and check bookings. A booking holds an employee,
a resource, or both for a half-open interval and is rejected when it
overlaps another active booking of the same employee or resource.`,
}

func init() {
	Cmd.PersistentFlags().BoolVar(&asJSON, "json", false, "output as JSON")

	Cmd.AddCommand(createCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(cancelCmd)
	Cmd.AddCommand(statusCmd)
	Cmd.AddCommand(checkCmd)
}

func parseTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("--%s is required", name)
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s (use RFC3339, e.g. 2024-03-04T09:00:00Z): %w", name, err)
	}
	return t, nil
}

func parseOptionalTime(name, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return parseTime(name, value)
}

func owner(b queries.BookingDTO) string {
	switch {
	case b.EmployeeID != "" && b.ResourceID != "":
		return b.EmployeeID + " + " + b.ResourceID
	case b.EmployeeID != "":
		return b.EmployeeID
	default:
		return b.ResourceID
	}
}

func printBooking(w io.Writer, b queries.BookingDTO) {
	fmt.Fprintf(w, "%s  %-9s  %s - %s  %s @ %s\n",
		b.ID, b.Status, b.Start.Format(time.RFC3339), b.End.Format(time.RFC3339), owner(b), b.LocationID)
}

func printConflict(w io.Writer, c queries.ConflictDTO) {
	fmt.Fprintf(w, "  %s %s already booked %s - %s by %s\n",
		c.OwnerDimension, c.OwnerKey, c.ExistingStart.Format(time.RFC3339), c.ExistingEnd.Format(time.RFC3339), c.ExistingBookingID)
}
