package mcp

import (
	"context"
	"errors"
	"strings"

	"github.com/felixgeelhaar/mcp-go"
	bookingCommands "github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	bookingDomain "github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

type bookingCheckInput struct {
	EmployeeID       string `json:"employee_id,omitempty"`
	ResourceID       string `json:"resource_id,omitempty"`
	Start            string `json:"start" jsonschema:"required"`
	End              string `json:"end" jsonschema:"required"`
	ExcludeBookingID string `json:"exclude_booking_id,omitempty"`
}

type bookingCreateInput struct {
	LocationID string `json:"location_id" jsonschema:"required"`
	EmployeeID string `json:"employee_id,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	Start      string `json:"start" jsonschema:"required"`
	End        string `json:"end" jsonschema:"required"`
	Status     string `json:"status,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

type bookingIDInput struct {
	BookingID string `json:"booking_id" jsonschema:"required"`
	Reason    string `json:"reason,omitempty"`
}

type bookingStatusInput struct {
	BookingID string `json:"booking_id" jsonschema:"required"`
	Status    string `json:"status" jsonschema:"required"`
	Reason    string `json:"reason,omitempty"`
}

type bookingListInput struct {
	LocationID string `json:"location_id" jsonschema:"required"`
	EmployeeID string `json:"employee_id,omitempty"`
	ResourceID string `json:"resource_id,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Status     string `json:"status,omitempty"`
	Limit      int    `json:"limit,omitempty"`
}

// bookingCreateOutput carries the conflict instead of an error so the
// client can show which booking is in the way.
type bookingCreateOutput struct {
	Created  bool                        `json:"created"`
	Booking  *bookingQueries.BookingDTO  `json:"booking,omitempty"`
	Conflict *bookingQueries.ConflictDTO `json:"conflict,omitempty"`
}

func registerBookingTools(srv *mcp.Server, deps ToolDependencies) error {
	srv.Tool("booking.check").
		Description("Check whether an employee, a resource, or both are free for an interval").
		Handler(deps.checkAvailability)

	srv.Tool("booking.create").
		Description("Book an employee and/or resource for an interval, rejecting overlaps").
		Handler(deps.createBooking)

	srv.Tool("booking.get").
		Description("Get a booking by ID").
		Handler(deps.getBooking)

	srv.Tool("booking.list").
		Description("List bookings at a location, optionally filtered by owner, interval and status").
		Handler(deps.listBookings)

	srv.Tool("booking.cancel").
		Description("Cancel a booking and release its interval").
		Handler(deps.cancelBooking)

	srv.Tool("booking.status").
		Description("Move a booking to another lifecycle status").
		Handler(deps.updateBookingStatus)

	return nil
}

func (d ToolDependencies) checkAvailability(ctx context.Context, input bookingCheckInput) (*bookingQueries.Availability, error) {
	start, err := parseTimestamp("start", input.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("end", input.End)
	if err != nil {
		return nil, err
	}
	exclude, err := parseOptionalUUID(input.ExcludeBookingID)
	if err != nil {
		return nil, err
	}
	return d.Container.CheckAvailabilityHandler.Handle(ctx, bookingQueries.CheckAvailabilityQuery{
		EmployeeID:       input.EmployeeID,
		ResourceID:       input.ResourceID,
		Start:            start,
		End:              end,
		ExcludeBookingID: exclude,
	})
}

func (d ToolDependencies) createBooking(ctx context.Context, input bookingCreateInput) (*bookingCreateOutput, error) {
	start, err := parseTimestamp("start", input.Start)
	if err != nil {
		return nil, err
	}
	end, err := parseTimestamp("end", input.End)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithActor(observability.NewRequestContext(ctx, ""), d.actor())
	result, err := d.Container.CreateBookingHandler.Handle(ctx, bookingCommands.CreateBookingCommand{
		LocationID: input.LocationID,
		EmployeeID: input.EmployeeID,
		ResourceID: input.ResourceID,
		Start:      start,
		End:        end,
		Status:     input.Status,
		Notes:      input.Notes,
		ActorID:    d.actor(),
	})
	if err != nil {
		var conflict *bookingDomain.ConflictError
		if errors.As(err, &conflict) {
			dto := bookingQueries.ConflictFromError(conflict)
			return &bookingCreateOutput{Created: false, Conflict: &dto}, nil
		}
		return nil, err
	}

	booking, err := d.Container.GetBookingHandler.Handle(ctx, bookingQueries.GetBookingQuery{BookingID: result.BookingID})
	if err != nil {
		return nil, err
	}
	return &bookingCreateOutput{Created: true, Booking: booking}, nil
}

func (d ToolDependencies) getBooking(ctx context.Context, input bookingIDInput) (*bookingQueries.BookingDTO, error) {
	id, err := parseUUID(input.BookingID)
	if err != nil {
		return nil, err
	}
	return d.Container.GetBookingHandler.Handle(ctx, bookingQueries.GetBookingQuery{BookingID: id})
}

func (d ToolDependencies) listBookings(ctx context.Context, input bookingListInput) ([]bookingQueries.BookingDTO, error) {
	from, err := parseOptionalTimestamp("from", input.From)
	if err != nil {
		return nil, err
	}
	to, err := parseOptionalTimestamp("to", input.To)
	if err != nil {
		return nil, err
	}
	var statuses []string
	if input.Status != "" {
		for _, s := range strings.Split(input.Status, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}
	return d.Container.ListBookingsHandler.Handle(ctx, bookingQueries.ListBookingsQuery{
		LocationID: input.LocationID,
		EmployeeID: input.EmployeeID,
		ResourceID: input.ResourceID,
		From:       from,
		To:         to,
		Statuses:   statuses,
		Limit:      input.Limit,
	})
}

func (d ToolDependencies) cancelBooking(ctx context.Context, input bookingIDInput) (map[string]any, error) {
	id, err := parseUUID(input.BookingID)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithActor(observability.NewRequestContext(ctx, ""), d.actor())
	if err := d.Container.CancelBookingHandler.Handle(ctx, bookingCommands.CancelBookingCommand{
		BookingID: id,
		Reason:    input.Reason,
		ActorID:   d.actor(),
	}); err != nil {
		return nil, err
	}
	return map[string]any{"booking_id": id.String(), "status": string(bookingDomain.StatusCancelled)}, nil
}

func (d ToolDependencies) updateBookingStatus(ctx context.Context, input bookingStatusInput) (map[string]any, error) {
	id, err := parseUUID(input.BookingID)
	if err != nil {
		return nil, err
	}
	ctx = observability.WithActor(observability.NewRequestContext(ctx, ""), d.actor())
	status, err := d.Container.UpdateBookingStatusHandler.Handle(ctx, bookingCommands.UpdateBookingStatusCommand{
		BookingID: id,
		Status:    input.Status,
		Reason:    input.Reason,
		ActorID:   d.actor(),
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"booking_id": id.String(), "status": string(status)}, nil
}
