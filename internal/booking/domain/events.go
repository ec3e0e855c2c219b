package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/shiftgrid/internal/shared/domain"
)

const (
	AggregateType = "Booking"

	RoutingKeyBookingCreated       = "booking.created"
	RoutingKeyBookingCancelled     = "booking.cancelled"
	RoutingKeyBookingStatusChanged = "booking.status_changed"
)

// BookingCreated is raised when a booking is accepted.
type BookingCreated struct {
	sharedDomain.BaseEvent
	LocationID string    `json:"location_id"`
	EmployeeID string    `json:"employee_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
}

func NewBookingCreated(b *Booking) *BookingCreated {
	return &BookingCreated{
		BaseEvent:  sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingCreated),
		LocationID: b.LocationID(),
		EmployeeID: b.EmployeeID(),
		ResourceID: b.ResourceID(),
		Start:      b.Start(),
		End:        b.End(),
		Status:     string(b.Status()),
	}
}

// BookingCancelled is raised when a booking releases its interval.
type BookingCancelled struct {
	sharedDomain.BaseEvent
	LocationID string `json:"location_id"`
	Reason     string `json:"reason,omitempty"`
}

func NewBookingCancelled(b *Booking, reason string) *BookingCancelled {
	return &BookingCancelled{
		BaseEvent:  sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingCancelled),
		LocationID: b.LocationID(),
		Reason:     reason,
	}
}

// BookingStatusChanged is raised on every lifecycle transition.
type BookingStatusChanged struct {
	sharedDomain.BaseEvent
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason,omitempty"`
}

func NewBookingStatusChanged(b *Booking, from Status, reason string) *BookingStatusChanged {
	return &BookingStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(b.ID(), AggregateType, RoutingKeyBookingStatusChanged),
		From:      string(from),
		To:        string(b.Status()),
		Reason:    reason,
	}
}
