package domain

import (
	"errors"
	"strings"
	"time"

	sharedDomain "github.com/felixgeelhaar/shiftgrid/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidInterval   = errors.New("booking end must be after start")
	ErrNoOwner           = errors.New("booking needs an employee or a resource")
	ErrLocationRequired  = errors.New("booking location is required")
	ErrInvalidStatus     = errors.New("invalid booking status")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrBookingNotFound   = errors.New("booking not found")
)

// Booking is an appointment holding an employee, a resource, or both for a
// time interval at a location.
type Booking struct {
	sharedDomain.BaseAggregateRoot
	locationID string
	employeeID string
	resourceID string
	interval   Interval
	status     Status
	notes      string
}

// NewBookingParams holds the input of NewBooking.
type NewBookingParams struct {
	LocationID string
	EmployeeID string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     Status
	Notes      string
}

// NewBooking validates params and raises BookingCreated. An empty status
// defaults to booked.
func NewBooking(p NewBookingParams) (*Booking, error) {
	if strings.TrimSpace(p.LocationID) == "" {
		return nil, ErrLocationRequired
	}
	if strings.TrimSpace(p.EmployeeID) == "" && strings.TrimSpace(p.ResourceID) == "" {
		return nil, ErrNoOwner
	}
	interval, err := NewInterval(p.Start.UTC(), p.End.UTC())
	if err != nil {
		return nil, err
	}

	status := p.Status
	if status == "" {
		status = StatusBooked
	}
	if status != StatusPending && status != StatusBooked {
		return nil, ErrInvalidStatus
	}

	b := &Booking{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		locationID:        p.LocationID,
		employeeID:        strings.TrimSpace(p.EmployeeID),
		resourceID:        strings.TrimSpace(p.ResourceID),
		interval:          interval,
		status:            status,
		notes:             p.Notes,
	}
	b.AddDomainEvent(NewBookingCreated(b))
	return b, nil
}

// RehydrateBooking restores a booking loaded from storage without raising
// events.
func RehydrateBooking(
	id uuid.UUID,
	locationID, employeeID, resourceID string,
	start, end time.Time,
	status Status,
	notes string,
	createdAt, updatedAt time.Time,
	version int,
) *Booking {
	return &Booking{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), version),
		locationID: locationID,
		employeeID: employeeID,
		resourceID: resourceID,
		interval:   Interval{Start: start.UTC(), End: end.UTC()},
		status:     status,
		notes:      notes,
	}
}

func (b *Booking) LocationID() string { return b.locationID }
func (b *Booking) EmployeeID() string { return b.employeeID }
func (b *Booking) ResourceID() string { return b.resourceID }
func (b *Booking) Interval() Interval { return b.interval }
func (b *Booking) Start() time.Time   { return b.interval.Start }
func (b *Booking) End() time.Time     { return b.interval.End }
func (b *Booking) Status() Status     { return b.status }
func (b *Booking) Notes() string      { return b.notes }

// IsOccupying reports whether the booking blocks overlapping bookings.
func (b *Booking) IsOccupying() bool {
	return b.status.IsOccupying()
}

// OwnerKeys lists the dimensions this booking occupies.
func (b *Booking) OwnerKeys() []OwnerKey {
	keys := make([]OwnerKey, 0, 2)
	if b.employeeID != "" {
		keys = append(keys, OwnerKey{Dimension: DimensionEmployee, ID: b.employeeID})
	}
	if b.resourceID != "" {
		keys = append(keys, OwnerKey{Dimension: DimensionResource, ID: b.resourceID})
	}
	return keys
}

// Owner returns the id the booking holds in dimension d, or "".
func (b *Booking) Owner(d Dimension) string {
	switch d {
	case DimensionEmployee:
		return b.employeeID
	case DimensionResource:
		return b.resourceID
	default:
		return ""
	}
}

// Confirm moves a pending booking to booked.
func (b *Booking) Confirm() error { return b.transition(StatusBooked, "") }

// Complete marks a booked appointment as done.
func (b *Booking) Complete() error { return b.transition(StatusCompleted, "") }

// Cancel releases the booking's interval.
func (b *Booking) Cancel(reason string) error { return b.transition(StatusCancelled, reason) }

// Reject declines a pending booking.
func (b *Booking) Reject(reason string) error { return b.transition(StatusRejected, reason) }

// ChangeStatus dispatches to the matching transition.
func (b *Booking) ChangeStatus(next Status, reason string) error {
	return b.transition(next, reason)
}

func (b *Booking) transition(next Status, reason string) error {
	if !b.status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	prev := b.status
	b.status = next
	b.Touch()
	b.IncrementVersion()

	if next == StatusCancelled {
		b.AddDomainEvent(NewBookingCancelled(b, reason))
	}
	b.AddDomainEvent(NewBookingStatusChanged(b, prev, reason))
	return nil
}
