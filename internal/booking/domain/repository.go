package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ListFilter narrows ListBookings. Zero fields are ignored.
type ListFilter struct {
	LocationID string
	EmployeeID string
	ResourceID string
	From       time.Time
	To         time.Time
	Statuses   []Status
	Limit      int
}

// Repository persists bookings. Implementations pick up the transaction
// carried by ctx.
type Repository interface {
	// Save inserts or updates a booking. Implementations translate storage
	// level overlap violations into ErrBookingConflict.
	Save(ctx context.Context, booking *Booking) error

	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindOccupyingOverlaps returns occupying bookings held by owner that
	// overlap [start, end).
	FindOccupyingOverlaps(ctx context.Context, owner OwnerKey, start, end time.Time) ([]*Booking, error)

	List(ctx context.Context, filter ListFilter) ([]*Booking, error)
}
