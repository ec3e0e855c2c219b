package queries

import (
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/google/uuid"
)

// BookingDTO is the read model returned by the booking queries.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	LocationID string    `json:"location_id"`
	EmployeeID string    `json:"employee_id,omitempty"`
	ResourceID string    `json:"resource_id,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Status     string    `json:"status"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toDTO(b *domain.Booking) BookingDTO {
	return BookingDTO{
		ID:         b.ID(),
		LocationID: b.LocationID(),
		EmployeeID: b.EmployeeID(),
		ResourceID: b.ResourceID(),
		Start:      b.Start(),
		End:        b.End(),
		Status:     string(b.Status()),
		Notes:      b.Notes(),
		CreatedAt:  b.CreatedAt(),
		UpdatedAt:  b.UpdatedAt(),
	}
}

// ConflictDTO describes one overlapping booking.
type ConflictDTO struct {
	OwnerDimension    string    `json:"owner_dimension"`
	OwnerKey          string    `json:"owner_key"`
	ExistingStart     time.Time `json:"existing_start"`
	ExistingEnd       time.Time `json:"existing_end"`
	ExistingBookingID uuid.UUID `json:"existing_booking_id"`
}

// ConflictFromError converts a domain conflict for responses.
func ConflictFromError(err *domain.ConflictError) ConflictDTO {
	return ConflictDTO{
		OwnerDimension:    string(err.Owner.Dimension),
		OwnerKey:          err.Owner.ID,
		ExistingStart:     err.Existing.Start,
		ExistingEnd:       err.Existing.End,
		ExistingBookingID: err.ExistingID,
	}
}
