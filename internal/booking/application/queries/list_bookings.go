package queries

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
)

// ErrLocationRequired is returned when a listing names no location.
var ErrLocationRequired = errors.New("location is required")

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

// ListBookingsQuery lists bookings at a location whose interval overlaps
// [From, To). Zero bounds are open.
type ListBookingsQuery struct {
	LocationID string
	EmployeeID string
	ResourceID string
	From       time.Time
	To         time.Time
	Statuses   []string
	Limit      int
}

type ListBookingsHandler struct {
	repo domain.Repository
}

func NewListBookingsHandler(repo domain.Repository) *ListBookingsHandler {
	return &ListBookingsHandler{repo: repo}
}

func (h *ListBookingsHandler) Handle(ctx context.Context, q ListBookingsQuery) ([]BookingDTO, error) {
	if q.LocationID == "" {
		return nil, ErrLocationRequired
	}
	if !q.From.IsZero() && !q.To.IsZero() && !q.To.After(q.From) {
		return nil, domain.ErrInvalidInterval
	}

	filter := domain.ListFilter{
		LocationID: q.LocationID,
		EmployeeID: q.EmployeeID,
		ResourceID: q.ResourceID,
		From:       q.From.UTC(),
		To:         q.To.UTC(),
		Limit:      clampLimit(q.Limit),
	}
	for _, s := range q.Statuses {
		st, err := domain.ParseStatus(s)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, st)
	}

	bookings, err := h.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]BookingDTO, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toDTO(b))
	}
	return out, nil
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultListLimit
	case limit > maxListLimit:
		return maxListLimit
	default:
		return limit
	}
}
