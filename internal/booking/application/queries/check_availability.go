package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/google/uuid"
)

// CheckAvailabilityQuery asks whether an interval is free for an employee,
// a resource, or both. ExcludeBookingID ignores one booking, e.g. the one
// being rescheduled.
type CheckAvailabilityQuery struct {
	EmployeeID       string
	ResourceID       string
	Start            time.Time
	End              time.Time
	ExcludeBookingID uuid.UUID
}

// Availability lists every overlapping occupying booking, grouped by the
// dimension that collided.
type Availability struct {
	Available bool          `json:"available"`
	Conflicts []ConflictDTO `json:"conflicts"`
}

// CheckAvailabilityHandler is the advisory pre-check run before a create.
// It reads outside a transaction, so a free answer can go stale; the
// create command re-checks.
type CheckAvailabilityHandler struct {
	repo domain.Repository
}

func NewCheckAvailabilityHandler(repo domain.Repository) *CheckAvailabilityHandler {
	return &CheckAvailabilityHandler{repo: repo}
}

func (h *CheckAvailabilityHandler) Handle(ctx context.Context, q CheckAvailabilityQuery) (*Availability, error) {
	candidate, err := domain.NewInterval(q.Start.UTC(), q.End.UTC())
	if err != nil {
		return nil, err
	}

	var owners []domain.OwnerKey
	if q.EmployeeID != "" {
		owners = append(owners, domain.OwnerKey{Dimension: domain.DimensionEmployee, ID: q.EmployeeID})
	}
	if q.ResourceID != "" {
		owners = append(owners, domain.OwnerKey{Dimension: domain.DimensionResource, ID: q.ResourceID})
	}
	if len(owners) == 0 {
		return nil, domain.ErrNoOwner
	}

	result := &Availability{Available: true, Conflicts: []ConflictDTO{}}
	for _, owner := range owners {
		existing, err := h.repo.FindOccupyingOverlaps(ctx, owner, candidate.Start, candidate.End)
		if err != nil {
			return nil, err
		}
		for _, b := range existing {
			if domain.CheckOwnerConflict(owner, candidate, []*domain.Booking{b}, q.ExcludeBookingID) == nil {
				continue
			}
			result.Available = false
			result.Conflicts = append(result.Conflicts, ConflictDTO{
				OwnerDimension:    string(owner.Dimension),
				OwnerKey:          owner.ID,
				ExistingStart:     b.Start(),
				ExistingEnd:       b.End(),
				ExistingBookingID: b.ID(),
			})
		}
	}
	return result, nil
}
