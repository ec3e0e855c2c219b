package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrBookingConflict is the sentinel every conflict error unwraps to.
var ErrBookingConflict = errors.New("booking conflicts with an existing booking")

// Dimension is an independent conflict space.
type Dimension string

const (
	DimensionEmployee Dimension = "employee"
	DimensionResource Dimension = "resource"
)

// OwnerKey identifies who or what a booking holds.
type OwnerKey struct {
	Dimension Dimension `json:"dimension"`
	ID        string    `json:"id"`
}

func (k OwnerKey) String() string {
	return string(k.Dimension) + ":" + k.ID
}

// ConflictError explains why a booking was refused.
type ConflictError struct {
	Owner      OwnerKey
	Candidate  Interval
	Existing   Interval
	ExistingID uuid.UUID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s is already booked from %s to %s",
		e.Owner.Dimension, e.Owner.ID,
		e.Existing.Start.Format("2006-01-02T15:04Z07:00"),
		e.Existing.End.Format("2006-01-02T15:04Z07:00"))
}

func (e *ConflictError) Unwrap() error { return ErrBookingConflict }

// CheckOwnerConflict rejects candidate if any occupying booking held by
// owner overlaps it. Bookings held by other owners in the same dimension,
// and bookings equal to skip, are ignored.
func CheckOwnerConflict(owner OwnerKey, candidate Interval, existing []*Booking, skip uuid.UUID) error {
	for _, b := range existing {
		if b == nil || b.ID() == skip || !b.IsOccupying() {
			continue
		}
		if b.Owner(owner.Dimension) != owner.ID {
			continue
		}
		if b.Interval().Overlaps(candidate) {
			return &ConflictError{
				Owner:      owner,
				Candidate:  candidate,
				Existing:   b.Interval(),
				ExistingID: b.ID(),
			}
		}
	}
	return nil
}

// CheckConflicts runs CheckOwnerConflict for every dimension the candidate
// occupies, employee first.
func CheckConflicts(candidate *Booking, existing []*Booking) error {
	if !candidate.IsOccupying() {
		return nil
	}
	for _, owner := range candidate.OwnerKeys() {
		if err := CheckOwnerConflict(owner, candidate.Interval(), existing, candidate.ID()); err != nil {
			return err
		}
	}
	return nil
}
