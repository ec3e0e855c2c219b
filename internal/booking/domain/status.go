package domain

import "fmt"

// Status is the lifecycle state of a booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusBooked    Status = "booked"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRejected  Status = "rejected"
)

// ParseStatus validates a stored or user-supplied status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusBooked, StatusCompleted, StatusCancelled, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// OccupyingStatuses are the statuses that block overlapping bookings.
func OccupyingStatuses() []Status {
	return []Status{StatusPending, StatusBooked, StatusCompleted}
}

// IsOccupying reports whether the status counts toward conflict checks.
func (s Status) IsOccupying() bool {
	switch s {
	case StatusPending, StatusBooked, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusRejected
}

// CanTransitionTo encodes the booking lifecycle.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusBooked || next == StatusRejected || next == StatusCancelled
	case StatusBooked:
		return next == StatusCompleted || next == StatusCancelled
	default:
		return false
	}
}
