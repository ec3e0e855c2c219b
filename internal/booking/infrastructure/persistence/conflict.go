// Package persistence stores bookings in SQLite or PostgreSQL.
package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
)

type overlapFinder func(ctx context.Context, owner domain.OwnerKey, start, end time.Time) ([]*domain.Booking, error)

// conflictFromViolation turns a storage overlap rejection into the same
// *domain.ConflictError the application check produces. The colliding row
// is looked up through find; when it cannot be found the error still names
// the owner. ok is false when err is not an overlap rejection.
func conflictFromViolation(ctx context.Context, err error, b *domain.Booking, find overlapFinder) (conflict error, ok bool) {
	name, ok := database.OverlapViolation(err)
	if !ok {
		return nil, false
	}

	dim := domain.Dimension(strings.TrimPrefix(strings.TrimPrefix(name, database.OverlapConstraintPrefix), "_"))
	owner := domain.OwnerKey{Dimension: dim, ID: b.Owner(dim)}
	if owner.ID == "" {
		return &domain.ConflictError{Owner: owner, Candidate: b.Interval()}, true
	}

	existing, findErr := find(ctx, owner, b.Start(), b.End())
	if findErr == nil {
		if conflict := domain.CheckOwnerConflict(owner, b.Interval(), existing, b.ID()); conflict != nil {
			return conflict, true
		}
	}
	return &domain.ConflictError{Owner: owner, Candidate: b.Interval()}, true
}

// NewRepository picks the implementation matching conn's driver.
func NewRepository(conn database.Connection) domain.Repository {
	if conn.Driver() == database.DriverPostgres {
		return NewPostgresRepository(conn)
	}
	return NewSQLiteRepository(conn)
}

func statusStrings(statuses []domain.Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
