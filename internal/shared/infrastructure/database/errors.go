package database

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// OverlapConstraintPrefix prefixes the names of every storage constraint
// that rejects overlapping occupying bookings. The SQLite triggers raise it
// as their abort message; the PostgreSQL exclusion constraints use it as
// their name.
const OverlapConstraintPrefix = "booking_overlap"

// pgExclusionViolation is SQLSTATE exclusion_violation.
const pgExclusionViolation = "23P01"

// IsNoRows matches both pgx and database/sql no-row errors.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

// OverlapViolation reports whether err is a storage-level overlap rejection
// and returns the constraint or trigger message that fired.
func OverlapViolation(err error) (string, bool) {
	if err == nil {
		return "", false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgExclusionViolation && strings.HasPrefix(pgErr.ConstraintName, OverlapConstraintPrefix) {
			return pgErr.ConstraintName, true
		}
		return "", false
	}

	msg := err.Error()
	if idx := strings.Index(msg, OverlapConstraintPrefix); idx >= 0 {
		name := msg[idx:]
		if end := strings.IndexAny(name, " ()\"'"); end > 0 {
			name = name[:end]
		}
		return name, true
	}
	return "", false
}
