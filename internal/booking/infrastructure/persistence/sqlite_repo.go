package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLiteRepository implements domain.Repository on SQLite. Overlaps are
// rejected by the booking_overlap_* triggers.
type SQLiteRepository struct {
	conn database.Connection
}

func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

const sqliteColumns = `id, location_id, employee_id, resource_id, start_at, end_at, status, notes,
    version, created_at, updated_at`

const sqliteUpsert = `INSERT INTO bookings (` + sqliteColumns + `)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    ON CONFLICT (id) DO UPDATE SET
        employee_id = excluded.employee_id,
        resource_id = excluded.resource_id,
        start_at    = excluded.start_at,
        end_at      = excluded.end_at,
        status      = excluded.status,
        notes       = excluded.notes,
        version     = excluded.version,
        updated_at  = excluded.updated_at`

func (r *SQLiteRepository) Save(ctx context.Context, b *domain.Booking) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, sqliteUpsert,
		b.ID().String(),
		b.LocationID(),
		b.EmployeeID(),
		b.ResourceID(),
		database.FormatTextTime(b.Start()),
		database.FormatTextTime(b.End()),
		string(b.Status()),
		b.Notes(),
		b.Version(),
		database.FormatTextTime(b.CreatedAt()),
		database.FormatTextTime(b.UpdatedAt()),
	)
	if err != nil {
		if conflict, ok := conflictFromViolation(ctx, err, b, r.FindOccupyingOverlaps); ok {
			return conflict
		}
		return fmt.Errorf("save booking: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	row := exec.QueryRow(ctx, `SELECT `+sqliteColumns+` FROM bookings WHERE id = ?`, id.String())
	b, err := scanSQLiteBooking(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) FindOccupyingOverlaps(ctx context.Context, owner domain.OwnerKey, start, end time.Time) ([]*domain.Booking, error) {
	column, err := ownerColumn(owner.Dimension)
	if err != nil {
		return nil, err
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT `+sqliteColumns+` FROM bookings
        WHERE `+column+` = ?
          AND status IN ('pending', 'booked', 'completed')
          AND start_at < ? AND end_at > ?
        ORDER BY start_at, id`,
		owner.ID, database.FormatTextTime(end), database.FormatTextTime(start))
	if err != nil {
		return nil, fmt.Errorf("query overlaps: %w", err)
	}
	return collectSQLite(rows)
}

func (r *SQLiteRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Booking, error) {
	var (
		where = []string{"location_id = ?"}
		args  = []any{f.LocationID}
	)
	if f.EmployeeID != "" {
		where = append(where, "employee_id = ?")
		args = append(args, f.EmployeeID)
	}
	if f.ResourceID != "" {
		where = append(where, "resource_id = ?")
		args = append(args, f.ResourceID)
	}
	if !f.To.IsZero() {
		where = append(where, "start_at < ?")
		args = append(args, database.FormatTextTime(f.To))
	}
	if !f.From.IsZero() {
		where = append(where, "end_at > ?")
		args = append(args, database.FormatTextTime(f.From))
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status IN ("+strings.TrimSuffix(strings.Repeat("?, ", len(f.Statuses)), ", ")+")")
		for _, s := range statusStrings(f.Statuses) {
			args = append(args, s)
		}
	}
	query := `SELECT ` + sqliteColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_at, id`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return collectSQLite(rows)
}

func ownerColumn(d domain.Dimension) (string, error) {
	switch d {
	case domain.DimensionEmployee:
		return "employee_id", nil
	case domain.DimensionResource:
		return "resource_id", nil
	default:
		return "", fmt.Errorf("unknown owner dimension %q", d)
	}
}

func collectSQLite(rows database.Rows) ([]*domain.Booking, error) {
	defer rows.Close()
	var out []*domain.Booking
	for rows.Next() {
		b, err := scanSQLiteBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanSQLiteBooking(row database.Row) (*domain.Booking, error) {
	var (
		id, location, employee, resource string
		start, end, status, notes        string
		version                          int
		createdAt, updatedAt             string
	)
	if err := row.Scan(&id, &location, &employee, &resource, &start, &end, &status, &notes,
		&version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	bookingID, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	times := make([]time.Time, 4)
	for i, raw := range []string{start, end, createdAt, updatedAt} {
		if times[i], err = database.ParseTextTime(raw); err != nil {
			return nil, err
		}
	}
	return domain.RehydrateBooking(bookingID, location, employee, resource,
		times[0], times[1], st, notes, times[2], times[3], version), nil
}
