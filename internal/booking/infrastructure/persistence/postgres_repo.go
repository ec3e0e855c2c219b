package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// PostgresRepository implements domain.Repository on PostgreSQL. Overlaps
// are rejected by the booking_overlap_* exclusion constraints.
type PostgresRepository struct {
	conn database.Connection
}

func NewPostgresRepository(conn database.Connection) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

const pgColumns = `id, location_id, employee_id, resource_id, start_at, end_at, status, notes,
    version, created_at, updated_at`

const pgUpsert = `INSERT INTO bookings (` + pgColumns + `)
    VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
    ON CONFLICT (id) DO UPDATE SET
        employee_id = EXCLUDED.employee_id,
        resource_id = EXCLUDED.resource_id,
        start_at    = EXCLUDED.start_at,
        end_at      = EXCLUDED.end_at,
        status      = EXCLUDED.status,
        notes       = EXCLUDED.notes,
        version     = EXCLUDED.version,
        updated_at  = EXCLUDED.updated_at`

// Save runs the upsert under a savepoint when inside a transaction, so a
// constraint failure leaves the transaction usable for the conflict lookup.
func (r *PostgresRepository) Save(ctx context.Context, b *domain.Booking) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	inTx := database.TxFromContext(ctx) != nil

	if inTx {
		if _, err := exec.Exec(ctx, `SAVEPOINT booking_save`); err != nil {
			return fmt.Errorf("savepoint: %w", err)
		}
	}

	_, err := exec.Exec(ctx, pgUpsert,
		b.ID(),
		b.LocationID(),
		b.EmployeeID(),
		b.ResourceID(),
		b.Start(),
		b.End(),
		string(b.Status()),
		b.Notes(),
		b.Version(),
		b.CreatedAt(),
		b.UpdatedAt(),
	)
	if err != nil {
		if inTx {
			if _, rbErr := exec.Exec(ctx, `ROLLBACK TO SAVEPOINT booking_save`); rbErr != nil {
				return fmt.Errorf("save booking: %w", err)
			}
		}
		if conflict, ok := conflictFromViolation(ctx, err, b, r.FindOccupyingOverlaps); ok {
			return conflict
		}
		return fmt.Errorf("save booking: %w", err)
	}

	if inTx {
		if _, err := exec.Exec(ctx, `RELEASE SAVEPOINT booking_save`); err != nil {
			return fmt.Errorf("release savepoint: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Booking, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)
	b, err := scanPostgresBooking(exec.QueryRow(ctx, `SELECT `+pgColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) FindOccupyingOverlaps(ctx context.Context, owner domain.OwnerKey, start, end time.Time) ([]*domain.Booking, error) {
	column, err := ownerColumn(owner.Dimension)
	if err != nil {
		return nil, err
	}
	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, `SELECT `+pgColumns+` FROM bookings
        WHERE `+column+` = $1
          AND status IN ('pending', 'booked', 'completed')
          AND tstzrange(start_at, end_at, '[)') && tstzrange($2, $3, '[)')
        ORDER BY start_at, id`,
		owner.ID, start, end)
	if err != nil {
		return nil, fmt.Errorf("query overlaps: %w", err)
	}
	return collectPostgres(rows)
}

func (r *PostgresRepository) List(ctx context.Context, f domain.ListFilter) ([]*domain.Booking, error) {
	var (
		where = []string{"location_id = $1"}
		args  = []any{f.LocationID}
	)
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if f.EmployeeID != "" {
		where = append(where, "employee_id = "+arg(f.EmployeeID))
	}
	if f.ResourceID != "" {
		where = append(where, "resource_id = "+arg(f.ResourceID))
	}
	if !f.To.IsZero() {
		where = append(where, "start_at < "+arg(f.To))
	}
	if !f.From.IsZero() {
		where = append(where, "end_at > "+arg(f.From))
	}
	if len(f.Statuses) > 0 {
		where = append(where, "status = ANY("+arg(statusStrings(f.Statuses))+")")
	}
	query := `SELECT ` + pgColumns + ` FROM bookings WHERE ` + strings.Join(where, " AND ") + ` ORDER BY start_at, id`
	if f.Limit > 0 {
		query += ` LIMIT ` + arg(f.Limit)
	}

	exec := database.ExecutorFromContext(ctx, r.conn)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return collectPostgres(rows)
}

func collectPostgres(rows database.Rows) ([]*domain.Booking, error) {
	defer rows.Close()
	var out []*domain.Booking
	for rows.Next() {
		b, err := scanPostgresBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanPostgresBooking(row database.Row) (*domain.Booking, error) {
	var (
		id                               uuid.UUID
		location, employee, resource     string
		start, end, createdAt, updatedAt time.Time
		status, notes                    string
		version                          int
	)
	if err := row.Scan(&id, &location, &employee, &resource, &start, &end, &status, &notes,
		&version, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}
	return domain.RehydrateBooking(id, location, employee, resource, start, end, st, notes,
		createdAt, updatedAt, version), nil
}
