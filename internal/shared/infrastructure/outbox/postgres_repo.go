package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
)

// PostgresRepository stores the outbox in PostgreSQL.
type PostgresRepository struct {
	conn database.Connection
}

// NewPostgresRepository creates an outbox repository on conn.
func NewPostgresRepository(conn database.Connection) *PostgresRepository {
	return &PostgresRepository{conn: conn}
}

func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `INSERT INTO outbox
        (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		msg.EventID, msg.AggregateType, msg.AggregateID, msg.EventType, msg.RoutingKey,
		[]byte(msg.Payload), metadataOrEmpty(msg.Metadata), msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
            payload, metadata, created_at, published_at, next_retry_at, retry_count, last_error,
            dead_lettered_at, dead_letter_reason
        FROM outbox
        WHERE published_at IS NULL AND dead_lettered_at IS NULL
          AND (next_retry_at IS NULL OR next_retry_at <= now())
        ORDER BY created_at, id
        LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var m Message
		var payload, metadata []byte
		if err := rows.Scan(&m.ID, &m.EventID, &m.AggregateType, &m.AggregateID, &m.EventType, &m.RoutingKey,
			&payload, &metadata, &m.CreatedAt, &m.PublishedAt, &m.NextRetryAt, &m.RetryCount, &m.LastError,
			&m.DeadLetteredAt, &m.DeadLetterReason); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		m.Payload = payload
		m.Metadata = metadata
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox SET published_at = now() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox
        SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
        WHERE id = $1`, id, errMsg, nextRetryAt)
	return err
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox
        SET retry_count = retry_count + 1, last_error = $2, dead_lettered_at = now(), dead_letter_reason = $2
        WHERE id = $1`, id, reason)
	return err
}

func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`,
		time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NewRepository picks the implementation for conn's driver.
func NewRepository(conn database.Connection) Repository {
	if conn.Driver() == database.DriverPostgres {
		return NewPostgresRepository(conn)
	}
	return NewSQLiteRepository(conn)
}
