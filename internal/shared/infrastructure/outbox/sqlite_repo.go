package outbox

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	"github.com/google/uuid"
)

// SQLiteRepository stores the outbox in SQLite.
type SQLiteRepository struct {
	conn database.Connection
}

// NewSQLiteRepository creates an outbox repository on conn.
func NewSQLiteRepository(conn database.Connection) *SQLiteRepository {
	return &SQLiteRepository{conn: conn}
}

const sqliteInsert = `INSERT INTO outbox
    (event_id, aggregate_type, aggregate_id, event_type, routing_key, payload, metadata, created_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, sqliteInsert,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		string(metadataOrEmpty(msg.Metadata)),
		database.FormatTextTime(msg.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert outbox message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, msg := range msgs {
		if err := r.Save(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := r.conn.Query(ctx, `SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
            payload, metadata, created_at, published_at, next_retry_at, retry_count, last_error,
            dead_lettered_at, dead_letter_reason
        FROM outbox
        WHERE published_at IS NULL AND dead_lettered_at IS NULL
          AND (next_retry_at IS NULL OR next_retry_at <= ?)
        ORDER BY created_at, id
        LIMIT ?`, database.FormatTextTime(time.Now()), limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		var (
			m                              Message
			eventID, aggregateID           string
			payload, metadata, createdAt   string
			publishedAt, nextRetry, deadAt sql.NullString
			lastError, deadReason          sql.NullString
		)
		if err := rows.Scan(&m.ID, &eventID, &m.AggregateType, &aggregateID, &m.EventType, &m.RoutingKey,
			&payload, &metadata, &createdAt, &publishedAt, &nextRetry, &m.RetryCount, &lastError,
			&deadAt, &deadReason); err != nil {
			return nil, fmt.Errorf("scan outbox message: %w", err)
		}
		m.EventID, _ = uuid.Parse(eventID)
		m.AggregateID, _ = uuid.Parse(aggregateID)
		m.Payload = []byte(payload)
		m.Metadata = []byte(metadata)
		m.CreatedAt, _ = database.ParseTextTime(createdAt)
		m.PublishedAt = database.ParseNullTextTime(publishedAt)
		m.NextRetryAt = database.ParseNullTextTime(nextRetry)
		m.DeadLetteredAt = database.ParseNullTextTime(deadAt)
		m.LastError = nullString(lastError)
		m.DeadLetterReason = nullString(deadReason)
		msgs = append(msgs, &m)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`,
		database.FormatTextTime(time.Now()), id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox
        SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
        WHERE id = ?`, errMsg, database.FormatTextTime(nextRetryAt), id)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.conn.Exec(ctx, `UPDATE outbox
        SET retry_count = retry_count + 1, last_error = ?, dead_lettered_at = ?, dead_letter_reason = ?
        WHERE id = ?`, reason, database.FormatTextTime(time.Now()), reason, id)
	return err
}

func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	res, err := r.conn.Exec(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`,
		database.FormatTextTime(time.Now().Add(-olderThan)))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func metadataOrEmpty(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
