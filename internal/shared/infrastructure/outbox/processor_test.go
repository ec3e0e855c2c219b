package outbox

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/domain"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu     sync.Mutex
	nextID int64
	msgs   []*Message
}

func (r *memoryRepo) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *memoryRepo) SaveBatch(ctx context.Context, msgs []*Message) error {
	for _, m := range msgs {
		if err := r.Save(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (r *memoryRepo) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	var out []*Message
	for _, m := range r.msgs {
		if m.PublishedAt != nil || m.DeadLetteredAt != nil {
			continue
		}
		if m.NextRetryAt != nil && m.NextRetryAt.After(now) {
			continue
		}
		out = append(out, m)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memoryRepo) find(id int64) *Message {
	for _, m := range r.msgs {
		if m.ID == id {
			return m
		}
	}
	return nil
}

func (r *memoryRepo) MarkPublished(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	r.find(id).PublishedAt = &now
	return nil
}

func (r *memoryRepo) MarkFailed(_ context.Context, id int64, errMsg string, next time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m := r.find(id)
	m.RetryCount++
	m.LastError = &errMsg
	m.NextRetryAt = &next
	return nil
}

func (r *memoryRepo) MarkDead(_ context.Context, id int64, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	m := r.find(id)
	m.DeadLetteredAt = &now
	m.DeadLetterReason = &reason
	return nil
}

func (r *memoryRepo) DeleteOld(context.Context, time.Duration) (int64, error) { return 0, nil }

type capturePublisher struct {
	err  error
	keys []string
	body [][]byte
}

func (p *capturePublisher) Publish(_ context.Context, key string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.keys = append(p.keys, key)
	p.body = append(p.body, body)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

type testEvent struct {
	domain.BaseEvent
	Status string `json:"status"`
}

func newTestMessage(t *testing.T) *Message {
	t.Helper()
	ev := &testEvent{BaseEvent: domain.NewBaseEvent(uuid.New(), "Booking", "booking.created"), Status: "booked"}
	ev.SetMetadata(domain.EventMetadata{CorrelationID: uuid.New()})
	msg, err := NewMessage(ev)
	require.NoError(t, err)
	return msg
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestProcessOnce_PublishesEnvelope(t *testing.T) {
	repo := &memoryRepo{}
	msg := newTestMessage(t)
	require.NoError(t, repo.Save(context.Background(), msg))

	pub := &capturePublisher{}
	metrics := observability.NewInMemoryMetrics()
	p := NewProcessor(repo, pub, DefaultProcessorConfig(), quiet(), metrics)

	require.NoError(t, p.ProcessOnce(context.Background()))
	require.Equal(t, []string{"booking.created"}, pub.keys)
	assert.True(t, msg.IsPublished())
	assert.Contains(t, string(pub.body[0]), `"routing_key":"booking.created"`)
	assert.Contains(t, string(pub.body[0]), `"status":"booked"`)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricOutboxPublished, observability.T("routing_key", "booking.created")))
	assert.Equal(t, uint64(1), p.Stats().PublishedCount)
}

func TestProcessOnce_RetriesThenDeadLetters(t *testing.T) {
	repo := &memoryRepo{}
	msg := newTestMessage(t)
	require.NoError(t, repo.Save(context.Background(), msg))

	pub := &capturePublisher{err: errors.New("broker down")}
	cfg := DefaultProcessorConfig()
	cfg.MaxRetries = 2
	cfg.RetryBackoffBase = time.Nanosecond
	cfg.RetryBackoffMax = time.Nanosecond
	p := NewProcessor(repo, pub, cfg, quiet(), nil)

	require.NoError(t, p.ProcessOnce(context.Background()))
	assert.Equal(t, 1, msg.RetryCount)
	assert.Nil(t, msg.DeadLetteredAt)

	time.Sleep(time.Millisecond)
	require.NoError(t, p.ProcessOnce(context.Background()))
	require.NotNil(t, msg.DeadLetteredAt)
	assert.Equal(t, "broker down", *msg.DeadLetterReason)

	stats := p.Stats()
	assert.Equal(t, uint64(1), stats.FailedCount)
	assert.Equal(t, uint64(1), stats.DeadCount)
	assert.Equal(t, "broker down", stats.LastError)
}

func TestBackoff(t *testing.T) {
	p := NewProcessor(&memoryRepo{}, &capturePublisher{}, ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  10 * time.Second,
	}, quiet(), nil)

	assert.Equal(t, time.Second, p.backoff(1))
	assert.Equal(t, 2*time.Second, p.backoff(2))
	assert.Equal(t, 8*time.Second, p.backoff(4))
	assert.Equal(t, 10*time.Second, p.backoff(5))
	assert.Equal(t, 10*time.Second, p.backoff(64))
}

func TestStartStop(t *testing.T) {
	cfg := DefaultProcessorConfig()
	cfg.PollInterval = time.Millisecond
	p := NewProcessor(&memoryRepo{}, &capturePublisher{}, cfg, quiet(), nil)

	p.Start(context.Background())
	p.Start(context.Background())
	assert.True(t, p.IsRunning())
	p.Stop()
	p.Stop()
	assert.False(t, p.IsRunning())
}
