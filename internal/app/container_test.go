package app

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	bookingCommands "github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	bookingDomain "github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	timelineCommands "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/infrastructure/draftstore"
	"github.com/felixgeelhaar/shiftgrid/pkg/config"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                 "test",
		DatabaseDriver:         "sqlite",
		SQLitePath:             ":memory:",
		DraftTTL:               time.Hour,
		DraftHistoryLimit:      10,
		OutboxPollInterval:     10 * time.Millisecond,
		OutboxBatchSize:        10,
		OutboxMaxRetries:       3,
		OutboxRetentionDays:    7,
		PublishBreakerFailures: 3,
		PublishBreakerTimeout:  time.Second,
	}
}

func newTestContainer(t *testing.T, cfg *config.Config) *Container {
	t.Helper()
	c, err := NewContainer(context.Background(), cfg, observability.Discard())
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func TestNewContainer_LocalMode(t *testing.T) {
	c := newTestContainer(t, testConfig())

	assert.Equal(t, database.DriverSQLite, c.DB.Driver())
	assert.Nil(t, c.RedisClient)
	assert.IsType(t, &draftstore.MemoryStore{}, c.DraftStore)
	assert.NotNil(t, c.InProcessEventBus)
	assert.Equal(t, "closed", c.PublishBreaker.State())
	assert.Equal(t, []string{"database", "publisher"}, c.Health.Names())

	health := c.Health.Check(context.Background())
	assert.Equal(t, observability.HealthStatusHealthy, health.Status)
}

func TestNewContainer_RedisDrafts(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.RedisURL = "redis://" + mr.Addr()

	c := newTestContainer(t, cfg)
	require.NotNil(t, c.RedisClient)
	assert.IsType(t, &draftstore.RedisStore{}, c.DraftStore)
	assert.Contains(t, c.Health.Names(), "redis")
}

func TestNewContainer_UnreachableRedis(t *testing.T) {
	cfg := testConfig()
	cfg.RedisURL = "redis://127.0.0.1:1"

	_, err := NewContainer(context.Background(), cfg, observability.Discard())
	assert.Error(t, err)

	cfg.AppEnv = "development"
	c := newTestContainer(t, cfg)
	assert.IsType(t, &draftstore.MemoryStore{}, c.DraftStore)
}

func TestNewContainer_BadCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogPath = t.TempDir() + "/missing.toml"

	_, err := NewContainer(context.Background(), cfg, observability.Discard())
	assert.Error(t, err)
}

func TestContainer_PaintAndLayout(t *testing.T) {
	c := newTestContainer(t, testConfig())
	ctx := context.Background()

	res, err := c.PaintCellHandler.Handle(ctx, timelineCommands.PaintCellCommand{
		LocationID: "loc-1",
		SessionID:  "sess-1",
		Cell:       "2024-03-04|2",
		EntityIDs:  []string{"e1", "e2"},
		Kind:       "work",
	})
	require.NoError(t, err)
	assert.True(t, res.Applied)

	view, err := c.GetDayLayoutHandler.Handle(ctx, timelineQueries.GetDayLayoutQuery{
		LocationID: "loc-1",
		SessionID:  "sess-1",
		DayKey:     "2024-03-04",
	})
	require.NoError(t, err)
	require.Len(t, view.Segments, 1)
	assert.Len(t, view.Segments[0].Columns, 2)
}

func TestContainer_BookingEventsReachSubscriber(t *testing.T) {
	c := newTestContainer(t, testConfig())
	ctx := context.Background()
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	created, err := c.CreateBookingHandler.Handle(ctx, bookingCommands.CreateBookingCommand{
		LocationID: "loc-1",
		EmployeeID: "e1",
		ResourceID: "room-a",
		Start:      start,
		End:        start.Add(2 * time.Hour),
		ActorID:    "tester",
	})
	require.NoError(t, err)

	_, err = c.CreateBookingHandler.Handle(ctx, bookingCommands.CreateBookingCommand{
		LocationID: "loc-1",
		ResourceID: "room-a",
		Start:      start.Add(time.Hour),
		End:        start.Add(3 * time.Hour),
	})
	var conflict *bookingDomain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, created.BookingID, conflict.ExistingID)

	avail, err := c.CheckAvailabilityHandler.Handle(ctx, bookingQueries.CheckAvailabilityQuery{
		EmployeeID: "e1",
		Start:      start.Add(2 * time.Hour),
		End:        start.Add(3 * time.Hour),
	})
	require.NoError(t, err)
	assert.True(t, avail.Available)

	require.NoError(t, c.OutboxProcessor.ProcessOnce(ctx))
	assert.Equal(t, int64(1), c.Metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", bookingDomain.RoutingKeyBookingCreated)))
	assert.Equal(t, uint64(1), c.OutboxProcessor.Stats().PublishedCount)

	deleted, err := c.CleanupOutbox(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), deleted)
}
