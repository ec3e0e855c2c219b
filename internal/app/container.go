package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	bookingCommands "github.com/felixgeelhaar/shiftgrid/internal/booking/application/commands"
	bookingQueries "github.com/felixgeelhaar/shiftgrid/internal/booking/application/queries"
	bookingSubs "github.com/felixgeelhaar/shiftgrid/internal/booking/application/subscribers"
	bookingDomain "github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	bookingPersistence "github.com/felixgeelhaar/shiftgrid/internal/booking/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/shiftgrid/internal/shared/application"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/outbox"
	timelineCommands "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	timelineDomain "github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/infrastructure/catalogfile"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/infrastructure/draftstore"
	"github.com/felixgeelhaar/shiftgrid/pkg/config"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	// Database
	DB database.Connection

	// Redis, nil when drafts are kept in memory
	RedisClient *redis.Client

	// Timeline
	Catalog    *services.Catalog
	DraftStore timelineDomain.DraftStore

	// Repositories
	BookingRepo bookingDomain.Repository
	OutboxRepo  outbox.Repository
	UnitOfWork  sharedApplication.UnitOfWork

	// Publishing. InProcessEventBus is set when no broker is configured.
	EventPublisher    eventbus.Publisher
	PublishBreaker    *eventbus.BreakerPublisher
	InProcessEventBus *eventbus.InProcessEventBus
	OutboxProcessor   *outbox.Processor

	// Timeline Command Handlers
	PaintCellHandler  *timelineCommands.PaintCellHandler
	UndoPaintHandler  *timelineCommands.UndoPaintHandler
	ClearDraftHandler *timelineCommands.ClearDraftHandler

	// Timeline Query Handlers
	GetDayLayoutHandler        *timelineQueries.GetDayLayoutHandler
	ComputeSegmentsHandler     *timelineQueries.ComputeSegmentsHandler
	ResolvePaintPreviewHandler *timelineQueries.ResolvePaintPreviewHandler

	// Booking Command Handlers
	CreateBookingHandler       *bookingCommands.CreateBookingHandler
	CancelBookingHandler       *bookingCommands.CancelBookingHandler
	UpdateBookingStatusHandler *bookingCommands.UpdateBookingStatusHandler

	// Booking Query Handlers
	GetBookingHandler        *bookingQueries.GetBookingHandler
	ListBookingsHandler      *bookingQueries.ListBookingsHandler
	CheckAvailabilityHandler *bookingQueries.CheckAvailabilityHandler

	// Event Subscribers
	ActivitySubscriber *bookingSubs.ActivitySubscriber
}

// NewContainer creates and wires all dependencies. Redis and RabbitMQ are
// optional: without them drafts stay in memory and events are dispatched in
// process. Outside development an unreachable configured service is fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}
	if err := c.init(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) init(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger

	catalog, err := catalogfile.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	c.Catalog = catalog

	conn, err := database.Open(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	c.DB = conn
	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	applied, err := migrations.Run(ctx, conn)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	logger.Info("connected to database", "driver", conn.Driver(), "migrations_applied", len(applied))
	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, conn.Ping))

	if err := c.initDraftStore(ctx); err != nil {
		return err
	}
	if err := c.initPublisher(); err != nil {
		return err
	}

	// Create repositories
	c.BookingRepo = bookingPersistence.NewRepository(conn)
	c.OutboxRepo = outbox.NewRepository(conn)
	c.UnitOfWork = database.NewUnitOfWork(conn)

	// Create timeline handlers
	c.PaintCellHandler = timelineCommands.NewPaintCellHandler(c.DraftStore, c.Catalog, logger, c.Metrics)
	c.UndoPaintHandler = timelineCommands.NewUndoPaintHandler(c.DraftStore, logger, c.Metrics)
	c.ClearDraftHandler = timelineCommands.NewClearDraftHandler(c.DraftStore, logger)
	c.GetDayLayoutHandler = timelineQueries.NewGetDayLayoutHandler(c.DraftStore, c.Catalog, logger, c.Metrics)
	c.ComputeSegmentsHandler = timelineQueries.NewComputeSegmentsHandler(c.Catalog, c.Metrics)
	c.ResolvePaintPreviewHandler = timelineQueries.NewResolvePaintPreviewHandler(c.DraftStore, c.Catalog)

	// Create booking handlers
	c.CreateBookingHandler = bookingCommands.NewCreateBookingHandler(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, logger, c.Metrics)
	c.CancelBookingHandler = bookingCommands.NewCancelBookingHandler(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, logger, c.Metrics)
	c.UpdateBookingStatusHandler = bookingCommands.NewUpdateBookingStatusHandler(c.BookingRepo, c.OutboxRepo, c.UnitOfWork, logger, c.Metrics)
	c.GetBookingHandler = bookingQueries.NewGetBookingHandler(c.BookingRepo)
	c.ListBookingsHandler = bookingQueries.NewListBookingsHandler(c.BookingRepo)
	c.CheckAvailabilityHandler = bookingQueries.NewCheckAvailabilityHandler(c.BookingRepo)

	// Create outbox processor
	c.OutboxProcessor = outbox.NewProcessor(c.OutboxRepo, c.EventPublisher, outbox.ProcessorConfig{
		PollInterval:     cfg.OutboxPollInterval,
		BatchSize:        cfg.OutboxBatchSize,
		MaxRetries:       cfg.OutboxMaxRetries,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}, logger, c.Metrics)

	return nil
}

func (c *Container) initDraftStore(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger
	if cfg.RedisURL != "" {
		client, err := connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				return err
			}
			logger.Warn("Redis not available, drafts will be kept in memory", "error", err)
		} else {
			c.RedisClient = client
			c.DraftStore = draftstore.NewRedisStore(client, cfg.DraftTTL, cfg.DraftHistoryLimit)
			c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			}))
			logger.Info("connected to Redis")
			return nil
		}
	}
	c.DraftStore = draftstore.NewMemoryStore(cfg.DraftHistoryLimit)
	return nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func (c *Container) initPublisher() error {
	cfg, logger := c.Config, c.Logger
	c.ActivitySubscriber = bookingSubs.NewActivitySubscriber(logger, c.Metrics)

	var next eventbus.Publisher
	if cfg.RabbitMQURL != "" {
		publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
		if err != nil {
			if !cfg.IsDevelopment() {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			logger.Warn("RabbitMQ not available, dispatching events in process", "error", err)
		} else {
			next = publisher
		}
	}
	if next == nil {
		c.InProcessEventBus = eventbus.NewInProcessEventBus(logger)
		c.InProcessEventBus.RegisterConsumer(c.ActivitySubscriber)
		next = c.InProcessEventBus
	}

	c.PublishBreaker = eventbus.NewBreakerPublisher(next, eventbus.BreakerConfig{
		Name:                "outbox-publisher",
		ConsecutiveFailures: convert.IntToUint32Clamped(cfg.PublishBreakerFailures),
		OpenTimeout:         cfg.PublishBreakerTimeout,
	}, logger)
	c.EventPublisher = c.PublishBreaker
	c.Health.Register("publisher", func(context.Context) observability.HealthCheckResult {
		state := c.PublishBreaker.State()
		if state == "open" {
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "publisher breaker open"}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Message: "publisher breaker " + state}
	})
	return nil
}

// CleanupOutbox deletes published messages older than the retention.
func (c *Container) CleanupOutbox(ctx context.Context) (int64, error) {
	days := c.Config.OutboxRetentionDays
	if days <= 0 {
		return 0, nil
	}
	return c.OutboxRepo.DeleteOld(ctx, time.Duration(days)*24*time.Hour)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil && c.OutboxProcessor.IsRunning() {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "error", err)
		} else {
			c.Logger.Info("database connection closed", "driver", c.DB.Driver())
		}
	}
}
