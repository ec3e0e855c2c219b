package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/shiftgrid/internal/shared/application"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
)

// CancelBookingCommand releases a booking's interval.
type CancelBookingCommand struct {
	BookingID uuid.UUID
	Reason    string
	ActorID   string
}

// CancelBookingHandler handles the CancelBookingCommand.
type CancelBookingHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewCancelBookingHandler creates a new CancelBookingHandler.
func NewCancelBookingHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *CancelBookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CancelBookingHandler{repo: repo, outboxRepo: outboxRepo, uow: uow, logger: logger, metrics: metrics}
}

func (h *CancelBookingHandler) Handle(ctx context.Context, cmd CancelBookingCommand) error {
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		booking, err := h.repo.FindByID(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}
		if err := booking.Cancel(cmd.Reason); err != nil {
			return err
		}
		return saveWithEvents(txCtx, h.repo, h.outboxRepo, booking, cmd.ActorID)
	})
	if err != nil {
		return err
	}

	h.metrics.Counter(observability.MetricBookingsCancelled, 1)
	h.logger.InfoContext(ctx, "booking cancelled", "booking_id", cmd.BookingID)
	return nil
}
