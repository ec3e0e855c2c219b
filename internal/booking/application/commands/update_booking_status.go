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

// UpdateBookingStatusCommand moves a booking along its lifecycle.
type UpdateBookingStatusCommand struct {
	BookingID uuid.UUID
	Status    string
	Reason    string
	ActorID   string
}

// UpdateBookingStatusHandler handles the UpdateBookingStatusCommand.
type UpdateBookingStatusHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
}

func NewUpdateBookingStatusHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *UpdateBookingStatusHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &UpdateBookingStatusHandler{repo: repo, outboxRepo: outboxRepo, uow: uow, logger: logger, metrics: metrics}
}

// Handle applies the transition. Only transitions into an occupying status
// could create overlaps, and the lifecycle never re-enters one from a
// releasing status, so no conflict check is needed here.
func (h *UpdateBookingStatusHandler) Handle(ctx context.Context, cmd UpdateBookingStatusCommand) (domain.Status, error) {
	next, err := domain.ParseStatus(cmd.Status)
	if err != nil {
		return "", err
	}

	var prev domain.Status
	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		booking, err := h.repo.FindByID(txCtx, cmd.BookingID)
		if err != nil {
			return err
		}
		prev = booking.Status()
		if err := booking.ChangeStatus(next, cmd.Reason); err != nil {
			return err
		}
		return saveWithEvents(txCtx, h.repo, h.outboxRepo, booking, cmd.ActorID)
	})
	if err != nil {
		return "", err
	}

	h.metrics.Counter(observability.MetricBookingStatus, 1, observability.T("to", string(next)))
	if next == domain.StatusCancelled {
		h.metrics.Counter(observability.MetricBookingsCancelled, 1)
	}
	h.logger.InfoContext(ctx, "booking status changed",
		"booking_id", cmd.BookingID,
		"from", prev,
		"to", next,
	)
	return next, nil
}
