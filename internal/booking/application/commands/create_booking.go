package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/shiftgrid/internal/booking/domain"
	sharedApplication "github.com/felixgeelhaar/shiftgrid/internal/shared/application"
	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/google/uuid"
)

// CreateBookingCommand contains the data needed to book an employee, a
// resource, or both.
type CreateBookingCommand struct {
	LocationID string
	EmployeeID string
	ResourceID string
	Start      time.Time
	End        time.Time
	Status     string
	Notes      string
	ActorID    string
}

// CreateBookingResult contains the stored booking.
type CreateBookingResult struct {
	BookingID uuid.UUID
	Status    domain.Status
	Start     time.Time
	End       time.Time
}

// CreateBookingHandler handles the CreateBookingCommand.
type CreateBookingHandler struct {
	repo       domain.Repository
	outboxRepo outbox.Repository
	uow        sharedApplication.UnitOfWork
	logger     *slog.Logger
	metrics    observability.Metrics
}

// NewCreateBookingHandler creates a new CreateBookingHandler.
func NewCreateBookingHandler(
	repo domain.Repository,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
	metrics observability.Metrics,
) *CreateBookingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &CreateBookingHandler{
		repo:       repo,
		outboxRepo: outboxRepo,
		uow:        uow,
		logger:     logger,
		metrics:    metrics,
	}
}

// Handle validates the booking, re-checks every owner dimension for
// overlaps inside the transaction and stores it. Overlaps surface as a
// *domain.ConflictError; the storage constraints catch anything that slips
// between the check and the insert.
func (h *CreateBookingHandler) Handle(ctx context.Context, cmd CreateBookingCommand) (*CreateBookingResult, error) {
	var status domain.Status
	if cmd.Status != "" {
		parsed, err := domain.ParseStatus(cmd.Status)
		if err != nil {
			return nil, err
		}
		status = parsed
	}

	booking, err := domain.NewBooking(domain.NewBookingParams{
		LocationID: cmd.LocationID,
		EmployeeID: cmd.EmployeeID,
		ResourceID: cmd.ResourceID,
		Start:      cmd.Start,
		End:        cmd.End,
		Status:     status,
		Notes:      cmd.Notes,
	})
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, owner := range booking.OwnerKeys() {
			existing, err := h.repo.FindOccupyingOverlaps(txCtx, owner, booking.Start(), booking.End())
			if err != nil {
				return err
			}
			if err := domain.CheckOwnerConflict(owner, booking.Interval(), existing, booking.ID()); err != nil {
				return err
			}
		}
		return saveWithEvents(txCtx, h.repo, h.outboxRepo, booking, cmd.ActorID)
	})
	if err != nil {
		var conflict *domain.ConflictError
		if errors.As(err, &conflict) {
			h.metrics.Counter(observability.MetricBookingConflicts, 1,
				observability.T("dimension", string(conflict.Owner.Dimension)))
			h.logger.InfoContext(ctx, "booking rejected",
				observability.LocationKey, cmd.LocationID,
				"owner", conflict.Owner.String(),
				"existing_booking_id", conflict.ExistingID,
			)
		}
		return nil, err
	}

	h.metrics.Counter(observability.MetricBookingsCreated, 1, observability.T("status", string(booking.Status())))
	h.logger.InfoContext(ctx, "booking created",
		"booking_id", booking.ID(),
		observability.LocationKey, booking.LocationID(),
		"status", booking.Status(),
	)

	return &CreateBookingResult{
		BookingID: booking.ID(),
		Status:    booking.Status(),
		Start:     booking.Start(),
		End:       booking.End(),
	}, nil
}
