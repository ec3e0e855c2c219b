package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// UndoPaintCommand reverts the last saved paint of a session.
type UndoPaintCommand struct {
	LocationID string
	SessionID  string
}

// UndoPaintHandler handles the UndoPaintCommand.
type UndoPaintHandler struct {
	store   domain.DraftStore
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewUndoPaintHandler creates a new UndoPaintHandler.
func NewUndoPaintHandler(store domain.DraftStore, logger *slog.Logger, metrics observability.Metrics) *UndoPaintHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &UndoPaintHandler{store: store, logger: logger, metrics: metrics}
}

// Handle returns the restored draft, or domain.ErrNothingToUndo.
func (h *UndoPaintHandler) Handle(ctx context.Context, cmd UndoPaintCommand) (domain.Draft, error) {
	key := domain.DraftKey{LocationID: cmd.LocationID, SessionID: cmd.SessionID}
	draft, err := h.store.Undo(ctx, key)
	if err != nil {
		return domain.Draft{}, err
	}
	h.metrics.Counter(observability.MetricDraftUndo, 1)
	h.logger.InfoContext(ctx, "paint undone", "draft", key.String(), "version", draft.Version)
	return draft, nil
}
