package commands

import (
	"context"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
)

// ClearDraftCommand drops a session draft and its history.
type ClearDraftCommand struct {
	LocationID string
	SessionID  string
}

// ClearDraftHandler handles the ClearDraftCommand.
type ClearDraftHandler struct {
	store  domain.DraftStore
	logger *slog.Logger
}

// NewClearDraftHandler creates a new ClearDraftHandler.
func NewClearDraftHandler(store domain.DraftStore, logger *slog.Logger) *ClearDraftHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClearDraftHandler{store: store, logger: logger}
}

// Handle executes the ClearDraftCommand.
func (h *ClearDraftHandler) Handle(ctx context.Context, cmd ClearDraftCommand) error {
	key := domain.DraftKey{LocationID: cmd.LocationID, SessionID: cmd.SessionID}
	if err := h.store.Clear(ctx, key); err != nil {
		return err
	}
	h.logger.InfoContext(ctx, "draft cleared", "draft", key.String())
	return nil
}
