package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// PaintCellCommand is one paint gesture on a session draft. Exactly one of
// Kind and TemplateID is expected; TemplateID wins when both are set.
type PaintCellCommand struct {
	LocationID string
	SessionID  string
	Cell       string
	EntityIDs  []string
	Kind       string
	TemplateID string
	Label      string
	Mode       string
	// ExpectedVersion, when positive, must equal the draft version both when
	// the gesture is resolved and when the result is written.
	ExpectedVersion int
}

// PaintCellResult reports the resolved gesture and the resulting draft.
type PaintCellResult struct {
	Draft         domain.Draft
	Applied       bool
	Erased        bool
	DayKey        string
	AffectedCells []string
	Assignment    domain.Assignment
}

// PaintCellHandler handles the PaintCellCommand.
type PaintCellHandler struct {
	store   domain.DraftStore
	catalog *services.Catalog
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewPaintCellHandler creates a new PaintCellHandler.
func NewPaintCellHandler(store domain.DraftStore, catalog *services.Catalog, logger *slog.Logger, metrics observability.Metrics) *PaintCellHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &PaintCellHandler{store: store, catalog: catalog, logger: logger, metrics: metrics}
}

// Handle resolves the gesture against the catalog and folds it into the
// draft. A gesture that does not resolve, or an erase that touches nothing,
// leaves the draft unchanged and is reported with Applied false.
func (h *PaintCellHandler) Handle(ctx context.Context, cmd PaintCellCommand) (*PaintCellResult, error) {
	key := domain.DraftKey{LocationID: cmd.LocationID, SessionID: cmd.SessionID}
	if err := key.Validate(); err != nil {
		return nil, err
	}
	spec, err := services.ParseSpec(cmd.Kind, cmd.TemplateID)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParsePaintMode(cmd.Mode)
	if err != nil {
		return nil, err
	}

	draft, err := h.store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	if cmd.ExpectedVersion > 0 && cmd.ExpectedVersion != draft.Version {
		return nil, fmt.Errorf("%w: expected %d, current %d", domain.ErrVersionMismatch, cmd.ExpectedVersion, draft.Version)
	}

	req := h.catalog.PaintRequest(cmd.Cell, cmd.EntityIDs, spec, cmd.Label)
	outcome := domain.Paint(draft.Blocks, req, h.catalog.Labels(), mode)

	result := &PaintCellResult{
		Draft:         draft,
		Applied:       outcome.Applied,
		Erased:        outcome.Erased,
		DayKey:        outcome.Result.DayKey,
		AffectedCells: outcome.Result.AffectedCellIDs(),
		Assignment:    outcome.Result.Assignment,
	}
	if !outcome.Applied {
		h.metrics.Counter(observability.MetricPaintsRejected, 1, observability.T("mode", string(mode)))
		h.logger.DebugContext(ctx, "paint left draft unchanged",
			"draft", key.String(),
			"cell", cmd.Cell,
			"mode", mode,
		)
		return result, nil
	}

	saved, err := h.store.Save(ctx, key, outcome.Blocks, cmd.ExpectedVersion)
	if err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	result.Draft = saved

	action := "add"
	if outcome.Erased {
		action = "erase"
	}
	h.metrics.Counter(observability.MetricPaintsApplied, 1, observability.T("action", action))
	h.logger.InfoContext(ctx, "paint applied",
		"draft", key.String(),
		"day", outcome.Result.DayKey,
		"action", action,
		"cells", len(outcome.Result.AffectedCells),
		"version", saved.Version,
	)
	return result, nil
}
