package queries

import (
	"context"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
)

// ResolvePaintPreviewQuery resolves a gesture without saving it. Without a
// session the gesture is resolved against an empty draft.
type ResolvePaintPreviewQuery struct {
	LocationID string
	SessionID  string
	Cell       string
	EntityIDs  []string
	Kind       string
	TemplateID string
	Label      string
	Mode       string
}

// PaintPreview tells a grid which cells to highlight and what a click would
// do to the draft.
type PaintPreview struct {
	Resolved      bool              `json:"resolved"`
	WouldApply    bool              `json:"would_apply"`
	WouldErase    bool              `json:"would_erase"`
	DayKey        string            `json:"day_key,omitempty"`
	StartIndex    int               `json:"start_index"`
	EndIndex      int               `json:"end_index"`
	AffectedCells []string          `json:"affected_cells"`
	Assignment    domain.Assignment `json:"assignment"`
}

// ResolvePaintPreviewHandler handles the ResolvePaintPreviewQuery.
type ResolvePaintPreviewHandler struct {
	store   domain.DraftStore
	catalog *services.Catalog
}

// NewResolvePaintPreviewHandler creates a new ResolvePaintPreviewHandler.
func NewResolvePaintPreviewHandler(store domain.DraftStore, catalog *services.Catalog) *ResolvePaintPreviewHandler {
	return &ResolvePaintPreviewHandler{store: store, catalog: catalog}
}

// Handle executes the ResolvePaintPreviewQuery.
func (h *ResolvePaintPreviewHandler) Handle(ctx context.Context, q ResolvePaintPreviewQuery) (*PaintPreview, error) {
	spec, err := services.ParseSpec(q.Kind, q.TemplateID)
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParsePaintMode(q.Mode)
	if err != nil {
		return nil, err
	}

	var current []domain.AssignmentBlock
	if q.SessionID != "" {
		draft, err := h.store.Load(ctx, domain.DraftKey{LocationID: q.LocationID, SessionID: q.SessionID})
		if err != nil {
			return nil, err
		}
		current = draft.Blocks
	}

	req := h.catalog.PaintRequest(q.Cell, q.EntityIDs, spec, q.Label)
	outcome := domain.Paint(current, req, h.catalog.Labels(), mode)

	preview := &PaintPreview{
		Resolved:      outcome.Result.DayKey != "",
		WouldApply:    outcome.Applied,
		WouldErase:    outcome.Erased,
		DayKey:        outcome.Result.DayKey,
		StartIndex:    outcome.Result.Range.Start,
		EndIndex:      outcome.Result.Range.End,
		AffectedCells: outcome.Result.AffectedCellIDs(),
		Assignment:    outcome.Result.Assignment,
	}
	if preview.AffectedCells == nil {
		preview.AffectedCells = []string{}
	}
	return preview, nil
}
