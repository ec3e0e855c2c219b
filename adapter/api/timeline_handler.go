package api

import (
	"log/slog"
	"net/http"

	timelineCommands "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/commands"
	timelineQueries "github.com/felixgeelhaar/shiftgrid/internal/timeline/application/queries"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	timelineDomain "github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
)

// TimelineHandler serves the paint grid and the layout engine.
type TimelineHandler struct {
	paint           *timelineCommands.PaintCellHandler
	undo            *timelineCommands.UndoPaintHandler
	clear           *timelineCommands.ClearDraftHandler
	dayLayout       *timelineQueries.GetDayLayoutHandler
	computeSegments *timelineQueries.ComputeSegmentsHandler
	preview         *timelineQueries.ResolvePaintPreviewHandler
	catalog         *services.Catalog
	logger          *slog.Logger
}

// TimelineHandlerConfig holds dependencies for the timeline handler.
type TimelineHandlerConfig struct {
	PaintCell           *timelineCommands.PaintCellHandler
	UndoPaint           *timelineCommands.UndoPaintHandler
	ClearDraft          *timelineCommands.ClearDraftHandler
	GetDayLayout        *timelineQueries.GetDayLayoutHandler
	ComputeSegments     *timelineQueries.ComputeSegmentsHandler
	ResolvePaintPreview *timelineQueries.ResolvePaintPreviewHandler
	Catalog             *services.Catalog
	Logger              *slog.Logger
}

// NewTimelineHandler creates a new timeline handler.
func NewTimelineHandler(cfg TimelineHandlerConfig) *TimelineHandler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &TimelineHandler{
		paint:           cfg.PaintCell,
		undo:            cfg.UndoPaint,
		clear:           cfg.ClearDraft,
		dayLayout:       cfg.GetDayLayout,
		computeSegments: cfg.ComputeSegments,
		preview:         cfg.ResolvePaintPreview,
		catalog:         cfg.Catalog,
		logger:          cfg.Logger,
	}
}

// PaintRequest is the body of the paint and preview endpoints.
type PaintRequest struct {
	Cell            string   `json:"cell"`
	EntityIDs       []string `json:"entity_ids"`
	Kind            string   `json:"kind,omitempty"`
	TemplateID      string   `json:"template_id,omitempty"`
	Label           string   `json:"label,omitempty"`
	Mode            string   `json:"mode,omitempty"`
	ExpectedVersion int      `json:"expected_version,omitempty"`
}

// DraftResponse is a draft as served to clients.
type DraftResponse struct {
	Version   int                              `json:"version"`
	UndoDepth int                              `json:"undo_depth"`
	Blocks    []timelineDomain.AssignmentBlock `json:"blocks"`
}

// PaintResponse reports a paint gesture and the resulting draft.
type PaintResponse struct {
	Applied       bool                      `json:"applied"`
	Erased        bool                      `json:"erased"`
	DayKey        string                    `json:"day_key,omitempty"`
	AffectedCells []string                  `json:"affected_cells"`
	Assignment    timelineDomain.Assignment `json:"assignment"`
	Draft         DraftResponse             `json:"draft"`
}

func draftResponse(d timelineDomain.Draft) DraftResponse {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []timelineDomain.AssignmentBlock{}
	}
	return DraftResponse{Version: d.Version, UndoDepth: d.UndoDepth, Blocks: blocks}
}

// Paint handles POST /api/v1/locations/{locationID}/drafts/{sessionID}/paint
func (h *TimelineHandler) Paint(w http.ResponseWriter, r *http.Request) {
	var req PaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := h.paint.Handle(r.Context(), timelineCommands.PaintCellCommand{
		LocationID:      r.PathValue("locationID"),
		SessionID:       r.PathValue("sessionID"),
		Cell:            req.Cell,
		EntityIDs:       req.EntityIDs,
		Kind:            req.Kind,
		TemplateID:      req.TemplateID,
		Label:           req.Label,
		Mode:            req.Mode,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, PaintResponse{
		Applied:       result.Applied,
		Erased:        result.Erased,
		DayKey:        result.DayKey,
		AffectedCells: result.AffectedCells,
		Assignment:    result.Assignment,
		Draft:         draftResponse(result.Draft),
	})
}

// Preview handles POST /api/v1/locations/{locationID}/drafts/{sessionID}/preview
func (h *TimelineHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PaintRequest
	if !decodeBody(w, r, &req) {
		return
	}

	preview, err := h.preview.Handle(r.Context(), timelineQueries.ResolvePaintPreviewQuery{
		LocationID: r.PathValue("locationID"),
		SessionID:  r.PathValue("sessionID"),
		Cell:       req.Cell,
		EntityIDs:  req.EntityIDs,
		Kind:       req.Kind,
		TemplateID: req.TemplateID,
		Label:      req.Label,
		Mode:       req.Mode,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

// Undo handles POST /api/v1/locations/{locationID}/drafts/{sessionID}/undo
func (h *TimelineHandler) Undo(w http.ResponseWriter, r *http.Request) {
	draft, err := h.undo.Handle(r.Context(), timelineCommands.UndoPaintCommand{
		LocationID: r.PathValue("locationID"),
		SessionID:  r.PathValue("sessionID"),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse(draft))
}

// Clear handles DELETE /api/v1/locations/{locationID}/drafts/{sessionID}
func (h *TimelineHandler) Clear(w http.ResponseWriter, r *http.Request) {
	err := h.clear.Handle(r.Context(), timelineCommands.ClearDraftCommand{
		LocationID: r.PathValue("locationID"),
		SessionID:  r.PathValue("sessionID"),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DayLayout handles GET /api/v1/locations/{locationID}/drafts/{sessionID}/days/{dayKey}/layout
func (h *TimelineHandler) DayLayout(w http.ResponseWriter, r *http.Request) {
	view, err := h.dayLayout.Handle(r.Context(), timelineQueries.GetDayLayoutQuery{
		LocationID: r.PathValue("locationID"),
		SessionID:  r.PathValue("sessionID"),
		DayKey:     r.PathValue("dayKey"),
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// SegmentsRequest is the body of POST /api/v1/layout/segments.
type SegmentsRequest struct {
	Blocks        []layout.SegmentBlock `json:"blocks"`
	MaxColumns    *int                  `json:"max_columns,omitempty"`
	ClampMin      *float64              `json:"clamp_min,omitempty"`
	ClampMax      *float64              `json:"clamp_max,omitempty"`
	MergeAdjacent *bool                 `json:"merge_adjacent,omitempty"`
}

// ComputeSegments handles POST /api/v1/layout/segments
func (h *TimelineHandler) ComputeSegments(w http.ResponseWriter, r *http.Request) {
	var req SegmentsRequest
	if !decodeBody(w, r, &req) {
		return
	}

	segments, err := h.computeSegments.Handle(r.Context(), timelineQueries.ComputeSegmentsQuery{
		Blocks:        req.Blocks,
		MaxColumns:    req.MaxColumns,
		ClampMin:      req.ClampMin,
		ClampMax:      req.ClampMax,
		MergeAdjacent: req.MergeAdjacent,
	})
	if err != nil {
		writeDomainError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"segments": segments})
}

// GetCatalog handles GET /api/v1/catalog
func (h *TimelineHandler) GetCatalog(w http.ResponseWriter, _ *http.Request) {
	templates := h.catalog.Templates
	if templates == nil {
		templates = timelineDomain.Templates{}
	}
	entities := h.catalog.Entities
	if entities == nil {
		entities = timelineDomain.Entities{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"window":                h.catalog.Window,
		"kind_paints_whole_day": h.catalog.KindPaintsWholeDay,
		"max_columns":           h.catalog.MaxColumns,
		"templates":             templates,
		"entities":              entities,
	})
}
