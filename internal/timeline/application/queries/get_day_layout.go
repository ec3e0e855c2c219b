package queries

import (
	"context"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// ErrDayKeyRequired is returned when a layout query names no day.
var ErrDayKeyRequired = errors.New("day key is required")

// GetDayLayoutQuery asks for the column layout of one day of a draft.
type GetDayLayoutQuery struct {
	LocationID string
	SessionID  string
	DayKey     string
}

// DayLayoutView is what a renderer needs to draw one day.
type DayLayoutView struct {
	DayKey   string                   `json:"day_key"`
	Window   domain.Window            `json:"window"`
	Version  int                      `json:"version"`
	Blocks   []domain.AssignmentBlock `json:"blocks"`
	Segments []layout.Segment         `json:"segments"`
}

// GetDayLayoutHandler handles the GetDayLayoutQuery.
type GetDayLayoutHandler struct {
	store   domain.DraftStore
	catalog *services.Catalog
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewGetDayLayoutHandler creates a new GetDayLayoutHandler.
func NewGetDayLayoutHandler(store domain.DraftStore, catalog *services.Catalog, logger *slog.Logger, metrics observability.Metrics) *GetDayLayoutHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &GetDayLayoutHandler{store: store, catalog: catalog, logger: logger, metrics: metrics}
}

// Handle executes the GetDayLayoutQuery.
func (h *GetDayLayoutHandler) Handle(ctx context.Context, q GetDayLayoutQuery) (*DayLayoutView, error) {
	if q.DayKey == "" {
		return nil, ErrDayKeyRequired
	}
	key := domain.DraftKey{LocationID: q.LocationID, SessionID: q.SessionID}
	draft, err := h.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	blocks := domain.BlocksForDay(draft.Blocks, q.DayKey)
	segments := layout.DayLayout(blocks, q.DayKey, h.catalog.Entities, h.catalog.Window, h.catalog.LayoutOptions())

	h.metrics.Counter(observability.MetricLayoutsBuilt, 1)
	h.metrics.Histogram(observability.MetricLayoutSegments, float64(len(segments)))

	return &DayLayoutView{
		DayKey:   q.DayKey,
		Window:   h.catalog.Window,
		Version:  draft.Version,
		Blocks:   blocks,
		Segments: segments,
	}, nil
}
