package queries

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// ErrInvalidLayoutOptions is returned for a negative column limit or an
// inverted clamp.
var ErrInvalidLayoutOptions = errors.New("invalid layout options")

// ComputeSegmentsQuery lays out caller-supplied blocks without touching a
// draft. Nil options fall back to the catalog.
type ComputeSegmentsQuery struct {
	Blocks        []layout.SegmentBlock
	MaxColumns    *int
	ClampMin      *float64
	ClampMax      *float64
	MergeAdjacent *bool
}

// ComputeSegmentsHandler handles the ComputeSegmentsQuery.
type ComputeSegmentsHandler struct {
	catalog *services.Catalog
	metrics observability.Metrics
}

// NewComputeSegmentsHandler creates a new ComputeSegmentsHandler.
func NewComputeSegmentsHandler(catalog *services.Catalog, metrics observability.Metrics) *ComputeSegmentsHandler {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &ComputeSegmentsHandler{catalog: catalog, metrics: metrics}
}

// Handle executes the ComputeSegmentsQuery.
func (h *ComputeSegmentsHandler) Handle(_ context.Context, q ComputeSegmentsQuery) ([]layout.Segment, error) {
	opts := h.catalog.LayoutOptions()
	if q.MaxColumns != nil {
		if *q.MaxColumns < 0 {
			return nil, ErrInvalidLayoutOptions
		}
		opts.MaxColumns = *q.MaxColumns
	}
	if q.MergeAdjacent != nil {
		opts.MergeAdjacent = *q.MergeAdjacent
	}
	if q.ClampMin != nil && q.ClampMax != nil && *q.ClampMax < *q.ClampMin {
		return nil, ErrInvalidLayoutOptions
	}
	opts.ClampMin = q.ClampMin
	opts.ClampMax = q.ClampMax

	segments := layout.ComputeSegments(q.Blocks, opts)
	h.metrics.Counter(observability.MetricLayoutsBuilt, 1)
	h.metrics.Histogram(observability.MetricLayoutSegments, float64(len(segments)))
	return segments, nil
}
