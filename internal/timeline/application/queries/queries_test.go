package queries

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/infrastructure/draftstore"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var key = domain.DraftKey{LocationID: "loc-1", SessionID: "sess-1"}

func testCatalog() *services.Catalog {
	cat := services.DefaultCatalog()
	cat.Templates = domain.Templates{{ID: "early", Name: "Early", StartMinute: 8 * 60, EndMinute: 12 * 60}}
	cat.Entities = domain.Entities{{ID: "e1", Name: "Alice"}, {ID: "e2", Name: "Bob"}}
	return cat
}

func seed(t *testing.T, store domain.DraftStore, blocks ...domain.AssignmentBlock) {
	t.Helper()
	_, err := store.Save(context.Background(), key, blocks, 0)
	require.NoError(t, err)
}

func TestGetDayLayout(t *testing.T) {
	store := draftstore.NewMemoryStore(10)
	seed(t, store,
		domain.AssignmentBlock{DayKey: "d1", StartIndex: 0, EndIndex: 4, EntityIDs: []string{"e2"}, Label: "Early"},
		domain.AssignmentBlock{DayKey: "d1", StartIndex: 2, EndIndex: 6, EntityIDs: []string{"e1"}, Label: "Work"},
		domain.AssignmentBlock{DayKey: "d2", StartIndex: 0, EndIndex: 1, EntityIDs: []string{"e1"}, Label: "Work"},
	)
	metrics := observability.NewInMemoryMetrics()
	h := NewGetDayLayoutHandler(store, testCatalog(), observability.Discard(), metrics)

	view, err := h.Handle(context.Background(), GetDayLayoutQuery{LocationID: "loc-1", SessionID: "sess-1", DayKey: "d1"})
	require.NoError(t, err)
	assert.Equal(t, 1, view.Version)
	assert.Len(t, view.Blocks, 2)
	require.Len(t, view.Segments, 3)

	middle := view.Segments[1]
	assert.Equal(t, 2.0, middle.Start)
	assert.Equal(t, 4.0, middle.End)
	require.Len(t, middle.Columns, 2)
	assert.Equal(t, "Alice", middle.Columns[0].Name)
	assert.Equal(t, "Bob", middle.Columns[1].Name)
	assert.Equal(t, 50.0, middle.Columns[1].LeftPct)

	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricLayoutsBuilt))
	assert.Equal(t, []float64{3}, metrics.GetHistogram(observability.MetricLayoutSegments))
}

func TestGetDayLayout_EmptyDraft(t *testing.T) {
	h := NewGetDayLayoutHandler(draftstore.NewMemoryStore(10), testCatalog(), observability.Discard(), nil)

	view, err := h.Handle(context.Background(), GetDayLayoutQuery{LocationID: "loc-1", SessionID: "sess-1", DayKey: "d1"})
	require.NoError(t, err)
	assert.Empty(t, view.Segments)
	assert.NotNil(t, view.Blocks)

	_, err = h.Handle(context.Background(), GetDayLayoutQuery{LocationID: "loc-1", SessionID: "sess-1"})
	assert.Error(t, err)
}

func TestComputeSegments(t *testing.T) {
	h := NewComputeSegmentsHandler(testCatalog(), nil)
	one := 1
	noMerge := false

	segs, err := h.Handle(context.Background(), ComputeSegmentsQuery{
		Blocks: []layout.SegmentBlock{
			{Key: "a", Name: "Anna", Start: 0, End: 2},
			{Key: "b", Name: "Ben", Start: 0, End: 4},
		},
		MaxColumns:    &one,
		MergeAdjacent: &noMerge,
	})
	require.NoError(t, err)
	require.Len(t, segs, 2)
	require.Len(t, segs[0].Columns, 1)
	assert.Equal(t, "a", segs[0].Columns[0].Key)
	assert.Equal(t, 100.0, segs[0].Columns[0].WidthPct)
	assert.Equal(t, "b", segs[1].Columns[0].Key)

	lo, hi := 3.0, 1.0
	_, err = h.Handle(context.Background(), ComputeSegmentsQuery{ClampMin: &lo, ClampMax: &hi})
	assert.Error(t, err)
}

func TestResolvePaintPreview(t *testing.T) {
	store := draftstore.NewMemoryStore(10)
	h := NewResolvePaintPreviewHandler(store, testCatalog())
	ctx := context.Background()

	q := ResolvePaintPreviewQuery{
		LocationID: "loc-1",
		SessionID:  "sess-1",
		Cell:       "d1|2",
		EntityIDs:  []string{"e1"},
		TemplateID: "early",
	}
	preview, err := h.Handle(ctx, q)
	require.NoError(t, err)
	assert.True(t, preview.Resolved)
	assert.True(t, preview.WouldApply)
	assert.False(t, preview.WouldErase)
	assert.Equal(t, 0, preview.StartIndex)
	assert.Equal(t, 4, preview.EndIndex)
	assert.Len(t, preview.AffectedCells, 4)

	seed(t, store, domain.AssignmentBlock{DayKey: "d1", StartIndex: 0, EndIndex: 4, EntityIDs: []string{"e1"}, Label: "Early"})
	preview, err = h.Handle(ctx, q)
	require.NoError(t, err)
	assert.True(t, preview.WouldErase)

	d, err := store.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Version)

	q.Cell = "d1|40"
	preview, err = h.Handle(ctx, q)
	require.NoError(t, err)
	assert.False(t, preview.Resolved)
	assert.Empty(t, preview.AffectedCells)
}
