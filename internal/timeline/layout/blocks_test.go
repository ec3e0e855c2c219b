package layout

import (
	"testing"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAssignmentBlocks(t *testing.T) {
	dir := domain.Entities{{ID: "e1", Name: "Alice", Color: "#a00"}}
	blocks := []domain.AssignmentBlock{
		{DayKey: "2025-04-01", StartIndex: 0, EndIndex: 2, EntityIDs: []string{"e1", "e2"}, Label: "Work"},
		{DayKey: "2025-04-02", StartIndex: 0, EndIndex: 2, EntityIDs: []string{"e1"}, Label: "Work"},
	}

	out := FromAssignmentBlocks(blocks, "2025-04-01", dir)

	require.Len(t, out, 2)
	assert.Equal(t, SegmentBlock{Key: "e1", Name: "Alice", Color: "#a00", Lines: []string{"Work"}, Start: 0, End: 2}, out[0])
	assert.Equal(t, "e2", out[1].Name)
}

func TestDayLayout(t *testing.T) {
	dir := domain.Entities{
		{ID: "e1", Name: "Alice"},
		{ID: "e2", Name: "Bob"},
	}
	blocks := []domain.AssignmentBlock{
		{DayKey: "d", StartIndex: 0, EndIndex: 4, EntityIDs: []string{"e1"}, Label: "Early"},
		{DayKey: "d", StartIndex: 2, EndIndex: 6, EntityIDs: []string{"e2"}, Label: "Work"},
		{DayKey: "d", StartIndex: 4, EndIndex: 6, EntityIDs: []string{"e1"}, Label: "Early"},
	}

	segs := DayLayout(blocks, "d", dir, domain.DefaultWindow(), DefaultOptions())

	require.Len(t, segs, 2)
	assert.Equal(t, 2.0, segs[1].Start)
	assert.Equal(t, 6.0, segs[1].End)
	require.Len(t, segs[1].Columns, 2)
	assert.Equal(t, "Alice", segs[1].Columns[0].Name)
	assert.Equal(t, []string{"Early"}, segs[1].Columns[0].Lines)
}
