package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kindPaint(cell string, entities ...string) PaintRequest {
	return PaintRequest{
		Cell:              cell,
		SelectedEntityIDs: entities,
		Spec:              KindSpec{Kind: ShiftKindWork},
		Window:            DefaultWindow(),
	}
}

func TestApplyPaint_AddsThenToggleErases(t *testing.T) {
	labels := DefaultLabelResolver(nil)

	blocks := ApplyPaint(nil, kindPaint("d|3", "e1"), labels, PaintModeToggle)
	require.Len(t, blocks, 1)
	assert.Equal(t, AssignmentBlock{DayKey: "d", StartIndex: 3, EndIndex: 4, EntityIDs: []string{"e1"}, Label: "Work"}, blocks[0])

	blocks = ApplyPaint(blocks, kindPaint("d|3", "e1"), labels, PaintModeToggle)
	assert.Empty(t, blocks)
}

func TestApplyPaint_CoalescesAdjacent(t *testing.T) {
	labels := DefaultLabelResolver(nil)

	var blocks []AssignmentBlock
	for _, cell := range []string{"d|1", "d|3", "d|2"} {
		blocks = ApplyPaint(blocks, kindPaint(cell, "e1"), labels, PaintModeToggle)
	}

	require.Len(t, blocks, 1)
	assert.Equal(t, 1, blocks[0].StartIndex)
	assert.Equal(t, 4, blocks[0].EndIndex)
}

func TestApplyPaint_EraseSplitsBlock(t *testing.T) {
	prev := []AssignmentBlock{{DayKey: "d", StartIndex: 0, EndIndex: 5, EntityIDs: []string{"e1"}, Label: "Work"}}

	blocks := ApplyPaint(prev, kindPaint("d|2", "e1"), DefaultLabelResolver(nil), PaintModeToggle)

	require.Len(t, blocks, 2)
	assert.Equal(t, IndexRange{Start: 0, End: 2}, blocks[0].Range())
	assert.Equal(t, IndexRange{Start: 3, End: 5}, blocks[1].Range())
}

func TestApplyPaint_PartialCoverageAdds(t *testing.T) {
	prev := []AssignmentBlock{{DayKey: "d", StartIndex: 0, EndIndex: 2, EntityIDs: []string{"e1"}, Label: "Early"}}
	req := PaintRequest{
		Cell:              "d|0",
		SelectedEntityIDs: []string{"e1"},
		Spec:              TemplateSpec{TemplateID: "early"},
		Templates:         testTemplates,
		Window:            DefaultWindow(),
	}

	blocks := ApplyPaint(prev, req, DefaultLabelResolver(testTemplates), PaintModeToggle)

	require.Len(t, blocks, 1)
	assert.Equal(t, IndexRange{Start: 0, End: 4}, blocks[0].Range())
	assert.Equal(t, "Early", blocks[0].Label)
}

func TestApplyPaint_EntitySetOrderIgnored(t *testing.T) {
	labels := DefaultLabelResolver(nil)
	blocks := ApplyPaint(nil, kindPaint("d|4", "e2", "e1"), labels, PaintModeToggle)
	blocks = ApplyPaint(blocks, kindPaint("d|4", "e1", "e2"), labels, PaintModeToggle)
	assert.Empty(t, blocks)
}

func TestApplyPaint_DifferentOwnersOverlap(t *testing.T) {
	labels := DefaultLabelResolver(nil)
	blocks := ApplyPaint(nil, kindPaint("d|4", "e1"), labels, PaintModeToggle)
	blocks = ApplyPaint(blocks, kindPaint("d|4", "e2"), labels, PaintModeToggle)

	require.Len(t, blocks, 2)
	assert.Equal(t, blocks[0].Range(), blocks[1].Range())
}

func TestApplyPaint_Modes(t *testing.T) {
	labels := DefaultLabelResolver(nil)
	prev := []AssignmentBlock{{DayKey: "d", StartIndex: 4, EndIndex: 5, EntityIDs: []string{"e1"}, Label: "Work"}}

	added := ApplyPaint(prev, kindPaint("d|4", "e1"), labels, PaintModeAdd)
	assert.Equal(t, prev, added)

	erased := ApplyPaint(prev, kindPaint("d|4", "e1"), labels, PaintModeErase)
	assert.Empty(t, erased)

	untouched := ApplyPaint(prev, kindPaint("d|7", "e1"), labels, PaintModeErase)
	assert.Equal(t, prev, untouched)
}

func TestApplyPaint_NoopReturnsPrev(t *testing.T) {
	prev := []AssignmentBlock{{DayKey: "d", StartIndex: 0, EndIndex: 1, EntityIDs: []string{"e1"}, Label: "Work"}}

	next := ApplyPaint(prev, kindPaint("d|0"), DefaultLabelResolver(nil), PaintModeToggle)
	assert.Equal(t, prev, next)

	next = ApplyPaint(prev, kindPaint("broken", "e1"), DefaultLabelResolver(nil), PaintModeToggle)
	assert.Equal(t, prev, next)
}

func TestApplyPaint_DoesNotMutatePrev(t *testing.T) {
	prev := []AssignmentBlock{
		{DayKey: "d", StartIndex: 0, EndIndex: 3, EntityIDs: []string{"e1"}, Label: "Work"},
		{DayKey: "d", StartIndex: 0, EndIndex: 3, EntityIDs: []string{"e9"}, Label: "Work"},
	}
	snapshot := []AssignmentBlock{
		{DayKey: "d", StartIndex: 0, EndIndex: 3, EntityIDs: []string{"e1"}, Label: "Work"},
		{DayKey: "d", StartIndex: 0, EndIndex: 3, EntityIDs: []string{"e9"}, Label: "Work"},
	}

	next := ApplyPaint(prev, kindPaint("d|1", "e1"), DefaultLabelResolver(nil), PaintModeToggle)
	next[0].EntityIDs[0] = "mutated"

	assert.Equal(t, snapshot, prev)
}

func TestApplyPaint_ExplicitLabelWins(t *testing.T) {
	req := kindPaint("d|0", "e1")
	req.Label = "Front desk"
	blocks := ApplyPaint(nil, req, DefaultLabelResolver(nil), PaintModeToggle)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Front desk", blocks[0].Label)
}

func TestNormalizeBlocks(t *testing.T) {
	in := []AssignmentBlock{
		{DayKey: "d", StartIndex: 3, EndIndex: 5, EntityIDs: []string{"b", "a"}, Label: "x"},
		{DayKey: "d", StartIndex: 0, EndIndex: 3, EntityIDs: []string{"a", "b", "a"}, Label: "x"},
		{DayKey: "d", StartIndex: 2, EndIndex: 2, EntityIDs: []string{"a"}, Label: "x"},
		{DayKey: "c", StartIndex: 1, EndIndex: 2, EntityIDs: []string{"a"}, Label: "x"},
	}

	out := NormalizeBlocks(in)

	require.Len(t, out, 2)
	assert.Equal(t, "c", out[0].DayKey)
	assert.Equal(t, AssignmentBlock{DayKey: "d", StartIndex: 0, EndIndex: 5, EntityIDs: []string{"a", "b"}, Label: "x"}, out[1])
}
