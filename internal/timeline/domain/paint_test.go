package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTemplates = Templates{
	{ID: "early", Name: "Early", StartMinute: 8 * 60, EndMinute: 12 * 60, Color: "#f00"},
	{ID: "night", Name: "Night", StartMinute: 0, EndMinute: 360},
}

func TestResolvePaint_WholeDayKind(t *testing.T) {
	req := PaintRequest{
		Cell:               "2025-04-01|5",
		SelectedEntityIDs:  []string{"e1"},
		Spec:               KindSpec{Kind: ShiftKindVacation},
		Window:             Window{StartHour: 8, HoursCount: 12},
		Label:              "Vacation",
		KindPaintsWholeDay: true,
	}

	res, ok := ResolvePaint(req)
	require.True(t, ok)

	ids := res.AffectedCellIDs()
	require.Len(t, ids, 12)
	assert.Equal(t, "2025-04-01|0", ids[0])
	assert.Equal(t, "2025-04-01|11", ids[11])
	assert.Equal(t, "2025-04-01", res.DayKey)
	assert.Equal(t, Assignment{EntityIDs: []string{"e1"}, Label: "Vacation"}, res.Assignment)
}

func TestResolvePaint_SingleCellKind(t *testing.T) {
	res, ok := ResolvePaint(PaintRequest{
		Cell:              "2025-04-01|5",
		SelectedEntityIDs: []string{"e1", "e2"},
		Spec:              KindSpec{Kind: ShiftKindWork},
		Window:            DefaultWindow(),
	})
	require.True(t, ok)
	assert.Equal(t, []string{"2025-04-01|5"}, res.AffectedCellIDs())
	assert.Equal(t, IndexRange{Start: 5, End: 6}, res.Range)
}

func TestResolvePaint_Template(t *testing.T) {
	res, ok := ResolvePaint(PaintRequest{
		Cell:              "2025-04-01|9",
		SelectedEntityIDs: []string{"e1"},
		Spec:              TemplateSpec{TemplateID: "early"},
		Templates:         testTemplates,
		Window:            DefaultWindow(),
	})
	require.True(t, ok)
	assert.Equal(t, IndexRange{Start: 0, End: 4}, res.Range)
	assert.Len(t, res.AffectedCells, 4)
}

func TestResolvePaint_Rejections(t *testing.T) {
	base := PaintRequest{
		Cell:              "2025-04-01|1",
		SelectedEntityIDs: []string{"e1"},
		Spec:              TemplateSpec{TemplateID: "early"},
		Templates:         testTemplates,
		Window:            DefaultWindow(),
	}

	tests := []struct {
		name   string
		mutate func(r *PaintRequest)
	}{
		{name: "empty selection", mutate: func(r *PaintRequest) { r.SelectedEntityIDs = nil }},
		{name: "blank selection", mutate: func(r *PaintRequest) { r.SelectedEntityIDs = []string{" ", ""} }},
		{name: "malformed cell", mutate: func(r *PaintRequest) { r.Cell = "nonsense" }},
		{name: "whole day cell", mutate: func(r *PaintRequest) { r.Cell = "2025-04-01|day" }},
		{name: "slot outside window", mutate: func(r *PaintRequest) { r.Cell = "2025-04-01|12" }},
		{name: "unknown template", mutate: func(r *PaintRequest) { r.Spec = TemplateSpec{TemplateID: "gone"} }},
		{name: "template outside window", mutate: func(r *PaintRequest) { r.Spec = TemplateSpec{TemplateID: "night"} }},
		{name: "no catalog", mutate: func(r *PaintRequest) { r.Templates = nil }},
		{name: "nil spec", mutate: func(r *PaintRequest) { r.Spec = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, ok := ResolvePaint(req)
			assert.False(t, ok)
		})
	}
}

func TestResolvePaint_CopiesSelection(t *testing.T) {
	selection := []string{"e1"}
	res, ok := ResolvePaint(PaintRequest{
		Cell:              "d|0",
		SelectedEntityIDs: selection,
		Spec:              KindSpec{Kind: ShiftKindWork},
		Window:            DefaultWindow(),
	})
	require.True(t, ok)

	selection[0] = "changed"
	assert.Equal(t, []string{"e1"}, res.Assignment.EntityIDs)
}

func TestResolvePaint_Idempotent(t *testing.T) {
	req := PaintRequest{
		Cell:              "d|2",
		SelectedEntityIDs: []string{"e1"},
		Spec:              TemplateSpec{TemplateID: "early"},
		Templates:         testTemplates,
		Window:            DefaultWindow(),
		Label:             "Early",
	}
	first, ok1 := ResolvePaint(req)
	second, ok2 := ResolvePaint(req)
	assert.True(t, ok1)
	assert.True(t, ok2)
	assert.Equal(t, first, second)
}
