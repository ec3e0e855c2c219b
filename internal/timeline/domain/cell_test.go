package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCellID(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   CellID
		wantOK bool
	}{
		{name: "hour slot", raw: "2025-04-01|3", want: NewCellID("2025-04-01", 3), wantOK: true},
		{name: "whole day", raw: "2025-04-01|day", want: NewWholeDayCellID("2025-04-01"), wantOK: true},
		{name: "separator inside day key", raw: "loc|2025-04-01|0", want: NewCellID("loc|2025-04-01", 0), wantOK: true},
		{name: "empty", raw: ""},
		{name: "no separator", raw: "2025-04-01"},
		{name: "trailing separator", raw: "2025-04-01|"},
		{name: "leading separator", raw: "|3"},
		{name: "negative slot", raw: "2025-04-01|-1"},
		{name: "garbage slot", raw: "2025-04-01|x"},
		{name: "blank day key", raw: "  |2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCellID(tt.raw)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCellID_StringRoundTrip(t *testing.T) {
	for _, c := range []CellID{NewCellID("2025-04-01", 0), NewWholeDayCellID("2025-04-01")} {
		parsed, ok := ParseCellID(c.String())
		assert.True(t, ok)
		assert.Equal(t, c, parsed)
	}
}

func TestCellIDsForRange(t *testing.T) {
	cells := CellIDsForRange("d", IndexRange{Start: 2, End: 5})
	assert.Equal(t, []string{"d|2", "d|3", "d|4"}, CellStrings(cells))
	assert.Empty(t, CellIDsForRange("d", IndexRange{Start: 3, End: 3}))
}
