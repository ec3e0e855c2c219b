package domain

import (
	"strconv"
	"strings"
)

const (
	cellSeparator = "|"
	// WholeDayMarker is the slot token used by month-grid cells.
	WholeDayMarker = "day"
)

// CellID identifies one timeline grid cell: a pre-localized day key plus either
// an hour offset inside the visible window or the whole-day marker.
type CellID struct {
	DayKey   string
	Slot     int
	WholeDay bool
}

// NewCellID creates a cell id for an hour slot.
func NewCellID(dayKey string, slot int) CellID {
	return CellID{DayKey: dayKey, Slot: slot}
}

// NewWholeDayCellID creates a cell id carrying the whole-day marker.
func NewWholeDayCellID(dayKey string) CellID {
	return CellID{DayKey: dayKey, WholeDay: true}
}

// String renders the wire form, "2025-04-01|3" or "2025-04-01|day".
func (c CellID) String() string {
	if c.WholeDay {
		return c.DayKey + cellSeparator + WholeDayMarker
	}
	return c.DayKey + cellSeparator + strconv.Itoa(c.Slot)
}

// ParseCellID parses the wire form of a cell id. It never panics; ok is false
// for anything that is not a day key followed by a slot index or the marker.
func ParseCellID(raw string) (CellID, bool) {
	idx := strings.LastIndex(raw, cellSeparator)
	if idx <= 0 || idx == len(raw)-1 {
		return CellID{}, false
	}

	dayKey, slotPart := raw[:idx], raw[idx+1:]
	if strings.TrimSpace(dayKey) == "" {
		return CellID{}, false
	}
	if slotPart == WholeDayMarker {
		return NewWholeDayCellID(dayKey), true
	}

	slot, err := strconv.Atoi(slotPart)
	if err != nil || slot < 0 {
		return CellID{}, false
	}
	return NewCellID(dayKey, slot), true
}

// CellIDsForRange lists the hour cells of dayKey in [r.Start, r.End).
func CellIDsForRange(dayKey string, r IndexRange) []CellID {
	if r.Len() <= 0 {
		return nil
	}
	cells := make([]CellID, 0, r.Len())
	for i := r.Start; i < r.End; i++ {
		cells = append(cells, NewCellID(dayKey, i))
	}
	return cells
}

// CellStrings converts cell ids to their wire form.
func CellStrings(cells []CellID) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = c.String()
	}
	return out
}
