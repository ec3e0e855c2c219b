package domain

// Window is the visible hour window of the grid. Slot i stands for hour
// StartHour+i, for i in [0, HoursCount).
type Window struct {
	StartHour  int `json:"start_hour" toml:"start_hour"`
	HoursCount int `json:"hours_count" toml:"hours_count"`
}

// DefaultWindow covers 08:00 to 20:00.
func DefaultWindow() Window {
	return Window{StartHour: 8, HoursCount: 12}
}

// Contains reports whether slot lies inside the window.
func (w Window) Contains(slot int) bool {
	return slot >= 0 && slot < w.HoursCount
}

// FullRange returns every slot of the window.
func (w Window) FullRange() IndexRange {
	if w.HoursCount <= 0 {
		return IndexRange{}
	}
	return IndexRange{Start: 0, End: w.HoursCount}
}

// IndexRange is a half-open slot range [Start, End).
type IndexRange struct {
	Start int `json:"start_index"`
	End   int `json:"end_index"`
}

// Len returns the number of slots in the range.
func (r IndexRange) Len() int {
	return r.End - r.Start
}

// Overlaps uses half-open semantics; touching ranges do not overlap.
func (r IndexRange) Overlaps(other IndexRange) bool {
	return r.Start < other.End && r.End > other.Start
}

// Covers reports whether every slot of other is inside r.
func (r IndexRange) Covers(other IndexRange) bool {
	return r.Start <= other.Start && r.End >= other.End
}

// ResolveTemplateRange converts a template's minute range into a slot range
// inside the window. ok is false when the template does not intersect the
// window or collapses to an empty range after clamping.
func ResolveTemplateRange(w Window, t ShiftTemplate) (IndexRange, bool) {
	if w.HoursCount <= 0 {
		return IndexRange{}, false
	}

	rawStart := floorDiv(t.StartMinute, 60) - w.StartHour
	rawEnd := ceilDiv(t.EndMinute, 60) - w.StartHour
	if rawEnd <= 0 || rawStart >= w.HoursCount {
		return IndexRange{}, false
	}

	r := IndexRange{
		Start: clamp(rawStart, 0, w.HoursCount-1),
		End:   clamp(rawEnd, 0, w.HoursCount),
	}
	if r.End <= r.Start {
		return IndexRange{}, false
	}
	return r, true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func ceilDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) == (b < 0)) {
		q++
	}
	return q
}
