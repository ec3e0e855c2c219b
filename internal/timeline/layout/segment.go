// Package layout compresses overlapping time-range blocks into disjoint,
// column-laid-out segments for a renderer.
package layout

import (
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SegmentBlock is one input range owned by a column key.
type SegmentBlock struct {
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Color string   `json:"color,omitempty"`
	Lines []string `json:"lines,omitempty"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
}

// Column is one active key inside a segment.
type Column struct {
	Key      string   `json:"key"`
	Name     string   `json:"name"`
	Color    string   `json:"color,omitempty"`
	Lines    []string `json:"lines"`
	LeftPct  float64  `json:"left_pct"`
	WidthPct float64  `json:"width_pct"`
}

// Segment is a time slice [Start, End) with a constant set of columns.
type Segment struct {
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
	Columns []Column `json:"columns"`
}

// Options tunes ComputeSegments. A zero MaxColumns means unlimited.
type Options struct {
	MaxColumns    int
	ClampMin      *float64
	ClampMax      *float64
	MergeAdjacent bool
	Language      language.Tag
}

// DefaultOptions merges adjacent identical segments and collates with the
// root locale.
func DefaultOptions() Options {
	return Options{MergeAdjacent: true, Language: language.Und}
}

// WithClamp returns a copy of o restricted to [min, max].
func (o Options) WithClamp(min, max float64) Options {
	o.ClampMin = &min
	o.ClampMax = &max
	return o
}

// ComputeSegments sweeps the cut points of blocks and emits one segment per
// run of constant active blocks. Gaps with no active block produce no
// segment. The function is pure and deterministic.
func ComputeSegments(blocks []SegmentBlock, opts Options) []Segment {
	normalized := normalize(blocks, opts)
	cuts := cutPoints(normalized)
	segments := make([]Segment, 0, len(cuts))
	if len(cuts) < 2 {
		return segments
	}

	coll := collate.New(opts.Language)
	for i := 0; i+1 < len(cuts); i++ {
		from, to := cuts[i], cuts[i+1]
		columns := activeColumns(normalized, from, to)
		if len(columns) == 0 {
			continue
		}

		sortColumns(coll, columns)
		if opts.MaxColumns > 0 && len(columns) > opts.MaxColumns {
			columns = columns[:opts.MaxColumns]
		}
		assignWidths(columns)

		segments = append(segments, Segment{Start: from, End: to, Columns: columns})
	}

	if opts.MergeAdjacent {
		segments = mergeAdjacent(segments)
	}
	return segments
}

func normalize(blocks []SegmentBlock, opts Options) []SegmentBlock {
	out := make([]SegmentBlock, 0, len(blocks))
	for _, b := range blocks {
		if !finite(b.Start) || !finite(b.End) || b.End <= b.Start {
			continue
		}
		if opts.ClampMin != nil {
			b.Start = math.Max(b.Start, *opts.ClampMin)
			b.End = math.Max(b.End, *opts.ClampMin)
		}
		if opts.ClampMax != nil {
			b.Start = math.Min(b.Start, *opts.ClampMax)
			b.End = math.Min(b.End, *opts.ClampMax)
		}
		if b.End <= b.Start {
			continue
		}
		out = append(out, b)
	}
	return out
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func cutPoints(blocks []SegmentBlock) []float64 {
	points := make([]float64, 0, len(blocks)*2)
	for _, b := range blocks {
		points = append(points, b.Start, b.End)
	}
	sort.Float64s(points)

	out := points[:0]
	for i, p := range points {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}

func activeColumns(blocks []SegmentBlock, from, to float64) []Column {
	var columns []Column
	index := make(map[string]int)
	for _, b := range blocks {
		if !(b.Start < to && b.End > from) {
			continue
		}
		if i, ok := index[b.Key]; ok {
			columns[i].Lines = unionLines(columns[i].Lines, b.Lines)
			continue
		}
		index[b.Key] = len(columns)
		columns = append(columns, Column{
			Key:   b.Key,
			Name:  b.Name,
			Color: b.Color,
			Lines: unionLines(nil, b.Lines),
		})
	}
	return columns
}

func unionLines(dst, src []string) []string {
	if dst == nil {
		dst = make([]string, 0, len(src))
	}
	for _, line := range src {
		seen := false
		for _, existing := range dst {
			if existing == line {
				seen = true
				break
			}
		}
		if !seen {
			dst = append(dst, line)
		}
	}
	return dst
}

func sortColumns(coll *collate.Collator, columns []Column) {
	sort.SliceStable(columns, func(i, j int) bool {
		a, b := columns[i], columns[j]
		if c := coll.CompareString(a.Name, b.Name); c != 0 {
			return c < 0
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		if c := coll.CompareString(a.Key, b.Key); c != 0 {
			return c < 0
		}
		return a.Key < b.Key
	})
}

func assignWidths(columns []Column) {
	width := 100 / float64(len(columns))
	for i := range columns {
		columns[i].WidthPct = width
		columns[i].LeftPct = float64(i) * width
	}
}

func mergeAdjacent(segments []Segment) []Segment {
	if len(segments) < 2 {
		return segments
	}
	out := make([]Segment, 0, len(segments))
	prevSig := ""
	for _, seg := range segments {
		sig := signature(seg.Columns)
		if n := len(out); n > 0 && out[n-1].End == seg.Start && sig == prevSig {
			out[n-1].End = seg.End
			continue
		}
		out = append(out, seg)
		prevSig = sig
	}
	return out
}

// signature compares line sets, so line order does not block a merge.
func signature(columns []Column) string {
	var sb strings.Builder
	for _, c := range columns {
		sb.WriteString(strconv.Quote(c.Key))
		sb.WriteByte(':')
		sb.WriteString(strconv.Quote(c.Name))
		sb.WriteByte(':')
		sb.WriteString(strconv.Quote(c.Color))
		lines := slices.Clone(c.Lines)
		sort.Strings(lines)
		for _, line := range lines {
			sb.WriteByte(',')
			sb.WriteString(strconv.Quote(line))
		}
		sb.WriteByte(';')
	}
	return sb.String()
}
