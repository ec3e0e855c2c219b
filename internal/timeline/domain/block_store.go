package domain

import (
	"errors"
	"fmt"
	"sort"
)

// PaintMode decides whether a paint adds or removes coverage.
type PaintMode string

const (
	// PaintModeToggle erases when the affected range is already fully covered
	// by the same entity set and label on that day, and adds otherwise.
	PaintModeToggle PaintMode = "toggle"
	PaintModeAdd    PaintMode = "add"
	PaintModeErase  PaintMode = "erase"
)

// ErrUnknownPaintMode is returned for a mode other than toggle, add or erase.
var ErrUnknownPaintMode = errors.New("unknown paint mode")

// ParsePaintMode maps an empty string to PaintModeToggle.
func ParsePaintMode(s string) (PaintMode, error) {
	switch m := PaintMode(s); m {
	case "":
		return PaintModeToggle, nil
	case PaintModeToggle, PaintModeAdd, PaintModeErase:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownPaintMode, s)
	}
}

// PaintOutcome reports what ApplyPaint did.
type PaintOutcome struct {
	Blocks  []AssignmentBlock
	Result  PaintResult
	Applied bool
	Erased  bool
}

// ApplyPaint folds one paint gesture into prev and returns the new block
// list. prev is never modified. When the gesture does not resolve, prev is
// returned as is.
func ApplyPaint(prev []AssignmentBlock, req PaintRequest, labels LabelResolver, mode PaintMode) []AssignmentBlock {
	return Paint(prev, req, labels, mode).Blocks
}

// Paint is ApplyPaint with the resolution details kept.
func Paint(prev []AssignmentBlock, req PaintRequest, labels LabelResolver, mode PaintMode) PaintOutcome {
	if req.Label == "" && labels != nil && req.Spec != nil {
		req.Label = labels(req.Spec)
	}

	res, ok := ResolvePaint(req)
	if !ok {
		return PaintOutcome{Blocks: prev}
	}

	owner := blockOwner{
		dayKey: res.DayKey,
		set:    entitySetKey(res.Assignment.EntityIDs),
		label:  res.Assignment.Label,
	}

	others := make([]AssignmentBlock, 0, len(prev)+1)
	var owned []IndexRange
	for _, b := range prev {
		if ownerOf(b) == owner {
			owned = append(owned, b.Range())
			continue
		}
		others = append(others, b.clone())
	}

	var erase bool
	switch mode {
	case PaintModeErase:
		erase = true
	case PaintModeAdd:
	default:
		erase = fullyCovered(owned, res.Range)
	}

	var next []IndexRange
	if erase {
		if !anyOverlap(owned, res.Range) {
			return PaintOutcome{Blocks: prev, Result: res}
		}
		next = subtractRange(owned, res.Range)
	} else {
		next = append(append(next, owned...), res.Range)
	}

	entities := NormalizeEntitySet(res.Assignment.EntityIDs)
	for _, r := range coalesceRanges(next) {
		others = append(others, AssignmentBlock{
			DayKey:     res.DayKey,
			StartIndex: r.Start,
			EndIndex:   r.End,
			EntityIDs:  append([]string(nil), entities...),
			Label:      res.Assignment.Label,
		})
	}

	blocks := NormalizeBlocks(others)
	return PaintOutcome{Blocks: blocks, Result: res, Applied: true, Erased: erase}
}

// NormalizeBlocks drops invalid blocks and coalesces overlapping or touching
// blocks of the same (day, entity set, label). The input is not modified.
func NormalizeBlocks(blocks []AssignmentBlock) []AssignmentBlock {
	groups := make(map[blockOwner][]IndexRange)
	first := make(map[blockOwner]AssignmentBlock)
	order := make([]blockOwner, 0)

	for _, b := range blocks {
		if !b.Valid() {
			continue
		}
		o := ownerOf(b)
		if _, seen := first[o]; !seen {
			first[o] = b
			order = append(order, o)
		}
		groups[o] = append(groups[o], b.Range())
	}

	out := make([]AssignmentBlock, 0, len(blocks))
	for _, o := range order {
		proto := first[o]
		entities := NormalizeEntitySet(proto.EntityIDs)
		for _, r := range coalesceRanges(groups[o]) {
			out = append(out, AssignmentBlock{
				DayKey:     o.dayKey,
				StartIndex: r.Start,
				EndIndex:   r.End,
				EntityIDs:  append([]string(nil), entities...),
				Label:      o.label,
			})
		}
	}
	SortBlocks(out)
	return out
}

func coalesceRanges(ranges []IndexRange) []IndexRange {
	if len(ranges) == 0 {
		return nil
	}
	sorted := make([]IndexRange, 0, len(ranges))
	for _, r := range ranges {
		if r.Len() > 0 {
			sorted = append(sorted, r)
		}
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := make([]IndexRange, 0, len(sorted))
	for _, r := range sorted {
		if n := len(out); n > 0 && r.Start <= out[n-1].End {
			if r.End > out[n-1].End {
				out[n-1].End = r.End
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

func fullyCovered(ranges []IndexRange, target IndexRange) bool {
	cursor := target.Start
	for _, r := range coalesceRanges(ranges) {
		if r.Start > cursor {
			break
		}
		if r.End > cursor {
			cursor = r.End
		}
		if cursor >= target.End {
			return true
		}
	}
	return cursor >= target.End
}

func anyOverlap(ranges []IndexRange, target IndexRange) bool {
	for _, r := range ranges {
		if r.Overlaps(target) {
			return true
		}
	}
	return false
}

func subtractRange(ranges []IndexRange, cut IndexRange) []IndexRange {
	out := make([]IndexRange, 0, len(ranges)+1)
	for _, r := range ranges {
		if !r.Overlaps(cut) {
			out = append(out, r)
			continue
		}
		if r.Start < cut.Start {
			out = append(out, IndexRange{Start: r.Start, End: cut.Start})
		}
		if r.End > cut.End {
			out = append(out, IndexRange{Start: cut.End, End: r.End})
		}
	}
	return out
}
