package domain

import (
	"slices"
	"sort"
	"strings"
)

// AssignmentBlock maps a contiguous slot range of one day to a set of
// entities under a label. Blocks for different entity sets or labels may
// overlap freely.
type AssignmentBlock struct {
	DayKey     string   `json:"day_key"`
	StartIndex int      `json:"start_index"`
	EndIndex   int      `json:"end_index"`
	EntityIDs  []string `json:"entity_ids"`
	Label      string   `json:"label"`
}

// Range returns the block's slot range.
func (b AssignmentBlock) Range() IndexRange {
	return IndexRange{Start: b.StartIndex, End: b.EndIndex}
}

// Valid reports whether the block satisfies 0 <= start < end.
func (b AssignmentBlock) Valid() bool {
	return b.DayKey != "" && b.StartIndex >= 0 && b.EndIndex > b.StartIndex && len(b.EntityIDs) > 0
}

// ValidIn additionally checks the block fits the window.
func (b AssignmentBlock) ValidIn(w Window) bool {
	return b.Valid() && b.EndIndex <= w.HoursCount
}

// HasEntity reports whether id is one of the block's entities.
func (b AssignmentBlock) HasEntity(id string) bool {
	return slices.Contains(b.EntityIDs, id)
}

func (b AssignmentBlock) clone() AssignmentBlock {
	b.EntityIDs = slices.Clone(b.EntityIDs)
	return b
}

// blockOwner is the (day, entity set, label) triple blocks are merged by.
type blockOwner struct {
	dayKey string
	set    string
	label  string
}

func ownerOf(b AssignmentBlock) blockOwner {
	return blockOwner{dayKey: b.DayKey, set: entitySetKey(b.EntityIDs), label: b.Label}
}

// NormalizeEntitySet sorts and de-duplicates entity ids, dropping blanks.
func NormalizeEntitySet(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			continue
		}
		out = append(out, id)
	}
	sort.Strings(out)
	return slices.Compact(out)
}

func entitySetKey(ids []string) string {
	return strings.Join(NormalizeEntitySet(ids), "\x1f")
}

// BlocksForDay returns the blocks of one day in store order.
func BlocksForDay(blocks []AssignmentBlock, dayKey string) []AssignmentBlock {
	out := make([]AssignmentBlock, 0)
	for _, b := range blocks {
		if b.DayKey == dayKey {
			out = append(out, b.clone())
		}
	}
	return out
}

// SortBlocks orders blocks by day, start, end, label and entity set.
func SortBlocks(blocks []AssignmentBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		a, b := blocks[i], blocks[j]
		if a.DayKey != b.DayKey {
			return a.DayKey < b.DayKey
		}
		if a.StartIndex != b.StartIndex {
			return a.StartIndex < b.StartIndex
		}
		if a.EndIndex != b.EndIndex {
			return a.EndIndex < b.EndIndex
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return entitySetKey(a.EntityIDs) < entitySetKey(b.EntityIDs)
	})
}
