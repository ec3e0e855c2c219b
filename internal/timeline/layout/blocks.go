package layout

import (
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
)

// FromAssignmentBlocks expands the blocks of one day into one SegmentBlock
// per (block, entity) pair, keyed by entity id and carrying the block label
// as its line. Entities missing from dir are named by their id.
func FromAssignmentBlocks(blocks []domain.AssignmentBlock, dayKey string, dir domain.EntityDirectory) []SegmentBlock {
	out := make([]SegmentBlock, 0, len(blocks))
	for _, b := range blocks {
		if b.DayKey != dayKey || !b.Valid() {
			continue
		}
		for _, id := range b.EntityIDs {
			sb := SegmentBlock{
				Key:   id,
				Name:  id,
				Start: float64(b.StartIndex),
				End:   float64(b.EndIndex),
			}
			if dir != nil {
				if e, ok := dir.Entity(id); ok {
					if e.Name != "" {
						sb.Name = e.Name
					}
					sb.Color = e.Color
				}
			}
			if b.Label != "" {
				sb.Lines = []string{b.Label}
			}
			out = append(out, sb)
		}
	}
	return out
}

// DayLayout computes the segments of one day within the window.
func DayLayout(blocks []domain.AssignmentBlock, dayKey string, dir domain.EntityDirectory, w domain.Window, opts Options) []Segment {
	if w.HoursCount > 0 {
		opts = opts.WithClamp(0, float64(w.HoursCount))
	}
	return ComputeSegments(FromAssignmentBlocks(blocks, dayKey, dir), opts)
}
