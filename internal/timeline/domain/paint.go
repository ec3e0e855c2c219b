package domain

// PaintRequest describes one paint gesture on the grid.
type PaintRequest struct {
	Cell               string
	SelectedEntityIDs  []string
	Spec               ShiftSpec
	Templates          TemplateCatalog
	Window             Window
	Label              string
	KindPaintsWholeDay bool
}

// Assignment is shared by every cell a paint affects.
type Assignment struct {
	EntityIDs []string `json:"entity_ids"`
	Label     string   `json:"label"`
}

// PaintResult is the outcome of resolving a paint gesture.
type PaintResult struct {
	DayKey        string
	Range         IndexRange
	AffectedCells []CellID
	Assignment    Assignment
}

// AffectedCellIDs returns the affected cells in wire form.
func (r PaintResult) AffectedCellIDs() []string {
	return CellStrings(r.AffectedCells)
}

// ResolvePaint turns a gesture into the cells it covers. ok is false for an
// empty or blank selection, a malformed or whole-day cell, a slot outside the window,
// or a template that is unknown or outside the window.
func ResolvePaint(req PaintRequest) (PaintResult, bool) {
	if len(NormalizeEntitySet(req.SelectedEntityIDs)) == 0 {
		return PaintResult{}, false
	}

	cell, ok := ParseCellID(req.Cell)
	if !ok || cell.WholeDay {
		return PaintResult{}, false
	}
	if !req.Window.Contains(cell.Slot) {
		return PaintResult{}, false
	}

	var r IndexRange
	switch spec := req.Spec.(type) {
	case KindSpec:
		if req.KindPaintsWholeDay {
			r = req.Window.FullRange()
		} else {
			r = IndexRange{Start: cell.Slot, End: cell.Slot + 1}
		}
	case TemplateSpec:
		if req.Templates == nil {
			return PaintResult{}, false
		}
		tmpl, found := req.Templates.Lookup(spec.TemplateID)
		if !found {
			return PaintResult{}, false
		}
		r, ok = ResolveTemplateRange(req.Window, tmpl)
		if !ok {
			return PaintResult{}, false
		}
	default:
		return PaintResult{}, false
	}

	entityIDs := make([]string, len(req.SelectedEntityIDs))
	copy(entityIDs, req.SelectedEntityIDs)

	return PaintResult{
		DayKey:        cell.DayKey,
		Range:         r,
		AffectedCells: CellIDsForRange(cell.DayKey, r),
		Assignment: Assignment{
			EntityIDs: entityIDs,
			Label:     req.Label,
		},
	}, true
}
