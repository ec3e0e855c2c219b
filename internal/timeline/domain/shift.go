package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ShiftKind is a coarse shift category with no intrinsic duration.
type ShiftKind string

const (
	ShiftKindWork     ShiftKind = "WORK"
	ShiftKindVacation ShiftKind = "VACATION"
	ShiftKindOff      ShiftKind = "OFF"
	ShiftKindSick     ShiftKind = "SICK"
	ShiftKindTraining ShiftKind = "TRAINING"
)

// ErrUnknownShiftKind is returned for a kind outside the fixed set.
var ErrUnknownShiftKind = errors.New("unknown shift kind")

// ParseShiftKind accepts any casing of a known kind.
func ParseShiftKind(s string) (ShiftKind, error) {
	switch k := ShiftKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case ShiftKindWork, ShiftKindVacation, ShiftKindOff, ShiftKindSick, ShiftKindTraining:
		return k, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownShiftKind, s)
	}
}

// Label returns the default display label for the kind.
func (k ShiftKind) Label() string {
	switch k {
	case ShiftKindWork:
		return "Work"
	case ShiftKindVacation:
		return "Vacation"
	case ShiftKindOff:
		return "Off"
	case ShiftKindSick:
		return "Sick"
	case ShiftKindTraining:
		return "Training"
	default:
		return string(k)
	}
}

// ShiftTemplate is a named, duration-bearing shift. Minutes count from local
// midnight; EndMinute may exceed 1440 for shifts that run past midnight.
type ShiftTemplate struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Color       string `json:"color,omitempty"`
}

// ShiftSpec is what a paint gesture applies: either a KindSpec or a
// TemplateSpec. The set of implementations is closed.
type ShiftSpec interface {
	isShiftSpec()
}

// KindSpec paints a coarse category.
type KindSpec struct {
	Kind ShiftKind
}

// TemplateSpec paints the range of a catalog template.
type TemplateSpec struct {
	TemplateID string
}

func (KindSpec) isShiftSpec()     {}
func (TemplateSpec) isShiftSpec() {}

// TemplateCatalog looks templates up by id.
type TemplateCatalog interface {
	Lookup(id string) (ShiftTemplate, bool)
}

// Templates is a slice-backed catalog.
type Templates []ShiftTemplate

// Lookup returns the first template with the given id.
func (ts Templates) Lookup(id string) (ShiftTemplate, bool) {
	for _, t := range ts {
		if t.ID == id {
			return t, true
		}
	}
	return ShiftTemplate{}, false
}

// LabelResolver names what a spec paints. It is consulted when a paint
// request does not carry an explicit label.
type LabelResolver func(spec ShiftSpec) string

// DefaultLabelResolver uses the kind label or the template name.
func DefaultLabelResolver(templates TemplateCatalog) LabelResolver {
	return func(spec ShiftSpec) string {
		switch s := spec.(type) {
		case KindSpec:
			return s.Kind.Label()
		case TemplateSpec:
			if templates != nil {
				if t, ok := templates.Lookup(s.TemplateID); ok && t.Name != "" {
					return t.Name
				}
			}
			return s.TemplateID
		default:
			return ""
		}
	}
}
