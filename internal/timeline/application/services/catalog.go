// Package services holds the configuration the timeline handlers resolve
// paints and layouts against.
package services

import (
	"fmt"

	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/layout"
	"golang.org/x/text/language"
)

// Catalog bundles the visible window, the shift templates, the entity
// directory and the layout options of a deployment.
type Catalog struct {
	Window             domain.Window
	Templates          domain.Templates
	Entities           domain.Entities
	KindPaintsWholeDay bool
	MaxColumns         int
	Language           language.Tag
}

// DefaultCatalog is an 08:00 to 20:00 window with no templates, so only
// kind paints resolve.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Window:     domain.DefaultWindow(),
		MaxColumns: layout.DefaultOptions().MaxColumns,
		Language:   language.Und,
	}
}

// Validate checks the window, and that template and entity ids are unique.
func (c *Catalog) Validate() error {
	if c.Window.HoursCount <= 0 || c.Window.HoursCount > 24 {
		return fmt.Errorf("window hours_count must be between 1 and 24, got %d", c.Window.HoursCount)
	}
	if c.Window.StartHour < 0 || c.Window.StartHour > 23 {
		return fmt.Errorf("window start_hour must be between 0 and 23, got %d", c.Window.StartHour)
	}
	seen := make(map[string]bool, len(c.Templates))
	for _, t := range c.Templates {
		if t.ID == "" {
			return fmt.Errorf("template without id")
		}
		if seen[t.ID] {
			return fmt.Errorf("duplicate template %q", t.ID)
		}
		if t.EndMinute <= t.StartMinute {
			return fmt.Errorf("template %q ends before it starts", t.ID)
		}
		seen[t.ID] = true
	}
	seen = make(map[string]bool, len(c.Entities))
	for _, e := range c.Entities {
		if e.ID == "" {
			return fmt.Errorf("entity without id")
		}
		if seen[e.ID] {
			return fmt.Errorf("duplicate entity %q", e.ID)
		}
		seen[e.ID] = true
	}
	return nil
}

// Labels names paints by kind label or template name.
func (c *Catalog) Labels() domain.LabelResolver {
	return domain.DefaultLabelResolver(c.Templates)
}

// LayoutOptions returns the segmentation options for this catalog.
func (c *Catalog) LayoutOptions() layout.Options {
	opts := layout.DefaultOptions()
	if c.MaxColumns > 0 {
		opts.MaxColumns = c.MaxColumns
	}
	opts.Language = c.Language
	return opts
}

// PaintRequest fills the catalog's window, templates and policy into a
// gesture.
func (c *Catalog) PaintRequest(cell string, entityIDs []string, spec domain.ShiftSpec, label string) domain.PaintRequest {
	return domain.PaintRequest{
		Cell:               cell,
		SelectedEntityIDs:  entityIDs,
		Spec:               spec,
		Templates:          c.Templates,
		Window:             c.Window,
		Label:              label,
		KindPaintsWholeDay: c.KindPaintsWholeDay,
	}
}

// ParseSpec reads a shift spec from its wire form: a template id when
// templateID is set, the kind otherwise.
func ParseSpec(kind, templateID string) (domain.ShiftSpec, error) {
	if templateID != "" {
		return domain.TemplateSpec{TemplateID: templateID}, nil
	}
	k, err := domain.ParseShiftKind(kind)
	if err != nil {
		return nil, err
	}
	return domain.KindSpec{Kind: k}, nil
}
