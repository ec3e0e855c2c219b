// Package catalogfile reads the timeline catalog from a TOML file.
package catalogfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/felixgeelhaar/shiftgrid/internal/shared/infrastructure/security"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/application/services"
	"github.com/felixgeelhaar/shiftgrid/internal/timeline/domain"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
)

// File is the on-disk layout.
//
//	[window]
//	start_hour = 6
//	hours_count = 16
//	kind_paints_whole_day = true
//
//	[layout]
//	max_columns = 4
//	language = "de"
//
//	[[templates]]
//	id = "early"
//	name = "Early"
//	start = "06:00"
//	end = "14:00"
//
//	[[entities]]
//	id = "e1"
//	name = "Alice"
//	type = "employee"
type File struct {
	Window    windowSection     `toml:"window"`
	Layout    layoutSection     `toml:"layout"`
	Templates []templateSection `toml:"templates"`
	Entities  []entitySection   `toml:"entities"`
}

type windowSection struct {
	StartHour          *int `toml:"start_hour"`
	HoursCount         *int `toml:"hours_count"`
	KindPaintsWholeDay bool `toml:"kind_paints_whole_day"`
}

type layoutSection struct {
	MaxColumns int    `toml:"max_columns"`
	Language   string `toml:"language"`
}

type templateSection struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Start string `toml:"start"`
	End   string `toml:"end"`
	Color string `toml:"color"`
}

type entitySection struct {
	ID    string `toml:"id"`
	Name  string `toml:"name"`
	Color string `toml:"color"`
	Type  string `toml:"type"`
}

// Load reads the catalog at path. An empty path yields the default catalog.
func Load(path string) (*services.Catalog, error) {
	if path == "" {
		return services.DefaultCatalog(), nil
	}
	data, err := security.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog from TOML and validates it.
func Parse(data []byte) (*services.Catalog, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing catalog file: %w", err)
	}

	cat := services.DefaultCatalog()
	if f.Window.StartHour != nil {
		cat.Window.StartHour = *f.Window.StartHour
	}
	if f.Window.HoursCount != nil {
		cat.Window.HoursCount = *f.Window.HoursCount
	}
	cat.KindPaintsWholeDay = f.Window.KindPaintsWholeDay
	if f.Layout.MaxColumns < 0 {
		return nil, fmt.Errorf("layout max_columns must not be negative")
	}
	cat.MaxColumns = f.Layout.MaxColumns
	if f.Layout.Language != "" {
		tag, err := language.Parse(f.Layout.Language)
		if err != nil {
			return nil, fmt.Errorf("layout language %q: %w", f.Layout.Language, err)
		}
		cat.Language = tag
	}

	for _, t := range f.Templates {
		start, err := parseClock(t.Start)
		if err != nil {
			return nil, fmt.Errorf("template %q start: %w", t.ID, err)
		}
		end, err := parseClock(t.End)
		if err != nil {
			return nil, fmt.Errorf("template %q end: %w", t.ID, err)
		}
		if end <= start {
			end += 24 * 60
		}
		cat.Templates = append(cat.Templates, domain.ShiftTemplate{
			ID:          t.ID,
			Name:        t.Name,
			StartMinute: start,
			EndMinute:   end,
			Color:       t.Color,
		})
	}

	for _, e := range f.Entities {
		typ := domain.EntityType(strings.ToLower(e.Type))
		switch typ {
		case "":
			typ = domain.EntityTypeEmployee
		case domain.EntityTypeEmployee, domain.EntityTypeResource:
		default:
			return nil, fmt.Errorf("entity %q: unknown type %q", e.ID, e.Type)
		}
		cat.Entities = append(cat.Entities, domain.Entity{
			ID:    e.ID,
			Name:  e.Name,
			Color: e.Color,
			Type:  typ,
		})
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// parseClock reads "HH:MM" as minutes from midnight. "24:00" is accepted.
func parseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil || len(mm) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return h*60 + m, nil
}
