package domain

// EntityType distinguishes who or what a timeline row belongs to.
type EntityType string

const (
	EntityTypeEmployee EntityType = "employee"
	EntityTypeResource EntityType = "resource"
)

// Entity is a paintable employee or resource.
type Entity struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Color string     `json:"color,omitempty"`
	Type  EntityType `json:"type"`
}

// EntityDirectory resolves entity display data.
type EntityDirectory interface {
	Entity(id string) (Entity, bool)
}

// Entities is a slice-backed directory.
type Entities []Entity

// Entity returns the first entity with the given id.
func (es Entities) Entity(id string) (Entity, bool) {
	for _, e := range es {
		if e.ID == id {
			return e, true
		}
	}
	return Entity{}, false
}
