package tag

import (
	"fmt"
	"strings"
)

// Category groups affinity tags by the kind of donor interest they describe.
type Category string

// Tag categories.
const (
	Professional  Category = "Professional"
	Personal      Category = "Personal"
	Philanthropic Category = "Philanthropic"
)

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	return c == Professional || c == Personal || c == Philanthropic
}

// Tag is a canonical affinity tag (immutable value object). Tags are
// created by the external catalog sync; the matching core only reads them.
type Tag struct {
	id          string
	name        string
	category    Category
	externalRef string
}

// New validates and creates a Tag. The external reference is optional;
// it links the tag to its record in the CRM.
func New(id, name string, category Category, externalRef string) (Tag, error) {
	if id == "" {
		return Tag{}, fmt.Errorf("tag id is required")
	}
	if strings.TrimSpace(name) == "" {
		return Tag{}, fmt.Errorf("tag name is required")
	}
	if category != "" && !category.IsValid() {
		return Tag{}, fmt.Errorf("invalid tag category: %q", category)
	}
	return Tag{id: id, name: name, category: category, externalRef: externalRef}, nil
}

// Reconstruct creates a Tag without validation (storage hydration).
func Reconstruct(id, name string, category Category, externalRef string) Tag {
	return Tag{id: id, name: name, category: category, externalRef: externalRef}
}

// ID returns the stable tag identifier.
func (t Tag) ID() string { return t.id }

// Name returns the display name, e.g. "Ice Hockey".
func (t Tag) Name() string { return t.name }

// Category returns the tag category.
func (t Tag) Category() Category { return t.category }

// ExternalRef returns the CRM record reference, if any.
func (t Tag) ExternalRef() string { return t.externalRef }
