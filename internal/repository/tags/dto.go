package tags

import "github.com/advancehq/affinity/internal/domain/tag"

// Hash field names for stored tags.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldCategory    = "category"
	fieldExternalRef = "external_ref"
)

func tagToHash(t tag.Tag) map[string]string {
	return map[string]string{
		fieldID:          t.ID(),
		fieldName:        t.Name(),
		fieldCategory:    string(t.Category()),
		fieldExternalRef: t.ExternalRef(),
	}
}

func tagFromHash(h map[string]string) (tag.Tag, bool) {
	id := h[fieldID]
	if id == "" {
		return tag.Tag{}, false
	}
	return tag.Reconstruct(id, h[fieldName], tag.Category(h[fieldCategory]), h[fieldExternalRef]), true
}
