package matching

import "github.com/advancehq/affinity/internal/domain/tag"

// Snapshot is an immutable view of the canonical tag catalog. A new
// Snapshot is built on every catalog refresh and published wholesale;
// in-flight match requests keep reading the snapshot they started with,
// so queries never need locking.
type Snapshot struct {
	tags       []tag.Tag
	byID       map[string]tag.Tag
	byCategory map[tag.Category][]tag.Tag
}

// NewSnapshot captures the given tags. The slice is copied; later
// mutation of the caller's slice does not leak into the snapshot.
func NewSnapshot(tags []tag.Tag) *Snapshot {
	s := &Snapshot{
		tags:       make([]tag.Tag, len(tags)),
		byID:       make(map[string]tag.Tag, len(tags)),
		byCategory: make(map[tag.Category][]tag.Tag),
	}
	copy(s.tags, tags)
	for _, t := range s.tags {
		s.byID[t.ID()] = t
		if c := t.Category(); c != "" {
			s.byCategory[c] = append(s.byCategory[c], t)
		}
	}
	return s
}

// Tags returns all tags in catalog order.
func (s *Snapshot) Tags() []tag.Tag { return s.tags }

// Len returns the number of tags in the snapshot.
func (s *Snapshot) Len() int { return len(s.tags) }

// ByID looks up a tag by identifier.
func (s *Snapshot) ByID(id string) (tag.Tag, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// ByCategory returns the tags of one category in catalog order.
func (s *Snapshot) ByCategory(c tag.Category) []tag.Tag { return s.byCategory[c] }
