package tags

import (
	"context"
	"fmt"
	"sort"

	"github.com/advancehq/affinity/internal/db"
	"github.com/advancehq/affinity/internal/domain/tag"
)

// store is the consumer interface for tag persistence (ISP).
type store interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	DelMulti(ctx context.Context, keys []string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists the canonical affinity tag list, one hash per tag.
// Implements usecase/catalog.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates a tag repository. keyPrefix namespaces all keys
// (e.g. "affinity:").
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + "tag:" + id
}

// LoadAll returns every stored tag. Order is stable across calls with
// the same stored set (sorted by id) so snapshot builds are
// deterministic regardless of SCAN ordering.
func (r *Repo) LoadAll(ctx context.Context) ([]tag.Tag, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"tag:*")
	if err != nil {
		return nil, fmt.Errorf("scan tags: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load tags: %w", err)
	}

	tags := make([]tag.Tag, 0, len(hashes))
	for _, h := range hashes {
		t, ok := tagFromHash(h)
		if !ok {
			continue
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// ReplaceAll swaps the stored tag list wholesale: writes the new tags
// in one pipelined round-trip, then deletes keys no longer present.
func (r *Repo) ReplaceAll(ctx context.Context, tags []tag.Tag) error {
	existing, err := r.store.Scan(ctx, r.prefix+"tag:*")
	if err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}

	keep := make(map[string]struct{}, len(tags))
	items := make([]db.HashSetItem, 0, len(tags))
	for _, t := range tags {
		k := r.key(t.ID())
		keep[k] = struct{}{}
		items = append(items, db.HashSetItem{Key: k, Fields: tagToHash(t)})
	}

	if err := r.store.HSetMulti(ctx, items); err != nil {
		return fmt.Errorf("store tags: %w", err)
	}

	var stale []string
	for _, k := range existing {
		if _, ok := keep[k]; !ok {
			stale = append(stale, k)
		}
	}
	if err := r.store.DelMulti(ctx, stale); err != nil {
		return fmt.Errorf("delete stale tags: %w", err)
	}

	return nil
}
