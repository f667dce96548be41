package interaction

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/advancehq/affinity/internal/db"
	"github.com/advancehq/affinity/internal/domain"
	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
)

// store is the consumer interface for interaction persistence (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo persists interactions as JSON documents.
// Implements usecase/interaction.Repository.
type Repo struct {
	store  store
	prefix string
}

// New creates an interaction repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix}
}

func (r *Repo) key(id string) string {
	return r.prefix + "interaction:" + id
}

// Save stores an interaction, overwriting any previous version.
func (r *Repo) Save(ctx context.Context, itx dominteraction.Interaction) error {
	data, err := marshalInteraction(itx)
	if err != nil {
		return err
	}
	if err := r.store.Set(ctx, r.key(itx.ID()), data); err != nil {
		return fmt.Errorf("store interaction %s: %w", itx.ID(), err)
	}
	return nil
}

// Get loads one interaction by id.
func (r *Repo) Get(ctx context.Context, id string) (dominteraction.Interaction, error) {
	data, err := r.store.Get(ctx, r.key(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return dominteraction.Interaction{}, domain.ErrInteractionNotFound
		}
		return dominteraction.Interaction{}, fmt.Errorf("load interaction %s: %w", id, err)
	}
	return unmarshalInteraction(data)
}

// List returns all interactions, newest first.
func (r *Repo) List(ctx context.Context) ([]dominteraction.Interaction, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"interaction:*")
	if err != nil {
		return nil, fmt.Errorf("scan interactions: %w", err)
	}
	sort.Strings(keys)

	out := make([]dominteraction.Interaction, 0, len(keys))
	for _, k := range keys {
		data, err := r.store.Get(ctx, k)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				// Deleted between SCAN and GET.
				continue
			}
			return nil, fmt.Errorf("load %s: %w", k, err)
		}
		itx, err := unmarshalInteraction(data)
		if err != nil {
			return nil, err
		}
		out = append(out, itx)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt() > out[j].CreatedAt()
	})
	return out, nil
}

// Delete removes one interaction.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if _, err := r.store.Get(ctx, r.key(id)); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrInteractionNotFound
		}
		return fmt.Errorf("load interaction %s: %w", id, err)
	}

	if err := r.store.Del(ctx, r.key(id)); err != nil {
		return fmt.Errorf("delete interaction %s: %w", id, err)
	}
	return nil
}
