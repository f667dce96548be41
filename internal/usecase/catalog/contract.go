package catalog

import (
	"context"

	"github.com/advancehq/affinity/internal/domain/tag"
)

// Repository is the storage contract for the canonical tag list.
type Repository interface {
	LoadAll(ctx context.Context) ([]tag.Tag, error)
	ReplaceAll(ctx context.Context, tags []tag.Tag) error
}
