package interaction

import (
	"context"

	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	"github.com/advancehq/affinity/internal/usecase/matching"
)

// Repository persists interactions.
type Repository interface {
	Save(ctx context.Context, itx dominteraction.Interaction) error
	Get(ctx context.Context, id string) (dominteraction.Interaction, error)
	List(ctx context.Context) ([]dominteraction.Interaction, error)
	Delete(ctx context.Context, id string) error
}

// MatcherProvider hands out the currently published matcher. Each
// request grabs one matcher and uses it for the whole operation.
type MatcherProvider interface {
	Matcher() *matching.Matcher
}
