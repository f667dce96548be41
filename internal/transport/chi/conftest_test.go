package chi

import (
	"context"
	"net/http"
	"testing"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	"github.com/advancehq/affinity/internal/domain/tag"
	cataloguc "github.com/advancehq/affinity/internal/usecase/catalog"
	healthuc "github.com/advancehq/affinity/internal/usecase/health"
	interactionuc "github.com/advancehq/affinity/internal/usecase/interaction"
	"github.com/advancehq/affinity/internal/usecase/matching"
)

// memTagRepo is an in-memory catalog repository.
type memTagRepo struct {
	tags []tag.Tag
}

func (r *memTagRepo) LoadAll(_ context.Context) ([]tag.Tag, error) {
	return r.tags, nil
}

func (r *memTagRepo) ReplaceAll(_ context.Context, tags []tag.Tag) error {
	r.tags = tags
	return nil
}

// memInteractionRepo is an in-memory interaction repository.
type memInteractionRepo struct {
	items map[string]dominteraction.Interaction
}

func newMemInteractionRepo() *memInteractionRepo {
	return &memInteractionRepo{items: make(map[string]dominteraction.Interaction)}
}

func (r *memInteractionRepo) Save(_ context.Context, itx dominteraction.Interaction) error {
	r.items[itx.ID()] = itx
	return nil
}

func (r *memInteractionRepo) Get(_ context.Context, id string) (dominteraction.Interaction, error) {
	itx, ok := r.items[id]
	if !ok {
		return dominteraction.Interaction{}, domain.ErrInteractionNotFound
	}
	return itx, nil
}

func (r *memInteractionRepo) List(_ context.Context) ([]dominteraction.Interaction, error) {
	out := make([]dominteraction.Interaction, 0, len(r.items))
	for _, itx := range r.items {
		out = append(out, itx)
	}
	return out, nil
}

func (r *memInteractionRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return domain.ErrInteractionNotFound
	}
	delete(r.items, id)
	return nil
}

type okPinger struct{}

func (okPinger) Ping(_ context.Context) error { return nil }

// newTestRouter wires a full router over in-memory repositories.
func newTestRouter(t *testing.T, tags ...tag.Tag) (http.Handler, *memInteractionRepo) {
	t.Helper()

	logger := zap.NewNop()
	tagRepo := &memTagRepo{tags: tags}

	catalogSvc, err := cataloguc.New(tagRepo, matching.Config{}, logger)
	if err != nil {
		t.Fatalf("catalog service: %v", err)
	}
	if err := catalogSvc.Refresh(context.Background()); err != nil {
		t.Fatalf("catalog refresh: %v", err)
	}

	itxRepo := newMemInteractionRepo()
	interactionSvc := interactionuc.New(itxRepo, catalogSvc, nil, logger)
	healthSvc := healthuc.New(okPinger{}, nil)

	server := NewServer(interactionSvc, catalogSvc, healthSvc, logger)
	router := chirouter.NewRouter()
	server.Routes(router)
	return router, itxRepo
}

func sportsTags() []tag.Tag {
	return []tag.Tag{
		tag.Reconstruct("1", "Ice Hockey", tag.Personal, ""),
		tag.Reconstruct("2", "Rowing", tag.Personal, ""),
		tag.Reconstruct("3", "Computer Science", tag.Professional, ""),
		tag.Reconstruct("4", "Engineering Scholarships", tag.Philanthropic, ""),
	}
}
