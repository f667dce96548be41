package interaction

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	"github.com/advancehq/affinity/internal/domain/tag"
	"github.com/advancehq/affinity/internal/usecase/matching"
)

type mockRepo struct {
	saveFn   func(ctx context.Context, itx dominteraction.Interaction) error
	getFn    func(ctx context.Context, id string) (dominteraction.Interaction, error)
	listFn   func(ctx context.Context) ([]dominteraction.Interaction, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockRepo) Save(ctx context.Context, itx dominteraction.Interaction) error {
	if m.saveFn != nil {
		return m.saveFn(ctx, itx)
	}
	return nil
}

func (m *mockRepo) Get(ctx context.Context, id string) (dominteraction.Interaction, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return dominteraction.Interaction{}, domain.ErrInteractionNotFound
}

func (m *mockRepo) List(ctx context.Context) ([]dominteraction.Interaction, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockExtractor struct {
	extractFn func(ctx context.Context, transcript string) (domain.Extraction, error)
}

func (m *mockExtractor) Extract(ctx context.Context, transcript string) (domain.Extraction, error) {
	return m.extractFn(ctx, transcript)
}

// staticProvider serves one fixed matcher.
type staticProvider struct {
	m *matching.Matcher
}

func (p *staticProvider) Matcher() *matching.Matcher { return p.m }

func testProvider(t *testing.T, tags ...tag.Tag) *staticProvider {
	t.Helper()
	m, err := matching.New(tags, matching.Config{})
	if err != nil {
		t.Fatalf("build matcher: %v", err)
	}
	return &staticProvider{m: m}
}

func testLogger() *zap.Logger { return zap.NewNop() }
