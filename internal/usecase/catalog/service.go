package catalog

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain/tag"
	"github.com/advancehq/affinity/internal/metrics"
	"github.com/advancehq/affinity/internal/usecase/matching"
)

// Service owns the current tag catalog and the matcher built over it.
// Refresh builds a brand-new snapshot + index and publishes it with an
// atomic pointer swap; in-flight match requests keep the matcher they
// started with and never see a torn catalog.
type Service struct {
	repo    Repository
	cfg     matching.Config
	logger  *zap.Logger
	current atomic.Pointer[matching.Matcher]
}

// New creates a catalog service. An empty matcher is published
// immediately so match requests before the first refresh return empty
// results rather than failing. Configuration faults surface here.
func New(repo Repository, cfg matching.Config, logger *zap.Logger) (*Service, error) {
	empty, err := matching.New(nil, cfg)
	if err != nil {
		return nil, fmt.Errorf("build matcher: %w", err)
	}

	s := &Service{repo: repo, cfg: cfg, logger: logger}
	s.current.Store(empty)
	return s, nil
}

// Matcher returns the currently published matcher.
func (s *Service) Matcher() *matching.Matcher {
	return s.current.Load()
}

// Refresh reloads the canonical tag list and publishes a new matcher.
// On failure the previously published matcher keeps serving.
func (s *Service) Refresh(ctx context.Context) error {
	tags, err := s.repo.LoadAll(ctx)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("load tags: %w", err)
	}

	m, err := matching.New(tags, s.cfg)
	if err != nil {
		metrics.CatalogRefreshTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("build matcher: %w", err)
	}

	s.current.Store(m)
	metrics.CatalogRefreshTotal.WithLabelValues("success").Inc()
	metrics.CatalogTags.Set(float64(len(tags)))
	s.logger.Info("catalog refreshed", zap.Int("tags", len(tags)))
	return nil
}

// ReplaceAll persists a new canonical tag list (the door used by the
// external CRM sync job) and publishes a matcher built from it.
func (s *Service) ReplaceAll(ctx context.Context, tags []tag.Tag) error {
	m, err := matching.New(tags, s.cfg)
	if err != nil {
		return fmt.Errorf("build matcher: %w", err)
	}

	if err := s.repo.ReplaceAll(ctx, tags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}

	s.current.Store(m)
	metrics.CatalogTags.Set(float64(len(tags)))
	s.logger.Info("catalog replaced", zap.Int("tags", len(tags)))
	return nil
}

// Run refreshes the catalog on the given interval until ctx is
// cancelled. Refresh errors are logged; the old snapshot keeps serving.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.logger.Warn("catalog refresh failed", zap.Error(err))
			}
		}
	}
}
