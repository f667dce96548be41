// Package affinity matches donor interests against a canonical affinity
// tag catalog. The Client embeds the full engine: interest
// normalization, fuzzy matching, transcript scanning and interaction
// storage over Redis or Valkey.
package affinity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/db"
	dbRedis "github.com/advancehq/affinity/internal/db/redis"
	"github.com/advancehq/affinity/internal/domain"
	domtag "github.com/advancehq/affinity/internal/domain/tag"
	itxrepo "github.com/advancehq/affinity/internal/repository/interaction"
	tagsrepo "github.com/advancehq/affinity/internal/repository/tags"
	cataloguc "github.com/advancehq/affinity/internal/usecase/catalog"
	interactionuc "github.com/advancehq/affinity/internal/usecase/interaction"
	"github.com/advancehq/affinity/internal/usecase/matching"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "affinity:"
)

// Client is the affinity SDK entry point.
type Client struct {
	store          db.Store
	catalogSvc     *cataloguc.Service
	interactionSvc *interactionuc.Service
}

// New creates an affinity Client and connects to the database. The tag
// catalog is loaded immediately; use RefreshCatalog to pick up later
// external changes.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix: defaultKeyPrefix,
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("affinity: database address required (use WithRedis or WithAddrs)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Username: cfg.username,
		Password: cfg.password,
		DB:       cfg.db,
	})
	if err != nil {
		return nil, fmt.Errorf("affinity: create store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("affinity: database not ready: %w", err)
	}

	c, err := wireClient(store, cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	if err := c.RefreshCatalog(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	tagRepo := tagsrepo.New(store, cfg.keyPrefix)
	interactionRepo := itxrepo.New(store, cfg.keyPrefix)

	matchCfg := matching.Config{
		AcceptanceThreshold: cfg.matching.AcceptanceThreshold,
		Generosity:          cfg.matching.Generosity,
		CategoryThreshold:   cfg.matching.CategoryThreshold,
		CategoryGenerosity:  cfg.matching.CategoryGenerosity,
		MaxResults:          cfg.matching.MaxResults,
		BestScoreWins:       cfg.matching.BestScoreWins,
		Institution:         cfg.matching.Institution,
		InstitutionAbbr:     cfg.matching.InstitutionAbbr,
	}

	catalogSvc, err := cataloguc.New(tagRepo, matchCfg, cfg.logger)
	if err != nil {
		return nil, fmt.Errorf("affinity: %w", err)
	}

	var domExtractor domain.Extractor
	if cfg.extractor != nil {
		domExtractor = &extractorAdapter{inner: cfg.extractor}
	}

	interactionSvc := interactionuc.New(interactionRepo, catalogSvc, domExtractor, cfg.logger)

	return &Client{
		store:          store,
		catalogSvc:     catalogSvc,
		interactionSvc: interactionSvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// MatchInterests matches extracted interest phrases and a raw
// transcript against the current catalog. Results are sorted by score,
// best first.
func (c *Client) MatchInterests(professional, personal, philanthropic []string, transcript string) []Match {
	results := c.catalogSvc.Matcher().MatchInterests(professional, personal, philanthropic, transcript)
	return matchesFromDomain(results)
}

// MatchByCategory matches interest phrases within one tag category,
// using the stricter category thresholds and no synonym expansion.
func (c *Client) MatchByCategory(interests []string, category string) ([]Match, error) {
	cat := domtag.Category(category)
	if !cat.IsValid() {
		return nil, fmt.Errorf("affinity: invalid category %q", category)
	}
	results := c.catalogSvc.Matcher().MatchByCategory(interests, cat)
	return matchesFromDomain(results), nil
}

// FindSimilarTags returns the catalog tags closest to the search term,
// best first, with no minimum similarity.
func (c *Client) FindSimilarTags(searchTerm string, limit int) []Tag {
	tags := c.catalogSvc.Matcher().FindSimilarTags(searchTerm, limit)
	out := make([]Tag, len(tags))
	for i, t := range tags {
		out[i] = tagFromDomain(t)
	}
	return out
}

// RecordInteraction stores an interaction, runs extraction (when an
// Extractor is configured) and matches the interests against the
// catalog.
func (c *Client) RecordInteraction(ctx context.Context, prospect, officer, transcript string) (Interaction, []Match, error) {
	itx, results, err := c.interactionSvc.Record(ctx, prospect, officer, transcript)
	if err != nil {
		return Interaction{}, nil, fmt.Errorf("record interaction: %w", err)
	}
	return interactionFromDomain(itx), matchesFromDomain(results), nil
}

// GetInteraction returns one stored interaction.
func (c *Client) GetInteraction(ctx context.Context, id string) (Interaction, error) {
	itx, err := c.interactionSvc.Get(ctx, id)
	if err != nil {
		return Interaction{}, fmt.Errorf("get interaction: %w", err)
	}
	return interactionFromDomain(itx), nil
}

// ListInteractions returns all stored interactions, newest first.
func (c *Client) ListInteractions(ctx context.Context) ([]Interaction, error) {
	list, err := c.interactionSvc.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	out := make([]Interaction, len(list))
	for i, itx := range list {
		out[i] = interactionFromDomain(itx)
	}
	return out, nil
}

// DeleteInteraction removes one stored interaction.
func (c *Client) DeleteInteraction(ctx context.Context, id string) error {
	if err := c.interactionSvc.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete interaction: %w", err)
	}
	return nil
}

// RematchInteraction re-runs matching for a stored interaction against
// the currently published catalog.
func (c *Client) RematchInteraction(ctx context.Context, id string) (Interaction, []Match, error) {
	itx, results, err := c.interactionSvc.Rematch(ctx, id)
	if err != nil {
		return Interaction{}, nil, fmt.Errorf("rematch interaction: %w", err)
	}
	return interactionFromDomain(itx), matchesFromDomain(results), nil
}

// ReplaceTags replaces the whole tag catalog and publishes the new
// matcher atomically.
func (c *Client) ReplaceTags(ctx context.Context, tags []Tag) error {
	domTags := make([]domtag.Tag, 0, len(tags))
	for _, t := range tags {
		dt, err := domtag.New(t.ID, t.Name, domtag.Category(t.Category), t.ExternalRef)
		if err != nil {
			return fmt.Errorf("affinity: %w", err)
		}
		domTags = append(domTags, dt)
	}
	if err := c.catalogSvc.ReplaceAll(ctx, domTags); err != nil {
		return fmt.Errorf("replace tags: %w", err)
	}
	return nil
}

// RefreshCatalog reloads the tag catalog from storage.
func (c *Client) RefreshCatalog(ctx context.Context) error {
	if err := c.catalogSvc.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	return nil
}

// CatalogSize returns the number of tags in the published catalog.
func (c *Client) CatalogSize() int {
	return c.catalogSvc.Matcher().Snapshot().Len()
}

// extractorAdapter wraps the public Extractor to satisfy internal domain.Extractor.
type extractorAdapter struct {
	inner Extractor
}

func (a *extractorAdapter) Extract(ctx context.Context, transcript string) (domain.Extraction, error) {
	r, err := a.inner.Extract(ctx, transcript)
	if err != nil {
		return domain.Extraction{}, fmt.Errorf("extract: %w", err)
	}
	return domain.Extraction{
		ProfessionalInterests:   r.ProfessionalInterests,
		PersonalInterests:       r.PersonalInterests,
		PhilanthropicPriorities: r.PhilanthropicPriorities,
		Synopsis:                r.Synopsis,
	}, nil
}
