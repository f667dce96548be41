package interaction

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	"github.com/advancehq/affinity/internal/domain/match"
)

// Service records prospect interactions, runs language-model interest
// extraction over their transcripts and matches the extracted interests
// against the affinity tag catalog.
type Service struct {
	repo      Repository
	matchers  MatcherProvider
	extractor domain.Extractor
	logger    *zap.Logger
}

// New creates an interaction service. extractor may be nil; interactions
// are then recorded and matched from the transcript alone.
func New(repo Repository, matchers MatcherProvider, extractor domain.Extractor, logger *zap.Logger) *Service {
	return &Service{repo: repo, matchers: matchers, extractor: extractor, logger: logger}
}

// Record creates an interaction, extracts interests from its transcript
// and matches them against the current catalog. The saved interaction
// carries the analysis and the matched tag names.
func (s *Service) Record(ctx context.Context, prospect, officer, transcript string) (dominteraction.Interaction, []match.Result, error) {
	itx, err := dominteraction.New(uuid.NewString(), prospect, officer, transcript)
	if err != nil {
		return dominteraction.Interaction{}, nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, err)
	}

	if s.extractor != nil {
		ext, err := s.extractor.Extract(ctx, transcript)
		if err != nil {
			return dominteraction.Interaction{}, nil, fmt.Errorf("extract interests: %w", err)
		}
		itx = itx.WithAnalysis(ext.Synopsis, ext.ProfessionalInterests, ext.PersonalInterests, ext.PhilanthropicPriorities)
	}

	results := s.matchers.Matcher().MatchInterests(
		itx.ProfessionalInterests(), itx.PersonalInterests(), itx.PhilanthropicPriorities(), itx.Transcript())
	itx = itx.WithMatchedTags(tagNames(results))

	if err := s.repo.Save(ctx, itx); err != nil {
		return dominteraction.Interaction{}, nil, err
	}

	s.logger.Info("interaction recorded",
		zap.String("id", itx.ID()),
		zap.Int("matched_tags", len(results)))
	return itx, results, nil
}

// Get returns one interaction by id.
func (s *Service) Get(ctx context.Context, id string) (dominteraction.Interaction, error) {
	return s.repo.Get(ctx, id)
}

// List returns all interactions, newest first.
func (s *Service) List(ctx context.Context) ([]dominteraction.Interaction, error) {
	return s.repo.List(ctx)
}

// Delete removes one interaction.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Rematch re-runs tag matching for a stored interaction against the
// currently published catalog, without re-running extraction. Used
// after catalog updates to refresh stale tag assignments.
func (s *Service) Rematch(ctx context.Context, id string) (dominteraction.Interaction, []match.Result, error) {
	itx, err := s.repo.Get(ctx, id)
	if err != nil {
		return dominteraction.Interaction{}, nil, err
	}

	results := s.matchers.Matcher().MatchInterests(
		itx.ProfessionalInterests(), itx.PersonalInterests(), itx.PhilanthropicPriorities(), itx.Transcript())
	itx = itx.WithMatchedTags(tagNames(results))

	if err := s.repo.Save(ctx, itx); err != nil {
		return dominteraction.Interaction{}, nil, err
	}

	s.logger.Info("interaction rematched",
		zap.String("id", itx.ID()),
		zap.Int("matched_tags", len(results)))
	return itx, results, nil
}

func tagNames(results []match.Result) []string {
	if len(results) == 0 {
		return nil
	}
	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Tag().Name())
	}
	return names
}
