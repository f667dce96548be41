package matching

import (
	"fmt"
	"sort"
	"strings"

	"github.com/advancehq/affinity/internal/domain/match"
	"github.com/advancehq/affinity/internal/domain/tag"
)

// Documented defaults. The loose 0.25 acceptance threshold is the
// pipeline default; manual review surfaces historically use the strict
// 0.6 instead and pick it via Config.
const (
	DefaultAcceptanceThreshold = 0.25
	StrictAcceptanceThreshold  = 0.6
	DefaultGenerosity          = 0.7
	DefaultCategoryThreshold   = 0.5
	DefaultCategoryGenerosity  = 0.3
	DefaultMaxResults          = 10

	// topPerVariant caps how many ranked candidates each variant query
	// contributes to acceptance.
	topPerVariant = 3
)

// Config tunes a Matcher. Zero values fall back to the documented
// defaults. All knobs are fixed at construction time.
type Config struct {
	// AcceptanceThreshold is the minimum similarity score (exclusive)
	// for MatchInterests to accept a candidate.
	AcceptanceThreshold float64
	// Generosity caps the candidate distance the index surfaces before
	// the stricter acceptance filter runs.
	Generosity float64
	// CategoryThreshold and CategoryGenerosity apply to MatchByCategory.
	CategoryThreshold  float64
	CategoryGenerosity float64
	// MaxResults caps the MatchInterests result list.
	MaxResults int
	// BestScoreWins replaces the historical first-accepted-wins dedup
	// with best-score-per-tag. Off by default to preserve the observed
	// behavior of the original pipeline.
	BestScoreWins bool
	// Institution and InstitutionAbbr feed the normalizer's
	// affiliation-stripping rule.
	Institution     string
	InstitutionAbbr string
	// Observer, when set, receives one trace event per evaluated
	// candidate. It must not retain the events across calls.
	Observer func(match.Trace)
}

func (c *Config) applyDefaults() {
	if c.AcceptanceThreshold == 0 {
		c.AcceptanceThreshold = DefaultAcceptanceThreshold
	}
	if c.Generosity == 0 {
		c.Generosity = DefaultGenerosity
	}
	if c.CategoryThreshold == 0 {
		c.CategoryThreshold = DefaultCategoryThreshold
	}
	if c.CategoryGenerosity == 0 {
		c.CategoryGenerosity = DefaultCategoryGenerosity
	}
	if c.MaxResults == 0 {
		c.MaxResults = DefaultMaxResults
	}
}

func (c *Config) validate() error {
	if c.AcceptanceThreshold < 0 || c.AcceptanceThreshold >= 1 {
		return fmt.Errorf("acceptance threshold must be in [0,1), got %v", c.AcceptanceThreshold)
	}
	if c.CategoryThreshold < 0 || c.CategoryThreshold >= 1 {
		return fmt.Errorf("category threshold must be in [0,1), got %v", c.CategoryThreshold)
	}
	if c.Generosity <= 0 || c.Generosity > 1 {
		return fmt.Errorf("generosity must be in (0,1], got %v", c.Generosity)
	}
	if c.CategoryGenerosity <= 0 || c.CategoryGenerosity > 1 {
		return fmt.Errorf("category generosity must be in (0,1], got %v", c.CategoryGenerosity)
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("max results must be positive, got %d", c.MaxResults)
	}
	return nil
}

// Matcher maps free-text interest phrases onto the canonical affinity
// tag catalog. It is bound to one immutable catalog snapshot and is
// safe for concurrent use; catalog refresh builds a new Matcher.
//
// Configuration faults surface at construction, never per call: a
// broken matcher silently returning zero matches would be
// indistinguishable from "legitimately no matches".
type Matcher struct {
	snap  *Snapshot
	index *Index
	norm  *Normalizer
	cfg   Config
}

// New builds a Matcher over the given catalog tags.
func New(tags []tag.Tag, cfg Config) (*Matcher, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("matcher config: %w", err)
	}

	snap := NewSnapshot(tags)
	index, err := NewIndex(snap, cfg.Generosity)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	return &Matcher{
		snap:  snap,
		index: index,
		norm:  NewNormalizer(cfg.Institution, cfg.InstitutionAbbr),
		cfg:   cfg,
	}, nil
}

// Snapshot returns the catalog snapshot this matcher is bound to.
func (m *Matcher) Snapshot() *Snapshot { return m.snap }

type sourcedPhrase struct {
	text   string
	source match.Source
}

// MatchInterests maps the three categorized interest lists (plus
// phrases recovered from the optional raw transcript) onto catalog
// tags. Results are deduplicated by tag id, ranked by score descending,
// and capped. Nil or empty inputs yield an empty result, never an error.
func (m *Matcher) MatchInterests(professional, personal, philanthropic []string, rawTranscript string) []match.Result {
	phrases := make([]sourcedPhrase, 0, len(professional)+len(personal)+len(philanthropic))
	for _, p := range professional {
		phrases = append(phrases, sourcedPhrase{text: p, source: match.SourceProfessional})
	}
	for _, p := range personal {
		phrases = append(phrases, sourcedPhrase{text: p, source: match.SourcePersonal})
	}
	for _, p := range philanthropic {
		phrases = append(phrases, sourcedPhrase{text: p, source: match.SourcePhilanthropic})
	}

	if strings.TrimSpace(rawTranscript) != "" {
		for _, name := range ScanTranscript(rawTranscript, m.snap) {
			phrases = append(phrases, sourcedPhrase{text: name, source: match.SourceTranscript})
		}
	}

	results := m.run(phrases, m.cfg.AcceptanceThreshold, true, "", 0)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	if len(results) > m.cfg.MaxResults {
		results = results[:m.cfg.MaxResults]
	}
	return results
}

// MatchByCategory maps interest phrases onto tags of a single category
// using the stricter category threshold and tighter generosity, with no
// variant expansion, no transcript scanning, and no result cap. Used by
// the manual "find tags" action rather than the pipeline.
func (m *Matcher) MatchByCategory(interests []string, c tag.Category) []match.Result {
	if !c.IsValid() {
		return nil
	}

	source := match.SourceForCategory(c)
	phrases := make([]sourcedPhrase, 0, len(interests))
	for _, p := range interests {
		phrases = append(phrases, sourcedPhrase{text: p, source: source})
	}

	results := m.run(phrases, m.cfg.CategoryThreshold, false, c, m.cfg.CategoryGenerosity)

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score() > results[j].Score()
	})
	return results
}

// FindSimilarTags returns up to limit tags in fuzzy-match order with no
// minimum-score filtering, for autocomplete-style lookup.
func (m *Matcher) FindSimilarTags(searchTerm string, limit int) []tag.Tag {
	return m.index.Top(searchTerm, limit)
}

// run is the shared acceptance loop. Phrases are processed in order,
// each expanded into variants (when expand is set), each variant
// queried against the index, and the per-query top candidates filtered
// by threshold and deduplicated by tag id.
func (m *Matcher) run(
	phrases []sourcedPhrase, threshold float64,
	expand bool, scope tag.Category, generosity float64,
) []match.Result {
	seen := make(map[string]int)
	var out []match.Result

	for _, p := range phrases {
		var variants []string
		if expand {
			variants = m.norm.Normalize(p.text)
		} else {
			variants = []string{p.text}
		}

		for _, variant := range variants {
			var cands []Candidate
			if scope != "" {
				cands = m.index.SearchCategory(variant, scope, generosity)
			} else {
				cands = m.index.Search(variant)
			}
			if len(cands) > topPerVariant {
				cands = cands[:topPerVariant]
			}

			for _, c := range cands {
				score := 1 - c.Distance
				if score <= threshold {
					m.observe(p.text, variant, c.Tag, score, false, match.ReasonBelowThreshold)
					continue
				}

				id := c.Tag.ID()
				if idx, ok := seen[id]; ok {
					if m.cfg.BestScoreWins && score > out[idx].Score() {
						out[idx] = match.New(c.Tag, score, p.text, p.source)
						m.observe(p.text, variant, c.Tag, score, true, match.ReasonReplaced)
					} else {
						m.observe(p.text, variant, c.Tag, score, false, match.ReasonDuplicateTag)
					}
					continue
				}

				seen[id] = len(out)
				out = append(out, match.New(c.Tag, score, p.text, p.source))
				m.observe(p.text, variant, c.Tag, score, true, match.ReasonAccepted)
			}
		}
	}

	return out
}

func (m *Matcher) observe(phrase, variant string, t tag.Tag, score float64, accepted bool, reason string) {
	if m.cfg.Observer == nil {
		return
	}
	m.cfg.Observer(match.Trace{
		Phrase:   phrase,
		Variant:  variant,
		TagID:    t.ID(),
		TagName:  t.Name(),
		Score:    score,
		Accepted: accepted,
		Reason:   reason,
	})
}
