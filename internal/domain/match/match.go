package match

import "github.com/advancehq/affinity/internal/domain/tag"

// Source identifies where an interest phrase came from.
type Source string

// Interest phrase sources.
const (
	SourceProfessional  Source = "professional"
	SourcePersonal      Source = "personal"
	SourcePhilanthropic Source = "philanthropic"
	// SourceTranscript marks phrases recovered by scanning the raw
	// transcript rather than extracted interest lists.
	SourceTranscript Source = "transcript"
)

// SourceForCategory maps a tag category to the corresponding phrase source.
func SourceForCategory(c tag.Category) Source {
	switch c {
	case tag.Professional:
		return SourceProfessional
	case tag.Personal:
		return SourcePersonal
	case tag.Philanthropic:
		return SourcePhilanthropic
	default:
		return ""
	}
}

// Result is a single accepted tag match (immutable value object).
// Score is 1 - distance, so higher is better.
type Result struct {
	tag             tag.Tag
	score           float64
	matchedInterest string
	source          Source
}

// New creates a match result. matchedInterest is the original phrase as
// supplied by the caller, before normalization, kept for explainability.
func New(t tag.Tag, score float64, matchedInterest string, source Source) Result {
	return Result{tag: t, score: score, matchedInterest: matchedInterest, source: source}
}

// Tag returns the matched catalog tag.
func (r Result) Tag() tag.Tag { return r.tag }

// Score returns the similarity score in [0,1].
func (r Result) Score() float64 { return r.score }

// MatchedInterest returns the original interest phrase that produced the match.
func (r Result) MatchedInterest() string { return r.matchedInterest }

// Source returns where the matched phrase came from.
func (r Result) Source() Source { return r.source }
