package affinity

import (
	"time"

	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	dommatch "github.com/advancehq/affinity/internal/domain/match"
	domtag "github.com/advancehq/affinity/internal/domain/tag"
)

// Tag categories.
const (
	CategoryProfessional  = "Professional"
	CategoryPersonal      = "Personal"
	CategoryPhilanthropic = "Philanthropic"
)

// Tag is a canonical affinity tag.
type Tag struct {
	ID          string
	Name        string
	Category    string
	ExternalRef string
}

// Match is a single accepted tag match. Score is in [0,1], higher is better.
type Match struct {
	Tag             Tag
	Score           float64
	MatchedInterest string
	Source          string
}

// Interaction is a recorded touchpoint with a prospect.
type Interaction struct {
	ID                      string
	Prospect                string
	Officer                 string
	Transcript              string
	Summary                 string
	ProfessionalInterests   []string
	PersonalInterests       []string
	PhilanthropicPriorities []string
	MatchedTags             []string
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

func tagFromDomain(t domtag.Tag) Tag {
	return Tag{
		ID:          t.ID(),
		Name:        t.Name(),
		Category:    string(t.Category()),
		ExternalRef: t.ExternalRef(),
	}
}

func matchesFromDomain(results []dommatch.Result) []Match {
	if len(results) == 0 {
		return nil
	}
	out := make([]Match, len(results))
	for i, r := range results {
		out[i] = Match{
			Tag:             tagFromDomain(r.Tag()),
			Score:           r.Score(),
			MatchedInterest: r.MatchedInterest(),
			Source:          string(r.Source()),
		}
	}
	return out
}

func interactionFromDomain(itx dominteraction.Interaction) Interaction {
	return Interaction{
		ID:                      itx.ID(),
		Prospect:                itx.Prospect(),
		Officer:                 itx.Officer(),
		Transcript:              itx.Transcript(),
		Summary:                 itx.Summary(),
		ProfessionalInterests:   itx.ProfessionalInterests(),
		PersonalInterests:       itx.PersonalInterests(),
		PhilanthropicPriorities: itx.PhilanthropicPriorities(),
		MatchedTags:             itx.MatchedTags(),
		CreatedAt:               time.UnixMilli(itx.CreatedAt()).UTC(),
		UpdatedAt:               time.UnixMilli(itx.UpdatedAt()).UTC(),
	}
}
