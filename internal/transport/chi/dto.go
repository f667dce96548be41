package chi

import (
	"time"

	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
	"github.com/advancehq/affinity/internal/domain/match"
	domtag "github.com/advancehq/affinity/internal/domain/tag"
)

// Error codes returned in the error response body.
const (
	codeBadRequest              = "bad_request"
	codeValidationFailed        = "validation_failed"
	codeNotFound                = "not_found"
	codeInteractionNotFound     = "interaction_not_found"
	codeExtractionProviderError = "extraction_provider_error"
	codeInternalError           = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type tagPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category,omitempty"`
	ExternalRef string `json:"external_ref,omitempty"`
}

type replaceTagsRequest struct {
	Tags []tagPayload `json:"tags"`
}

type tagListResponse struct {
	Items []tagPayload `json:"items"`
	Total int          `json:"total"`
}

type matchRequest struct {
	ProfessionalInterests   []string `json:"professional_interests"`
	PersonalInterests       []string `json:"personal_interests"`
	PhilanthropicPriorities []string `json:"philanthropic_priorities"`
	Transcript              string   `json:"transcript"`
}

type categoryMatchRequest struct {
	Interests []string `json:"interests"`
	Category  string   `json:"category"`
}

type matchResultItem struct {
	Tag             tagPayload `json:"tag"`
	Score           float64    `json:"score"`
	MatchedInterest string     `json:"matched_interest"`
	Source          string     `json:"source"`
}

type matchListResponse struct {
	Items []matchResultItem `json:"items"`
	Total int               `json:"total"`
}

type recordInteractionRequest struct {
	Prospect   string `json:"prospect"`
	Officer    string `json:"officer"`
	Transcript string `json:"transcript"`
}

type interactionResponse struct {
	ID                      string            `json:"id"`
	Prospect                string            `json:"prospect"`
	Officer                 string            `json:"officer,omitempty"`
	Transcript              string            `json:"transcript"`
	Summary                 string            `json:"summary,omitempty"`
	ProfessionalInterests   []string          `json:"professional_interests,omitempty"`
	PersonalInterests       []string          `json:"personal_interests,omitempty"`
	PhilanthropicPriorities []string          `json:"philanthropic_priorities,omitempty"`
	MatchedTags             []string          `json:"matched_tags,omitempty"`
	Matches                 []matchResultItem `json:"matches,omitempty"`
	CreatedAt               time.Time         `json:"created_at"`
	UpdatedAt               time.Time         `json:"updated_at"`
}

type interactionListResponse struct {
	Items []interactionResponse `json:"items"`
	Total int                   `json:"total"`
}

func tagToPayload(t domtag.Tag) tagPayload {
	return tagPayload{
		ID:          t.ID(),
		Name:        t.Name(),
		Category:    string(t.Category()),
		ExternalRef: t.ExternalRef(),
	}
}

func matchResultsToItems(results []match.Result) []matchResultItem {
	items := make([]matchResultItem, len(results))
	for i, r := range results {
		items[i] = matchResultItem{
			Tag:             tagToPayload(r.Tag()),
			Score:           r.Score(),
			MatchedInterest: r.MatchedInterest(),
			Source:          string(r.Source()),
		}
	}
	return items
}

func interactionToResponse(itx dominteraction.Interaction, matches []match.Result) interactionResponse {
	resp := interactionResponse{
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
	if matches != nil {
		resp.Matches = matchResultsToItems(matches)
	}
	return resp
}

func tagsFromPayload(payloads []tagPayload) ([]domtag.Tag, error) {
	tags := make([]domtag.Tag, 0, len(payloads))
	for _, p := range payloads {
		t, err := domtag.New(p.ID, p.Name, domtag.Category(p.Category), p.ExternalRef)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}
