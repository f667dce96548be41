package interaction

import (
	"encoding/json"
	"fmt"

	dominteraction "github.com/advancehq/affinity/internal/domain/interaction"
)

// interactionDTO is the stored JSON shape.
type interactionDTO struct {
	ID                      string   `json:"id"`
	Prospect                string   `json:"prospect"`
	Officer                 string   `json:"officer,omitempty"`
	Transcript              string   `json:"transcript"`
	Summary                 string   `json:"summary,omitempty"`
	ProfessionalInterests   []string `json:"professional_interests,omitempty"`
	PersonalInterests       []string `json:"personal_interests,omitempty"`
	PhilanthropicPriorities []string `json:"philanthropic_priorities,omitempty"`
	MatchedTags             []string `json:"matched_tags,omitempty"`
	CreatedAt               int64    `json:"created_at"`
	UpdatedAt               int64    `json:"updated_at"`
}

func marshalInteraction(itx dominteraction.Interaction) ([]byte, error) {
	dto := interactionDTO{
		ID:                      itx.ID(),
		Prospect:                itx.Prospect(),
		Officer:                 itx.Officer(),
		Transcript:              itx.Transcript(),
		Summary:                 itx.Summary(),
		ProfessionalInterests:   itx.ProfessionalInterests(),
		PersonalInterests:       itx.PersonalInterests(),
		PhilanthropicPriorities: itx.PhilanthropicPriorities(),
		MatchedTags:             itx.MatchedTags(),
		CreatedAt:               itx.CreatedAt(),
		UpdatedAt:               itx.UpdatedAt(),
	}
	data, err := json.Marshal(dto)
	if err != nil {
		return nil, fmt.Errorf("marshal interaction %s: %w", itx.ID(), err)
	}
	return data, nil
}

func unmarshalInteraction(data []byte) (dominteraction.Interaction, error) {
	var dto interactionDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return dominteraction.Interaction{}, fmt.Errorf("unmarshal interaction: %w", err)
	}
	return dominteraction.Reconstruct(
		dto.ID, dto.Prospect, dto.Officer, dto.Transcript, dto.Summary,
		dto.ProfessionalInterests, dto.PersonalInterests, dto.PhilanthropicPriorities,
		dto.MatchedTags, dto.CreatedAt, dto.UpdatedAt,
	), nil
}
