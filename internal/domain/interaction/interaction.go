package interaction

import (
	"fmt"
	"strings"
	"time"
)

// Interaction records one touchpoint between an advancement officer and
// a prospect (immutable value object; With* methods return copies).
type Interaction struct {
	id                      string
	prospect                string
	officer                 string
	transcript              string
	summary                 string
	professionalInterests   []string
	personalInterests       []string
	philanthropicPriorities []string
	matchedTags             []string
	createdAt               int64
	updatedAt               int64
}

// New validates and creates an Interaction. The transcript holds either
// a voice-dictation transcript or a typed note.
func New(id, prospect, officer, transcript string) (Interaction, error) {
	if id == "" {
		return Interaction{}, fmt.Errorf("interaction id is required")
	}
	if strings.TrimSpace(prospect) == "" {
		return Interaction{}, fmt.Errorf("prospect name is required")
	}
	if strings.TrimSpace(transcript) == "" {
		return Interaction{}, fmt.Errorf("transcript is required")
	}
	now := time.Now().UnixMilli()
	return Interaction{
		id:         id,
		prospect:   prospect,
		officer:    officer,
		transcript: transcript,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// Reconstruct creates an Interaction without validation (storage hydration).
func Reconstruct(
	id, prospect, officer, transcript, summary string,
	professional, personal, philanthropic, matchedTags []string,
	createdAt, updatedAt int64,
) Interaction {
	return Interaction{
		id:                      id,
		prospect:                prospect,
		officer:                 officer,
		transcript:              transcript,
		summary:                 summary,
		professionalInterests:   professional,
		personalInterests:       personal,
		philanthropicPriorities: philanthropic,
		matchedTags:             matchedTags,
		createdAt:               createdAt,
		updatedAt:               updatedAt,
	}
}

// WithAnalysis returns a copy carrying the language-model analysis.
func (i Interaction) WithAnalysis(summary string, professional, personal, philanthropic []string) Interaction {
	i.summary = summary
	i.professionalInterests = professional
	i.personalInterests = personal
	i.philanthropicPriorities = philanthropic
	i.updatedAt = time.Now().UnixMilli()
	return i
}

// WithMatchedTags returns a copy carrying the matched affinity tag names.
func (i Interaction) WithMatchedTags(names []string) Interaction {
	i.matchedTags = names
	i.updatedAt = time.Now().UnixMilli()
	return i
}

// ID returns the interaction identifier.
func (i Interaction) ID() string { return i.id }

// Prospect returns the prospect name.
func (i Interaction) Prospect() string { return i.prospect }

// Officer returns the recording officer.
func (i Interaction) Officer() string { return i.officer }

// Transcript returns the raw transcript or typed note.
func (i Interaction) Transcript() string { return i.transcript }

// Summary returns the narrative synopsis.
func (i Interaction) Summary() string { return i.summary }

// ProfessionalInterests returns the extracted professional interests.
func (i Interaction) ProfessionalInterests() []string { return i.professionalInterests }

// PersonalInterests returns the extracted personal interests.
func (i Interaction) PersonalInterests() []string { return i.personalInterests }

// PhilanthropicPriorities returns the extracted philanthropic priorities.
func (i Interaction) PhilanthropicPriorities() []string { return i.philanthropicPriorities }

// MatchedTags returns the matched affinity tag names.
func (i Interaction) MatchedTags() []string { return i.matchedTags }

// CreatedAt returns the creation time in Unix milliseconds.
func (i Interaction) CreatedAt() int64 { return i.createdAt }

// UpdatedAt returns the last update time in Unix milliseconds.
func (i Interaction) UpdatedAt() int64 { return i.updatedAt }
