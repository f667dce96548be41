package domain

import "context"

// Extractor is the shared language-model analysis contract between layers.
// It turns a raw interaction transcript into categorized interest lists
// and a narrative synopsis.
type Extractor interface {
	Extract(ctx context.Context, transcript string) (Extraction, error)
}

// HealthChecker verifies extraction provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Extraction carries the language-model analysis of one transcript.
type Extraction struct {
	ProfessionalInterests   []string
	PersonalInterests       []string
	PhilanthropicPriorities []string
	Synopsis                string
	PromptTokens            int
	TotalTokens             int
}
