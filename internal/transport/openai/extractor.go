package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	"github.com/advancehq/affinity/internal/metrics"
)

// systemPrompt instructs the model to return strict JSON. Interest
// phrases come back short so the fuzzy matcher has clean input.
const systemPrompt = `You analyze notes and call transcripts written by university advancement officers after meetings with donor prospects. Extract the prospect's interests and return ONLY a JSON object with this exact shape:
{"professional_interests":["..."],"personal_interests":["..."],"philanthropic_priorities":["..."],"synopsis":"..."}
Rules:
- professional_interests: career fields, industries, academic disciplines.
- personal_interests: hobbies, sports, cultural pursuits.
- philanthropic_priorities: causes, programs or funds the prospect may want to support.
- Keep each interest a short noun phrase of one to four words.
- synopsis: two or three sentences summarizing the interaction.
- Omit nothing mentioned; invent nothing that is not.`

// Extractor is an interest extraction provider using the
// OpenAI-compatible chat completions API.
type Extractor struct {
	client   *openai.Client
	model    string
	user     string
	provider string
	logger   *zap.Logger
}

// Config holds the extraction provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	User     string
	Provider string
	Logger   *zap.Logger
}

// NewExtractor creates an OpenAI-compatible extraction provider.
func NewExtractor(cfg *Config) *Extractor {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Extractor{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		user:     cfg.User,
		provider: cfg.Provider,
		logger:   cfg.Logger,
	}
}

// extractionPayload mirrors the JSON object the model is asked to return.
type extractionPayload struct {
	ProfessionalInterests   []string `json:"professional_interests"`
	PersonalInterests       []string `json:"personal_interests"`
	PhilanthropicPriorities []string `json:"philanthropic_priorities"`
	Synopsis                string   `json:"synopsis"`
}

// Extract implements domain.Extractor. Returns categorized interests and
// usage with transport-level metrics.
func (e *Extractor) Extract(ctx context.Context, transcript string) (domain.Extraction, error) {
	req := openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: transcript},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		User: e.user,
	}

	start := time.Now()

	resp, err := e.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "api_error").Inc()
		return domain.Extraction{}, parseAPIError(err)
	}

	if len(resp.Choices) == 0 {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "empty_response").Inc()
		return domain.Extraction{}, fmt.Errorf("empty extraction response: %w", domain.ErrExtractionProviderError)
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		metrics.ExtractionErrorsTotal.WithLabelValues(e.provider, e.model, "malformed_response").Inc()
		return domain.Extraction{}, fmt.Errorf("malformed extraction response: %w", domain.ErrExtractionProviderError)
	}

	// Record success metrics
	metrics.ExtractionRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.ExtractionRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())

	promptTokens := resp.Usage.PromptTokens
	totalTokens := resp.Usage.TotalTokens
	if totalTokens > 0 {
		metrics.ExtractionTokensTotal.WithLabelValues(e.provider, e.model, "prompt").Add(float64(promptTokens))
		metrics.ExtractionTokensTotal.WithLabelValues(e.provider, e.model, "total").Add(float64(totalTokens))
	}

	return domain.Extraction{
		ProfessionalInterests:   payload.ProfessionalInterests,
		PersonalInterests:       payload.PersonalInterests,
		PhilanthropicPriorities: payload.PhilanthropicPriorities,
		Synopsis:                payload.Synopsis,
		PromptTokens:            promptTokens,
		TotalTokens:             totalTokens,
	}, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Extractor) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrExtractionProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrExtractionProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("extraction API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("extraction API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("extraction API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("extraction request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
