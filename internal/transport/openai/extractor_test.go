package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	"github.com/advancehq/affinity/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterExtractionMetrics()
	os.Exit(m.Run())
}

// chatResponse mirrors the OpenAI-compatible chat completion response.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

func chatServer(t *testing.T, content string, promptTokens, totalTokens int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}

		var resp chatResponse
		resp.Choices = append(resp.Choices, struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		}{})
		resp.Choices[0].Message.Role = "assistant"
		resp.Choices[0].Message.Content = content
		resp.Usage.PromptTokens = promptTokens
		resp.Usage.TotalTokens = totalTokens

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func newTestExtractor(serverURL string) *Extractor {
	return NewExtractor(&Config{
		APIKey:   "test-key",
		BaseURL:  serverURL,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	})
}

func TestExtractor_Extract(t *testing.T) {
	payload := `{"professional_interests":["software engineering"],` +
		`"personal_interests":["ice hockey","sailing"],` +
		`"philanthropic_priorities":["engineering scholarships"],` +
		`"synopsis":"Met the prospect at homecoming."}`
	server := chatServer(t, payload, 120, 180)
	defer server.Close()

	ext, err := newTestExtractor(server.URL).Extract(context.Background(), "some transcript")
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if len(ext.ProfessionalInterests) != 1 || ext.ProfessionalInterests[0] != "software engineering" {
		t.Errorf("professional = %v", ext.ProfessionalInterests)
	}
	if len(ext.PersonalInterests) != 2 {
		t.Errorf("personal = %v", ext.PersonalInterests)
	}
	if len(ext.PhilanthropicPriorities) != 1 {
		t.Errorf("philanthropic = %v", ext.PhilanthropicPriorities)
	}
	if ext.Synopsis != "Met the prospect at homecoming." {
		t.Errorf("synopsis = %q", ext.Synopsis)
	}
	if ext.PromptTokens != 120 || ext.TotalTokens != 180 {
		t.Errorf("usage = %d/%d, expected 120/180", ext.PromptTokens, ext.TotalTokens)
	}
}

func TestExtractor_ExtractMalformedJSON(t *testing.T) {
	server := chatServer(t, "sorry, I cannot do that", 10, 10)
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), "transcript")
	if !errors.Is(err, domain.ErrExtractionProviderError) {
		t.Fatalf("err = %v, want ErrExtractionProviderError", err)
	}
}

func TestExtractor_ExtractEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse{})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), "transcript")
	if !errors.Is(err, domain.ErrExtractionProviderError) {
		t.Fatalf("err = %v, want ErrExtractionProviderError", err)
	}
}

func TestExtractor_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{
				"message": "rate limit exceeded",
				"type":    "rate_limit_error",
			},
		})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).Extract(context.Background(), "transcript")
	if !errors.Is(err, domain.ErrExtractionProviderError) {
		t.Fatalf("err = %v, want ErrExtractionProviderError", err)
	}
}
