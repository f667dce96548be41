package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/domain"
	domtag "github.com/advancehq/affinity/internal/domain/tag"
	"github.com/advancehq/affinity/internal/metrics"
	cataloguc "github.com/advancehq/affinity/internal/usecase/catalog"
	healthuc "github.com/advancehq/affinity/internal/usecase/health"
	interactionuc "github.com/advancehq/affinity/internal/usecase/interaction"
)

const (
	defaultTagSearchLimit = 10
	maxTagSearchLimit     = 50
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes the affinity tag matching API over chi.
type Server struct {
	interactions  *interactionuc.Service
	catalog       *cataloguc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	interactions *interactionuc.Service,
	catalog *cataloguc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		interactions: interactions,
		catalog:      catalog,
		health:       health,
		logger:       logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInteractionNotFound, http.StatusNotFound, codeInteractionNotFound),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, codeNotFound),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrExtractionProviderError, http.StatusBadGateway, codeExtractionProviderError),
	}
	return s
}

// Routes mounts all API handlers on the given router.
func (s *Server) Routes(r chirouter.Router) {
	r.Route("/v1", func(r chirouter.Router) {
		r.Post("/interactions", s.RecordInteraction)
		r.Get("/interactions", s.ListInteractions)
		r.Get("/interactions/{id}", s.GetInteraction)
		r.Delete("/interactions/{id}", s.DeleteInteraction)
		r.Post("/interactions/{id}/rematch", s.RematchInteraction)

		r.Post("/match", s.MatchInterests)
		r.Post("/match/category", s.MatchByCategory)

		r.Get("/tags/search", s.SearchTags)
		r.Put("/tags", s.ReplaceTags)
		r.Post("/catalog/refresh", s.RefreshCatalog)
	})

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// RecordInteraction handles POST /v1/interactions.
func (s *Server) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	var req recordInteractionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	itx, results, err := s.interactions.Record(r.Context(), req.Prospect, req.Officer, req.Transcript)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/v1/interactions/"+itx.ID())
	writeJSON(w, http.StatusCreated, interactionToResponse(itx, results))
}

// ListInteractions handles GET /v1/interactions.
func (s *Server) ListInteractions(w http.ResponseWriter, r *http.Request) {
	list, err := s.interactions.List(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]interactionResponse, len(list))
	for i, itx := range list {
		items[i] = interactionToResponse(itx, nil)
	}

	writeJSON(w, http.StatusOK, interactionListResponse{Items: items, Total: len(items)})
}

// GetInteraction handles GET /v1/interactions/{id}.
func (s *Server) GetInteraction(w http.ResponseWriter, r *http.Request) {
	itx, err := s.interactions.Get(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interactionToResponse(itx, nil))
}

// DeleteInteraction handles DELETE /v1/interactions/{id}.
func (s *Server) DeleteInteraction(w http.ResponseWriter, r *http.Request) {
	if err := s.interactions.Delete(r.Context(), chirouter.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RematchInteraction handles POST /v1/interactions/{id}/rematch.
func (s *Server) RematchInteraction(w http.ResponseWriter, r *http.Request) {
	itx, results, err := s.interactions.Rematch(r.Context(), chirouter.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interactionToResponse(itx, results))
}

// MatchInterests handles POST /v1/match.
func (s *Server) MatchInterests(w http.ResponseWriter, r *http.Request) {
	var req matchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	start := time.Now()
	results := s.catalog.Matcher().MatchInterests(
		req.ProfessionalInterests, req.PersonalInterests, req.PhilanthropicPriorities, req.Transcript)

	metrics.MatchRequestsTotal.WithLabelValues("interests").Inc()
	metrics.MatchDuration.WithLabelValues("interests").Observe(time.Since(start).Seconds())
	metrics.MatchResultsTotal.WithLabelValues("interests").Add(float64(len(results)))

	writeJSON(w, http.StatusOK, matchListResponse{
		Items: matchResultsToItems(results),
		Total: len(results),
	})
}

// MatchByCategory handles POST /v1/match/category.
func (s *Server) MatchByCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category := domtag.Category(req.Category)
	if !category.IsValid() {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "category must be Professional, Personal or Philanthropic")
		return
	}

	start := time.Now()
	results := s.catalog.Matcher().MatchByCategory(req.Interests, category)

	metrics.MatchRequestsTotal.WithLabelValues("category").Inc()
	metrics.MatchDuration.WithLabelValues("category").Observe(time.Since(start).Seconds())
	metrics.MatchResultsTotal.WithLabelValues("category").Add(float64(len(results)))

	writeJSON(w, http.StatusOK, matchListResponse{
		Items: matchResultsToItems(results),
		Total: len(results),
	})
}

// SearchTags handles GET /v1/tags/search.
func (s *Server) SearchTags(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeError(w, http.StatusBadRequest, codeValidationFailed, "query parameter q is required")
		return
	}

	limit := defaultTagSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxTagSearchLimit {
			writeError(w, http.StatusBadRequest, codeValidationFailed,
				"limit must be between 1 and "+strconv.Itoa(maxTagSearchLimit))
			return
		}
		limit = n
	}

	metrics.MatchRequestsTotal.WithLabelValues("similar").Inc()
	tags := s.catalog.Matcher().FindSimilarTags(q, limit)

	items := make([]tagPayload, len(tags))
	for i, t := range tags {
		items[i] = tagToPayload(t)
	}

	writeJSON(w, http.StatusOK, tagListResponse{Items: items, Total: len(items)})
}

// ReplaceTags handles PUT /v1/tags (the CRM sync door).
func (s *Server) ReplaceTags(w http.ResponseWriter, r *http.Request) {
	var req replaceTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	tags, err := tagsFromPayload(req.Tags)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidationFailed, err.Error())
		return
	}

	if err := s.catalog.ReplaceAll(r.Context(), tags); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"tags": len(tags)})
}

// RefreshCatalog handles POST /v1/catalog/refresh.
func (s *Server) RefreshCatalog(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Refresh(r.Context()); err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"tags": s.catalog.Matcher().Snapshot().Len()})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInteractionNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrExtractionProviderError,
		domain.ErrExtractionNotConfigured,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
