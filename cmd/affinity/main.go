package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/advancehq/affinity/internal/config"
	dbRedis "github.com/advancehq/affinity/internal/db/redis"
	"github.com/advancehq/affinity/internal/domain"
	"github.com/advancehq/affinity/internal/domain/match"
	logpkg "github.com/advancehq/affinity/internal/logger"
	"github.com/advancehq/affinity/internal/metrics"
	itxrepo "github.com/advancehq/affinity/internal/repository/interaction"
	tagsrepo "github.com/advancehq/affinity/internal/repository/tags"
	chiTransport "github.com/advancehq/affinity/internal/transport/chi"
	openaiExt "github.com/advancehq/affinity/internal/transport/openai"
	cataloguc "github.com/advancehq/affinity/internal/usecase/catalog"
	healthuc "github.com/advancehq/affinity/internal/usecase/health"
	interactionuc "github.com/advancehq/affinity/internal/usecase/interaction"
	"github.com/advancehq/affinity/internal/usecase/matching"
	"github.com/advancehq/affinity/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting affinity API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterExtractionMetrics()
	metrics.RegisterMatchingMetrics()

	// Optional interest extraction provider
	var extractor *openaiExt.Extractor
	if cfg.Extraction.APIKey != "" {
		extractor = openaiExt.NewExtractor(&openaiExt.Config{
			APIKey:   cfg.Extraction.APIKey,
			BaseURL:  cfg.Extraction.BaseURL,
			Model:    cfg.Extraction.Model,
			Provider: cfg.Extraction.Provider,
			Logger:   logger,
		})
		logger.Info("Extraction provider created",
			zap.String("provider", cfg.Extraction.Provider),
			zap.String("model", cfg.Extraction.Model),
		)
	} else {
		logger.Warn("Extraction disabled: no api_key configured")
	}

	// Create repositories (domain-native, no adapters)
	tagRepo := tagsrepo.New(store, cfg.Catalog.KeyPrefix)
	interactionRepo := itxrepo.New(store, cfg.Catalog.KeyPrefix)

	matchCfg := matching.Config{
		AcceptanceThreshold: cfg.Matching.AcceptanceThreshold,
		Generosity:          cfg.Matching.Generosity,
		CategoryThreshold:   cfg.Matching.CategoryThreshold,
		CategoryGenerosity:  cfg.Matching.CategoryGenerosity,
		MaxResults:          cfg.Matching.MaxResults,
		BestScoreWins:       cfg.Matching.BestScoreWins,
		Institution:         cfg.Institution.Name,
		InstitutionAbbr:     cfg.Institution.Abbreviation,
		Observer:            matchTraceObserver(logger),
	}

	// Create use case services
	catalogSvc, err := cataloguc.New(tagRepo, matchCfg, logger)
	if err != nil {
		logger.Fatal("Failed to create catalog service", zap.Error(err))
	}
	if err := catalogSvc.Refresh(ctx); err != nil {
		// The empty matcher keeps serving until the next refresh succeeds.
		logger.Warn("Initial catalog refresh failed", zap.Error(err))
	}

	var domExtractor domain.Extractor
	var extChecker healthuc.ExtractionChecker
	if extractor != nil {
		domExtractor = extractor
		extChecker = extractor
	}

	interactionSvc := interactionuc.New(interactionRepo, catalogSvc, domExtractor, logger)
	healthSvc := healthuc.New(store, extChecker)

	// Create chi server
	server := chiTransport.NewServer(interactionSvc, catalogSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	// Background catalog refresher
	runCtx, stopRefresher := context.WithCancel(ctx)
	defer stopRefresher()
	go catalogSvc.Run(runCtx, time.Duration(cfg.Catalog.RefreshIntervalSec)*time.Second)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	stopRefresher()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// matchTraceObserver logs per-candidate match decisions at debug level.
func matchTraceObserver(logger *zap.Logger) func(match.Trace) {
	if !logger.Core().Enabled(zap.DebugLevel) {
		return nil
	}
	return func(t match.Trace) {
		logger.Debug("match_trace",
			zap.String("phrase", t.Phrase),
			zap.String("variant", t.Variant),
			zap.String("tag_id", t.TagID),
			zap.String("tag_name", t.TagName),
			zap.Float64("score", t.Score),
			zap.Bool("accepted", t.Accepted),
			zap.String("reason", t.Reason),
		)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
