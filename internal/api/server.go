// Package api provides the HTTP API server for the ontology reasoning
// engine.
//
// This package implements the API gateway layer using the go-chi/chi
// router. It handles all HTTP routing, middleware chaining, and server
// lifecycle.
//
// The server implements the middleware chain:
// RequestID -> RealIP -> Logger -> Recoverer -> Timeout -> Auth -> RateLimit
//
// Usage:
//
//	cfg := config.MustLoad()
//	server := api.NewServer(cfg, logger, deps)
//	if err := server.Start(ctx); err != nil {
//	    log.Fatal("Server failed:", err)
//	}
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	gorillaws "github.com/gorilla/websocket"

	"github.com/cloud-princess/ontology-processor/internal/api/middleware"
	"github.com/cloud-princess/ontology-processor/internal/api/websocket"
	"github.com/cloud-princess/ontology-processor/internal/config"
	"github.com/cloud-princess/ontology-processor/internal/graph"
	"github.com/cloud-princess/ontology-processor/internal/orchestrator"
	"github.com/cloud-princess/ontology-processor/internal/question"
)

// HealthChecker is satisfied by the Graph Store backend so /ready can
// confirm the underlying database is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Server represents the HTTP API server.
type Server struct {
	config     *config.Config
	logger     *slog.Logger
	router     *chi.Mux
	httpServer *http.Server

	orchestrator *orchestrator.Orchestrator
	store        graph.Store
	health       HealthChecker
	validator    TokenValidatorFunc
	rateLimit    middleware.CacheClient
	metrics      *middleware.MetricsCollector

	upgrader gorillaws.Upgrader
}

// TokenValidatorFunc builds the auth middleware's token validator; nil
// disables auth entirely (local development).
type TokenValidatorFunc = middleware.TokenValidator

// Dependencies holds the required dependencies for the API server.
type Dependencies struct {
	Orchestrator *orchestrator.Orchestrator
	Store        graph.Store
	Health       HealthChecker
	Validator    TokenValidatorFunc

	// RateLimitCache backs the RateLimit middleware stage's distributed
	// request counters. Nil falls back to an in-process limiter, which
	// cannot be shared across API instances.
	RateLimitCache middleware.CacheClient
}

// NewServer creates a new API server instance.
func NewServer(cfg *config.Config, logger *slog.Logger, deps *Dependencies) *Server {
	if deps == nil {
		deps = &Dependencies{}
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:       cfg,
		logger:       logger,
		router:       chi.NewRouter(),
		orchestrator: deps.Orchestrator,
		store:        deps.Store,
		health:       deps.Health,
		validator:    deps.Validator,
		rateLimit:    deps.RateLimitCache,
		metrics:      middleware.NewMetricsCollector(),
		upgrader:     gorillaws.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
	}

	s.setupMiddleware()
	s.registerRoutes()

	return s
}

// setupMiddleware configures the middleware chain in the documented order:
// RequestID -> RealIP -> Logger -> Recoverer -> Timeout -> Auth -> RateLimit.
// Per-endpoint latency/error tracking runs alongside Logger, outside the
// named chain, feeding the /metrics endpoint registered in registerRoutes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.RequestLogger(&slogLogFormatter{logger: s.logger}))
	s.router.Use(middleware.MetricsMiddleware(s.metrics, s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.QueryTimeoutMiddleware(45 * time.Second))

	if s.validator != nil {
		s.router.Use(middleware.AuthMiddleware(s.validator, s.logger))
	}

	if s.config.RateLimit.Enabled {
		s.router.Use(middleware.RateLimitMiddleware(s.rateLimit, s.logger, s.config.RateLimit.RequestsPerMinute))
	}

	s.router.Use(chimiddleware.AllowContentType("application/json"))
	s.router.Use(chimiddleware.CleanPath)
	s.router.Use(chimiddleware.StripSlashes)
}

// registerRoutes mounts all API routes.
func (s *Server) registerRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/ready", s.handleReady)
	s.router.Get("/metrics", s.handleMetrics)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/query/stream", s.handleQueryStream)
	})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadTimeout:       s.config.Server.ReadTimeout,
		WriteTimeout:      s.config.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	s.logger.Info("starting API server",
		slog.String("address", addr),
		slog.String("environment", string(s.config.App.Environment)),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server listen error: %w", err)
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down server due to context cancellation")
		return s.Shutdown(context.Background())
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("server shutdown error", slog.Any("error", err))
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("API server shutdown complete")
	return nil
}

// Router returns the chi router for testing purposes.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// ============================================================================
// HTTP Handlers
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.health != nil {
		if err := s.health.HealthCheck(ctx); err != nil {
			s.logger.Error("readiness check: store health check failed", slog.Any("error", err))
			ErrorResponse(w, ErrServiceUnavailable, http.StatusServiceUnavailable)
			return
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleMetrics reports the per-endpoint request counts, error counts, and
// latency this server instance has handled since startup, or since the
// last call that reset them.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.metrics.GetStats())
}

// queryRequest is the POST /api/v1/query request body.
type queryRequest struct {
	Question  string `json:"question"`
	RequestID string `json:"request_id,omitempty"`
}

// handleQuery answers a single natural-language question, returning the
// QueryResult JSON shape exactly as produced by the orchestrator.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrorResponse(w, ErrInvalidRequest, http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		ErrorResponse(w, ErrQueryMissing, http.StatusBadRequest)
		return
	}

	result := s.orchestrator.Process(r.Context(), req.Question, req.RequestID)
	s.writeJSON(w, http.StatusOK, result)
}

// handleQueryStream upgrades to a websocket and streams BFS visitation
// frames for a single question given as the `question` query parameter,
// followed by a frame carrying the final YES/NO/DONT_KNOW result. This is a pure
// observability aid; the YES/NO/DONT_KNOW answer is unaffected.
func (s *Server) handleQueryStream(w http.ResponseWriter, r *http.Request) {
	questionText := r.URL.Query().Get("question")
	if questionText == "" {
		ErrorResponse(w, ErrQueryMissing, http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		ErrorResponse(w, ErrStreamUpgrade, http.StatusBadRequest)
		return
	}
	defer conn.Close()

	ts := websocket.NewTraceStream(websocket.Config{Conn: conn, Logger: s.logger})

	parsed, err := question.Parse(questionText)
	if err != nil {
		_ = ts.Error(fmt.Sprintf("could not parse question: %q", questionText))
		return
	}

	traced := s.orchestrator.TracedAnswer(r.Context(), parsed, ts.Visit)
	_ = ts.Complete(string(traced.Result))
}

// ============================================================================
// Helper Functions
// ============================================================================

func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write JSON response", slog.Any("error", err))
	}
}

// ============================================================================
// Logging Formatter
// ============================================================================

// slogLogFormatter implements chi's LogFormatter interface using slog.
type slogLogFormatter struct {
	logger *slog.Logger
}

func (f *slogLogFormatter) NewLogEntry(r *http.Request) chimiddleware.LogEntry {
	return &slogLogEntry{logger: f.logger, r: r}
}

// slogLogEntry implements chi's LogEntry interface.
type slogLogEntry struct {
	logger *slog.Logger
	r      *http.Request
}

func (e *slogLogEntry) Write(status, bytes int, header http.Header, elapsed time.Duration, extra interface{}) {
	e.logger.Info("request completed",
		slog.String("method", e.r.Method),
		slog.String("path", e.r.URL.Path),
		slog.Int("status", status),
		slog.Int("bytes", bytes),
		slog.Duration("elapsed", elapsed),
		slog.String("request_id", chimiddleware.GetReqID(e.r.Context())),
		slog.String("remote_addr", e.r.RemoteAddr),
	)
}

func (e *slogLogEntry) Panic(v interface{}, stack []byte) {
	e.logger.Error("request panic",
		slog.Any("panic", v),
		slog.String("stack", string(stack)),
		slog.String("request_id", chimiddleware.GetReqID(e.r.Context())),
	)
}
