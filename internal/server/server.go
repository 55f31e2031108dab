// Package server exposes the generation pipeline over HTTP, including
// the SSE streaming endpoint and artifact downloads.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"git.home.luguber.info/inful/deckforge/internal/config"
	dferrors "git.home.luguber.info/inful/deckforge/internal/errors"
	"git.home.luguber.info/inful/deckforge/internal/eventstore"
	"git.home.luguber.info/inful/deckforge/internal/llm"
	"git.home.luguber.info/inful/deckforge/internal/pipeline"
	"git.home.luguber.info/inful/deckforge/internal/stream"
)

// Server is the HTTP front end of the generation service.
type Server struct {
	addr      string
	router    *chi.Mux
	server    *http.Server
	logger    *slog.Logger
	errors    *dferrors.HTTPErrorAdapter
	orch      *pipeline.Orchestrator
	broker    *stream.Broker
	store     eventstore.Store
	modelInfo llm.ModelInfo
	outputDir string
	heartbeat time.Duration
	registry  *prometheus.Registry
}

// Option configures a Server.
type Option func(*Server)

// WithRegistry exposes the given Prometheus registry at /metrics.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) { s.registry = reg }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New wires the HTTP surface over an orchestrator, a broker, and an
// event store.
func New(cfg *config.Config, orch *pipeline.Orchestrator, broker *stream.Broker, store eventstore.Store, info llm.ModelInfo, opts ...Option) *Server {
	s := &Server{
		addr:      cfg.Server.Addr,
		router:    chi.NewRouter(),
		logger:    slog.Default(),
		orch:      orch,
		broker:    broker,
		store:     store,
		modelInfo: info,
		outputDir: cfg.Server.OutputDir,
		heartbeat: cfg.Pipeline.HeartbeatInterval,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.errors = dferrors.NewHTTPErrorAdapter(s.logger)

	s.setupRoutes()

	s.server = &http.Server{
		Addr:        s.addr,
		Handler:     s.router,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE endpoint holds its connection open
		// for the whole run.
		IdleTimeout: 60 * time.Second,
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/generate/stream", s.handleGenerateStream)
		r.Post("/generate", s.handleGenerate)
		r.Get("/themes", s.handleThemes)
		r.Get("/llm-info", s.handleLLMInfo)
		r.Get("/download/{filename}", s.handleDownload)
		r.Get("/runs/{id}/events", s.handleRunEvents)
	})
}

// Router returns the HTTP handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start begins serving and blocks until the listener closes.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"healthy"}`))
}
