package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Gautam1401/config-operations-hub/internal/classify"
	"github.com/Gautam1401/config-operations-hub/internal/domain"
)

// Server represents the HTTP API server.
type Server struct {
	router  *chi.Mux
	handler *Handler
	server  *http.Server
	config  domain.ServerConfig
}

// NewServer creates a new API server.
func NewServer(cfg domain.ServerConfig, repo domain.Repository, cache domain.Cache, bus domain.EventBus, engine *classify.Engine, reportTTL time.Duration, version string) *Server {
	handler := NewHandler(repo, cache, bus, engine, reportTTL, version)
	router := chi.NewRouter()

	// Global middleware stack
	router.Use(CORSMiddleware)         // CORS for browser clients
	router.Use(RecoverMiddleware)      // Recover from panics
	router.Use(TracingMiddleware)      // OpenTelemetry tracing
	router.Use(LoggingMiddleware)      // Request logging
	router.Use(middleware.RealIP)      // Extract real IP
	router.Use(middleware.Compress(5)) // Gzip compression

	// Health endpoints (no domain required)
	router.Get("/health", handler.Health)
	router.Get("/ready", handler.Ready)

	// API routes (business domain required)
	router.Route("/api/v1/domains/{domain}", func(r chi.Router) {
		r.Use(DomainMiddleware)

		// Snapshot ingestion and retrieval
		r.Post("/snapshots", handler.IngestSnapshot)
		r.Get("/snapshots", handler.ListSnapshots)
		r.Get("/snapshots/{id}", handler.GetSnapshot)

		// Aggregates
		r.Get("/kpis", handler.GetKPIs)
		r.Get("/regions", handler.GetRegions)
		r.Get("/records", handler.GetRecords)
		r.Get("/assignees", handler.GetAssignees)
		r.Get("/modules", handler.GetModules)
		r.Get("/scores", handler.GetScores)
		r.Get("/upcoming-week", handler.GetUpcomingWeek)

		// Custom dimension management
		r.Get("/dimensions", handler.ListDimensions)
		r.Get("/dimensions/{id}", handler.GetDimension)
		r.Post("/dimensions", handler.CreateDimension)
		r.Delete("/dimensions/{id}", handler.DeleteDimension)
		r.Post("/dimensions/reload", handler.ReloadDimensions)
	})

	return &Server{
		router:  router,
		handler: handler,
		config:  cfg,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.config.WriteTimeout) * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the Chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Handler returns the handler for testing.
func (s *Server) Handler() *Handler {
	return s.handler
}
