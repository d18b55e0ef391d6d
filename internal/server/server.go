// Package server exposes projections, comparisons and stored
// configurations over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/rgehrsitz/fincast/internal/config"
	"github.com/rgehrsitz/fincast/internal/store"
)

// Config holds server configuration
type Config struct {
	Port    int
	Log     zerolog.Logger
	Store   *store.Store // optional; the /configurations and /runs routes need it
	Version string
}

// Server represents the HTTP server
type Server struct {
	router  *chi.Mux
	server  *http.Server
	log     zerolog.Logger
	store   *store.Store
	parser  *config.InputParser
	port    int
	version string
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		log:     cfg.Log.With().Str("component", "server").Logger(),
		store:   cfg.Store,
		parser:  config.NewInputParser(),
		port:    cfg.Port,
		version: cfg.Version,
	}
	if s.version == "" {
		s.version = "dev"
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/simulate", s.handleSimulate)
		r.Post("/compare", s.handleCompare)
		r.Post("/validate", s.handleValidate)

		r.Route("/configurations", func(r chi.Router) {
			r.Use(s.requireStore)
			r.Get("/", s.handleListConfigurations)
			r.Post("/", s.handleSaveConfiguration)
			r.Get("/{id}", s.handleGetConfiguration)
			r.Delete("/{id}", s.handleDeleteConfiguration)
			r.Get("/{id}/runs", s.handleListRuns)
			r.Post("/{id}/simulate", s.handleRunStoredSimulation)
			r.Post("/{id}/compare", s.handleRunStoredComparison)
		})
		r.With(s.requireStore).Get("/runs/{id}", s.handleGetRun)
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}

func (s *Server) requireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.store == nil {
			s.writeError(w, http.StatusServiceUnavailable, "storage is not configured")
			return
		}
		next.ServeHTTP(w, r)
	})
}
