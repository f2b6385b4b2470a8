package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ha1tch/drugref/pkg/cache"
	"github.com/ha1tch/drugref/pkg/config"
	"github.com/ha1tch/drugref/pkg/models"
)

// Server exposes a built reference graph over HTTP (read-only)
type Server struct {
	config *config.Config
	cache  cache.Cache
	logger zerolog.Logger
	router *chi.Mux
	http   *http.Server

	mu    sync.RWMutex
	graph *models.Graph
}

// New creates a new server instance serving g
func New(
	cfg *config.Config,
	g *models.Graph,
	cache cache.Cache,
	logger zerolog.Logger,
) *Server {
	if g == nil {
		g = &models.Graph{}
	}
	s := &Server{
		config: cfg,
		cache:  cache,
		logger: logger,
		router: chi.NewRouter(),
		graph:  g,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))
	if s.config.Debug {
		s.router.Use(middleware.Logger)
	}

	s.router.Get("/health", s.handleHealth)
	s.router.Get("/version", s.handleVersion)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/graph", s.handleElements)
		r.Get("/graph/stats", s.handleStats)
		r.Get("/graph/nodes", s.handleNodes)
		r.Get("/graph/nodes/{id}", s.handleNode)
		r.Get("/graph/edges", s.handleEdges)

		r.Get("/journals", s.handleJournals)
		r.Get("/journals/top", s.handleTopJournal)
	})
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info().Str("addr", addr).Msg("Starting server")

	s.mu.Lock()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.http
	s.mu.Unlock()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.http
	s.mu.RUnlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// Handler returns the HTTP handler (useful for testing)
func (s *Server) Handler() http.Handler {
	return s.router
}

// SetGraph swaps the served graph and drops cached responses
func (s *Server) SetGraph(g *models.Graph) {
	s.mu.Lock()
	s.graph = g
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, prefix := range []string{graphKeyPrefix, journalKeyPrefix} {
		if err := s.cache.DeletePrefix(ctx, prefix); err != nil {
			s.logger.Warn().Err(err).Str("prefix", prefix).Msg("Failed to invalidate cache")
		}
	}
}

// currentGraph returns the graph being served
func (s *Server) currentGraph() *models.Graph {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}
