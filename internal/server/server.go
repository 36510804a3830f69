// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: every dependency is built in New
// and wired to routes in setupRoutes.
//
//	config → sqlite.DB → Policy → RecommendationService / RoleService → handlers
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sakif/hypeshelf/internal/auth"
	"github.com/sakif/hypeshelf/internal/config"
	"github.com/sakif/hypeshelf/internal/handler"
	"github.com/sakif/hypeshelf/internal/middleware"
	sqliteRepo "github.com/sakif/hypeshelf/internal/repository/sqlite"
	"github.com/sakif/hypeshelf/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the database connection and closes it on shutdown.
type Server struct {
	router   *chi.Mux
	config   config.Config
	logger   *slog.Logger
	db       *sqliteRepo.DB
	registry *prometheus.Registry
}

// New opens the database (applying migrations) and builds the router.
func New(cfg config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: prometheus.NewRegistry(),
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /healthz                              → liveness (pings the DB)
// GET    /metrics                              → Prometheus metrics
// GET    /auth/github/login                    → start GitHub OAuth
// GET    /auth/github/callback                 → finish OAuth, set session cookie
// POST   /auth/logout                          → clear session cookie
// GET    /api/recommendations/public           → landing page list
// GET    /api/recommendations                  → dashboard list (?genre=&author=)
// POST   /api/recommendations                  → create
// DELETE /api/recommendations/{id}             → remove
// POST   /api/recommendations/{id}/staff-pick  → toggle staff pick (admin)
// GET    /api/me/role                          → caller's role
// PUT    /api/users/{userId}/role              → assign role (admin)
//
// The /auth routes exist only when both JWT_SECRET and the GitHub
// credentials are configured.
func (s *Server) setupRoutes() error {
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := middleware.NewMetrics(s.registry)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	// Outside Recoverer, so a recovered panic is counted as a 500.
	s.router.Use(metrics.Handler)
	s.router.Use(chimiddleware.Recoverer)

	// The interface stays nil (not a typed nil pointer) when auth is off,
	// which OptionalAuth treats as "everyone is anonymous".
	var verifier auth.Verifier
	var tokens *auth.TokenService
	if s.config.AuthEnabled() {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret, s.config.SessionTTL)
		if err != nil {
			return fmt.Errorf("creating token service: %w", err)
		}
		verifier = tokens
	} else {
		s.logger.Warn("JWT_SECRET not set: authentication is disabled, all requests are anonymous")
	}

	policy := service.NewPolicy(s.db, s.logger)
	recHandler := handler.NewRecommendationHandler(service.NewRecommendationService(s.db, policy, s.logger), s.logger)
	roleHandler := handler.NewRoleHandler(service.NewRoleService(s.db, policy, s.logger), s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.Get("/healthz", healthHandler.HandleHealth)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if s.config.GitHubEnabled() {
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authHandler := handler.NewAuthHandler(github, tokens, s.config.CookieSecure, s.logger)
		s.router.Route("/auth", authHandler.Register)
	} else if s.config.AuthEnabled() {
		s.logger.Warn("GitHub OAuth not configured: login routes are disabled")
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.OptionalAuth(verifier, s.logger))
		recHandler.Register(r)
		roleHandler.Register(r)
	})

	return nil
}

// Start runs the HTTP server until SIGINT or SIGTERM, then shuts down
// gracefully:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the database connection
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("database", s.config.DBPath),
			slog.Bool("auth", s.config.AuthEnabled()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
