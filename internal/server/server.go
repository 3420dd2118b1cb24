// Package server wires the application together: it owns the router, the
// database handle, and the dependency graph from repositories up to handlers.
//
// main.go stays minimal — it reads configuration and calls New/Start. All
// route definitions and middleware ordering live here, in one place, so the
// whole HTTP surface of the service can be read top to bottom.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/snippetshare/internal/auth"
	"github.com/sakif/snippetshare/internal/feed"
	"github.com/sakif/snippetshare/internal/handler"
	"github.com/sakif/snippetshare/internal/middleware"
	sqliteRepo "github.com/sakif/snippetshare/internal/repository/sqlite"
	"github.com/sakif/snippetshare/internal/runner"
	"github.com/sakif/snippetshare/internal/service"
)

// Config holds everything the server needs from the environment. Auth fields
// may be empty: without a JWT secret the server still starts, but every route
// that needs a caller identity answers 401.
type Config struct {
	Port   int
	DBPath string

	JWTSecret          string
	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string
}

// Server owns the router and the resources that must be released on shutdown.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database and assembles the full dependency chain:
// sqlite.DB → services → handlers → routes. The runner is optional; pass nil
// when Docker is unavailable and the run endpoint degrades to 503.
func New(cfg Config, logger *slog.Logger, run runner.Runner) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(run); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// setupRoutes configures middleware and the route table.
//
// Middleware order matters: RequestID and RealIP first so the logger sees
// them, Recoverer before anything that can panic, then request logging.
func (s *Server) setupRoutes(run runner.Runner) error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// Services. The handlers only ever see these, never the repositories.
	snippetService := service.NewSnippetService(s.db, s.logger)
	saveService := service.NewSaveService(s.db, s.db, s.logger)
	feedService := feed.NewService(s.db, s.db, s.logger)

	snippetHandler := handler.NewSnippetHandler(snippetService, s.logger)
	saveHandler := handler.NewSaveHandler(saveService, s.logger)
	feedHandler := handler.NewFeedHandler(feedService, s.logger)
	runHandler := handler.NewRunHandler(snippetService, run, s.logger)

	// Auth is optional: without a secret every authenticated route answers
	// 401 and anonymous routes see no caller. OAuth routes are only
	// registered when GitHub credentials are configured.
	var (
		tokens       *auth.TokenService
		requireAuth  func(http.Handler) http.Handler
		optionalAuth func(http.Handler) http.Handler
	)
	if s.config.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			return fmt.Errorf("token service: %w", err)
		}
		requireAuth = auth.RequireAuth(tokens)
		optionalAuth = auth.OptionalAuth(tokens)
	} else {
		s.logger.Warn("JWT secret not configured, authenticated routes disabled")
		requireAuth = rejectAuth
		optionalAuth = passThrough
	}

	writeLimit := middleware.RateLimit(middleware.DefaultRateLimitConfig())

	s.router.Route("/api", func(r chi.Router) {
		// Reads that work with or without a caller. The guard inside the
		// services decides what an anonymous caller may see.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/feed/{name}", feedHandler.HandlePage)
			r.Get("/snippets/{id}", snippetHandler.HandleGetByID)
			r.Get("/snippets/{id}/saves", saveHandler.HandleCount)
			r.Post("/snippets/{id}/run", runHandler.HandleRun)
		})

		// Mutations require a caller.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(writeLimit)
			r.Post("/snippets", snippetHandler.HandleCreate)
			r.Put("/snippets/{id}", snippetHandler.HandleUpdate)
			r.Delete("/snippets/{id}", snippetHandler.HandleDelete)
			r.Post("/snippets/{id}/save", saveHandler.HandleToggle)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/snippets/{id}/saved", saveHandler.HandleIsSaved)
		})
	})

	if tokens != nil && s.config.GitHubClientID != "" {
		github := auth.NewGitHubProvider(
			s.config.GitHubClientID,
			s.config.GitHubClientSecret,
			s.config.GitHubCallbackURL,
		)
		authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(), s.logger)
		authHandler := handler.NewAuthHandler(github, authService, s.logger)

		s.router.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		s.router.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
		s.router.Post("/auth/logout", authHandler.HandleLogout)
		s.router.With(requireAuth).Get("/api/me", authHandler.HandleMe)
	} else {
		s.logger.Warn("GitHub OAuth not configured, login routes disabled")
	}

	return nil
}

// rejectAuth stands in for RequireAuth when no JWT secret is configured.
func rejectAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"unauthorized","message":"authentication is not configured"}`))
	})
}

func passThrough(next http.Handler) http.Handler {
	return next
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests, close the database.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // snippet runs can be slow
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
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

// Router exposes the underlying handler, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
