// Copyright (c) 2026 Mangetsu. All rights reserved.

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/mangetsu-app/mangetsu/internal/analytics/visitor"
	"github.com/mangetsu-app/mangetsu/internal/core/chapter"
	"github.com/mangetsu-app/mangetsu/internal/core/genre"
	"github.com/mangetsu-app/mangetsu/internal/core/title"
	"github.com/mangetsu-app/mangetsu/internal/platform/config"
	"github.com/mangetsu-app/mangetsu/internal/platform/constants"
	"github.com/mangetsu-app/mangetsu/internal/platform/middleware"
	"github.com/mangetsu-app/mangetsu/internal/social/notification"
	"github.com/mangetsu-app/mangetsu/internal/social/reaction"
	"github.com/mangetsu-app/mangetsu/internal/upload"
	"github.com/mangetsu-app/mangetsu/internal/users/account"
	"github.com/mangetsu-app/mangetsu/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here; no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler. Always returns 200 if the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. Returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (login, register, recovery).
	Auth *auth.Handler

	// Account handles profile, preferences, sessions, and admin user management.
	Account *account.Handler

	// Title handles the publication catalogue.
	Title *title.Handler

	// Chapter handles chapter reads and the upload pipeline.
	Chapter *chapter.Handler

	// Genre manages the genre taxonomy.
	Genre *genre.Handler

	// Upload handles direct asset ingestion and presigned uploads.
	Upload *upload.Handler

	// Reaction handles like/dislike toggles on titles and chapters.
	Reaction *reaction.Handler

	// Notification handles the per-user notification feed.
	Notification *notification.Handler

	// Analytics exposes the admin traffic dashboard.
	Analytics *visitor.Handler

	// VisitorTracker records page views in the background. Optional.
	VisitorTracker *visitor.Service
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	if h.VisitorTracker != nil {
		r.Use(visitor.Tracking(h.VisitorTracker))
	}

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/titles", h.Title.Routes())
		api.Mount("/titles/{titleID}/chapters", h.Chapter.TitleRoutes())
		api.Mount("/chapters", h.Chapter.Routes())
		api.Mount("/genres", h.Genre.Routes())
		api.Mount("/uploads", h.Upload.Routes())
		api.Mount("/reactions", h.Reaction.Routes())
		api.Mount("/notifications", h.Notification.Routes())
		api.Mount("/analytics", h.Analytics.Routes())
		api.Mount("/", h.Account.Routes())
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
