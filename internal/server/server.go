// Package server assembles the HTTP API from the feature packages.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/BhavyaPagadala/urbix/internal/analysis"
	"github.com/BhavyaPagadala/urbix/internal/audit"
	"github.com/BhavyaPagadala/urbix/internal/briefing"
	"github.com/BhavyaPagadala/urbix/internal/dashboard"
	"github.com/BhavyaPagadala/urbix/internal/lifecycle"
	"github.com/BhavyaPagadala/urbix/internal/notifications"
	"github.com/BhavyaPagadala/urbix/internal/similar"
	"github.com/BhavyaPagadala/urbix/internal/users"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Deps are the feature components the server exposes. Audit,
// Notifications, Similar and Pulse may be nil.
type Deps struct {
	Engine        *lifecycle.Engine
	Users         *users.Directory
	Dashboard     *dashboard.Dashboard
	Audit         *audit.Store
	Notifications *notifications.Store
	Dispatcher    *notifications.Dispatcher
	Similar       *similar.Index
	Pulse         *analysis.PulseTracker
	Location      *time.Location
}

// Server is the Urbix HTTP server.
type Server struct {
	cfg        Config
	deps       Deps
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with every feature route mounted.
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		cfg:  cfg,
		deps: deps,
	}

	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// The websocket feed is long-lived and stays outside the request timeout.
	if s.deps.Dashboard != nil {
		s.deps.Dashboard.RegisterLive(r)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))

		if s.deps.Engine != nil {
			lifecycle.RegisterRoutes(r, s.deps.Engine)
			similar.RegisterRoutes(r, s.deps.Similar, s.deps.Engine.Store())
			briefing.RegisterRoutes(r, s.deps.Engine.Store(), s.deps.Pulse, s.deps.Location)
		}
		if s.deps.Users != nil {
			users.RegisterRoutes(r, s.deps.Users)
		}
		if s.deps.Dashboard != nil {
			s.deps.Dashboard.RegisterRoutes(r)
		}
		if s.deps.Audit != nil {
			audit.RegisterRoutes(r, s.deps.Audit)
		}
		if s.deps.Notifications != nil && s.deps.Dispatcher != nil {
			notifications.RegisterRoutes(r, s.deps.Notifications, s.deps.Dispatcher)
		}
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("urbix server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
