// Package api serves the timeline and booking HTTP API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/felixgeelhaar/shiftgrid/pkg/observability"
)

// Server is the HTTP API server.
type Server struct {
	mux      *http.ServeMux
	server   *http.Server
	logger   *slog.Logger
	timeline *TimelineHandler
	bookings *BookingHandler
	health   *observability.HealthRegistry
}

// ServerConfig holds configuration for the API server.
type ServerConfig struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:         "0.0.0.0:8080",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewServer creates a new API server. A nil health registry serves a
// static healthy status.
func NewServer(cfg ServerConfig, timeline *TimelineHandler, bookings *BookingHandler, health *observability.HealthRegistry, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		mux:      http.NewServeMux(),
		logger:   logger,
		timeline: timeline,
		bookings: bookings,
		health:   health,
	}
	s.registerRoutes()

	s.server = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// registerRoutes sets up the API routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	// Timeline
	s.mux.HandleFunc("GET /api/v1/catalog", s.timeline.GetCatalog)
	s.mux.HandleFunc("POST /api/v1/layout/segments", s.timeline.ComputeSegments)
	s.mux.HandleFunc("POST /api/v1/locations/{locationID}/drafts/{sessionID}/paint", s.timeline.Paint)
	s.mux.HandleFunc("POST /api/v1/locations/{locationID}/drafts/{sessionID}/preview", s.timeline.Preview)
	s.mux.HandleFunc("POST /api/v1/locations/{locationID}/drafts/{sessionID}/undo", s.timeline.Undo)
	s.mux.HandleFunc("DELETE /api/v1/locations/{locationID}/drafts/{sessionID}", s.timeline.Clear)
	s.mux.HandleFunc("GET /api/v1/locations/{locationID}/drafts/{sessionID}/days/{dayKey}/layout", s.timeline.DayLayout)

	// Bookings
	s.mux.HandleFunc("POST /api/v1/bookings", s.bookings.Create)
	s.mux.HandleFunc("GET /api/v1/bookings", s.bookings.List)
	s.mux.HandleFunc("GET /api/v1/bookings/{bookingID}", s.bookings.Get)
	s.mux.HandleFunc("POST /api/v1/bookings/{bookingID}/cancel", s.bookings.Cancel)
	s.mux.HandleFunc("PUT /api/v1/bookings/{bookingID}/status", s.bookings.UpdateStatus)
	s.mux.HandleFunc("GET /api/v1/availability", s.bookings.Availability)
}

// Handler returns the routed handler wrapped in the request middleware.
func (s *Server) Handler() http.Handler {
	return withRequestContext(s.logger, s.mux)
}

// handleHealth reports the registered checks. Unhealthy maps to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	report := s.health.Check(r.Context())
	status := http.StatusOK
	if report.Status == observability.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Start starts the API server.
func (s *Server) Start() error {
	s.logger.Info("starting API server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")
	return s.server.Shutdown(ctx)
}
