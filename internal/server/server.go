package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ternarybob/titulus/internal/app"
	"github.com/ternarybob/titulus/internal/handlers"
)

// Server manages the HTTP server and routes
type Server struct {
	app     *app.App
	router  *http.ServeMux
	server  *http.Server
	limiter *rate.Limiter

	parseHandler   *handlers.ParseHandler
	patternHandler *handlers.PatternHandler
	statusHandler  *handlers.StatusHandler
}

// New creates a new HTTP server with the given app
func New(application *app.App) *Server {
	s := &Server{
		app:            application,
		limiter:        rate.NewLimiter(rate.Limit(application.Config.Server.RateLimit), application.Config.Server.RateBurst),
		parseHandler:   handlers.NewParseHandler(application.Pipeline, application.Logger),
		patternHandler: handlers.NewPatternHandler(application.StorageManager.PatternStorage(), application.Logger),
		statusHandler:  handlers.NewStatusHandler(application.Config, application.StorageManager.PatternStorage(), application.Logger),
	}

	// Setup routes
	s.router = s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", application.Config.Server.Host, application.Config.Server.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.app.Config.Server.Host, s.app.Config.Server.Port)

	s.app.Logger.Info().
		Str("address", addr).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.app.Logger.Info().Msg("Shutting down HTTP server...")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.app.Logger.Info().Msg("HTTP server stopped")
	return nil
}
