// Package server serves the MCP tool endpoint and its operational routes over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bobmcallan/tradedesk/internal/app"
	"github.com/bobmcallan/tradedesk/internal/common"
	"github.com/bobmcallan/tradedesk/internal/handlers"
)

const maxRequestBody = 1 << 20

// Server manages the HTTP server and routes.
type Server struct {
	app    *app.App
	mcp    http.Handler
	router *http.ServeMux
	server *http.Server
	logger *common.Logger
}

// New creates a new HTTP server for application. mcpHandler is mounted at /mcp and may be nil.
func New(application *app.App, mcpHandler http.Handler) *Server {
	s := &Server{
		app:    application,
		mcp:    mcpHandler,
		logger: application.Logger,
	}

	s.router = s.setupRoutes()

	s.server = &http.Server{
		Addr:         application.Config.MCP.Addr(),
		Handler:      s.withMiddleware(s.router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * application.Config.API.GetTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info().
		Str("address", s.server.Addr).
		Str("url", fmt.Sprintf("http://%s/mcp", s.server.Addr)).
		Msg("HTTP server starting")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// Handler returns the HTTP handler for testing.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	if s.mcp != nil {
		mux.Handle("/mcp", s.mcp)
	}

	mux.Handle("/api/health", handlers.NewHealthHandler(s.logger))
	mux.Handle("/api/version", handlers.NewVersionHandler(s.logger))
	mux.Handle("/api/backend-health", handlers.NewBackendHealthHandler(s.logger, s.app.Client))

	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	handlers.WriteError(w, http.StatusNotFound, "The requested endpoint does not exist")
}
