package server

import (
	"coin-dashboard-service/internal/infrastructure/logging"
	"context"
	"fmt"
	"net/http"
	"time"
)

// Server encapsulates HTTP server configuration
type Server struct {
	httpServer *http.Server
	port       int
}

// NewServer creates a new server instance
func NewServer(handler http.Handler, port int) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		port: port,
	}
}

// Start starts the HTTP server. Blocks until Stop is called.
func (s *Server) Start() error {
	ctx := context.Background()

	logging.Info(ctx, "HTTP server starting", logging.Fields{
		"port": s.port,
	})

	logging.Info(ctx, "Available endpoints", logging.Fields{
		"endpoints": []string{
			fmt.Sprintf("GET  http://localhost:%d/health", s.port),
			fmt.Sprintf("GET  http://localhost:%d/ready", s.port),
			fmt.Sprintf("GET  http://localhost:%d/metrics", s.port),
			fmt.Sprintf("GET  ws://localhost:%d/ws", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/state", s.port),
			fmt.Sprintf("POST http://localhost:%d/api/v1/markets/page/{page}", s.port),
			fmt.Sprintf("POST http://localhost:%d/api/v1/search", s.port),
			fmt.Sprintf("PUT  http://localhost:%d/api/v1/currency", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/coins/{id}/chart?days=7", s.port),
			fmt.Sprintf("GET  http://localhost:%d/api/v1/favorites", s.port),
		},
	})

	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop stops the HTTP server gracefully
func (s *Server) Stop(ctx context.Context) error {
	logging.Info(ctx, "Stopping HTTP server gracefully", logging.Fields{
		"port": s.port,
	})

	return s.httpServer.Shutdown(ctx)
}

// RegisterOnShutdown runs f when Stop begins; used to close hijacked websocket connections
func (s *Server) RegisterOnShutdown(f func()) {
	s.httpServer.RegisterOnShutdown(f)
}

// GetPort returns the configured port
func (s *Server) GetPort() int {
	return s.port
}
