// Package webserver hosts the rolecoach HTTP API.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mentorinc/rolecoach/internal/webapi"
)

// DefaultPort is used when Config.Port is zero.
const DefaultPort = 3000

// shutdownTimeout bounds how long in-flight judge calls may finish after the
// context is cancelled.
const shutdownTimeout = 30 * time.Second

// Config holds the HTTP server configuration.
type Config struct {
	// Host defaults to 127.0.0.1.
	Host           string
	Port           int
	AllowedOrigins []string
	Handlers       *webapi.Handlers
	Logger         *slog.Logger
}

// Server wraps the HTTP server with configuration.
type Server struct {
	cfg    Config
	srv    *http.Server
	logger *slog.Logger
}

// New creates a new HTTP server with the given configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("webserver: handlers are required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}

	mux := http.NewServeMux()
	registerRoutes(mux, cfg)

	s := &Server{
		cfg:    cfg,
		logger: cfg.Logger,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, fmt.Sprint(cfg.Port)),
			Handler:           webapi.CORSMiddleware(mux, cfg.AllowedOrigins...),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
	return s, nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.srv.Addr
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("HTTP server starting", "address", ln.Addr().String())

	// Graceful shutdown on context cancellation.
	done := make(chan struct{})
	serveFailed := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case <-ctx.Done():
		case <-serveFailed:
			return
		}
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("HTTP server shutdown error", "error", err)
		}
	}()

	err := s.srv.Serve(ln)
	if !errors.Is(err, http.ErrServerClosed) {
		close(serveFailed)
		<-done
		return fmt.Errorf("HTTP server error: %w", err)
	}
	// Serve returns as soon as Shutdown starts; wait for in-flight requests.
	<-done
	return nil
}

// Handler returns the underlying http.Handler (useful for testing).
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}
