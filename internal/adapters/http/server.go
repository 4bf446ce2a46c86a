// Package http serves quotebox with Gin: the HTML pages, the AJAX vote
// endpoints and the JSON API, behind one listener.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotebox/internal/platform/config"
)

// Server owns the listener and the Gin engine the routes are mounted on.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	listener   net.Listener
	logger     *slog.Logger
}

// New builds the engine and the http.Server. Forwarding headers are only
// honored from cfg.TrustedProxies, so client IPs in access logs cannot be
// spoofed by visitors.
func New(cfg *config.ServerConfig, logger *slog.Logger) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("setting trusted proxies: %w", err)
	}

	// Forms and JSON submissions share one body cap.
	engine.Use(maxBodySize(cfg.MaxRequestSize))

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Handler:           engine,
		ReadHeaderTimeout: cfg.ReadTimeout,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	return &Server{
		engine:     engine,
		httpServer: httpServer,
		logger:     logger,
	}, nil
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Start binds the listener and serves in the background. A bind failure is
// returned directly. Serve errors arrive on the channel, which is closed
// once the server stops.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.httpServer.Addr, err)
	}

	s.listener = ln

	s.logger.Info("quotebox listening",
		slog.String("addr", ln.Addr().String()),
		slog.Duration("read_timeout", s.httpServer.ReadTimeout),
		slog.Duration("write_timeout", s.httpServer.WriteTimeout),
	)

	errCh := make(chan error, 1)

	go func() {
		err := s.httpServer.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}

		close(errCh)
	}()

	return errCh, nil
}

// Shutdown stops accepting visitors and waits for in-flight requests until
// ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	s.logger.Info("HTTP server stopped")

	return nil
}

// Addr is the bound address after Start, the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}

	return s.httpServer.Addr
}

func maxBodySize(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
