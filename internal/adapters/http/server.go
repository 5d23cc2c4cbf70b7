// Package http exposes the quote list, sync trigger and probes over Gin.
package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
)

// Server runs a Gin engine behind a net/http server configured from the
// server section of the config.
type Server struct {
	engine *gin.Engine
	srv    *http.Server
	cfg    *config.ServerConfig
	logger *slog.Logger
	bound  atomic.Pointer[string]
}

// New returns a server in release mode with the request size limit already
// installed. Register routes on Engine before calling Start.
func New(cfg *config.ServerConfig, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(limitBody(cfg.MaxRequestSize))

	return &Server{
		engine: engine,
		srv: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           engine,
			ReadHeaderTimeout: cfg.ReadTimeout,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		cfg:    cfg,
		logger: logger.With(slog.String("component", "http.Server")),
	}
}

func (s *Server) Engine() *gin.Engine { return s.engine }

// Start listens on the configured address and serves in the background.
// A bind failure is returned at once. The channel reports a later serve
// failure and is closed once the server has stopped.
func (s *Server) Start() (<-chan error, error) {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	return s.Serve(ln), nil
}

// Serve is Start for a listener the caller already owns.
func (s *Server) Serve(ln net.Listener) <-chan error {
	addr := ln.Addr().String()
	s.bound.Store(&addr)

	s.logger.Info("serving quotes API",
		slog.String("addr", addr),
		slog.Duration("read_timeout", s.cfg.ReadTimeout),
		slog.Duration("write_timeout", s.cfg.WriteTimeout),
		slog.Int64("max_request_size", s.cfg.MaxRequestSize),
	)

	done := make(chan error, 1)

	go func() {
		defer close(done)

		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			return
		}

		done <- fmt.Errorf("serving http: %w", err)
	}()

	return done
}

// Shutdown drains in-flight requests until ctx ends. A manual sync still
// running is bounded by its own request deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("draining quotes API")

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down http server: %w", err)
	}

	s.logger.Info("quotes API stopped")

	return nil
}

// Addr is the listening address once Start or Serve ran, otherwise the
// configured one.
func (s *Server) Addr() string {
	if addr := s.bound.Load(); addr != nil {
		return *addr
	}

	return s.srv.Addr
}

// limitBody answers 413 to bodies declared larger than limit and caps
// streamed ones at limit. A zero limit disables both.
func limitBody(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	details := map[string]string{"maxBytes": strconv.FormatInt(limit, 10)}

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			dto.Abort(c, http.StatusRequestEntityTooLarge,
				dto.NewErrorResponseWithDetails(dto.ErrorCodeBadRequest, "request body too large", details))

			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
