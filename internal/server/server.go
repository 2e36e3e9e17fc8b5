// Package server exposes a digest run over HTTP.
package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"time"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/aleister1102/grcdigest/internal/orchestrator"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// DigestRunner runs one digest pass.
type DigestRunner interface {
	Run(ctx context.Context) (*orchestrator.RunResult, error)
}

// Server is the HTTP entry point for on-demand digest runs.
type Server struct {
	cfg    config.ServerConfig
	runner DigestRunner
	router *gin.Engine
	http   *http.Server
	logger zerolog.Logger
}

// NewServer creates a new Server and registers its routes.
func NewServer(cfg config.ServerConfig, runner DigestRunner, logger zerolog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:    cfg,
		runner: runner,
		router: router,
		logger: logger.With().Str("module", "Server").Logger(),
	}
	router.Use(s.requestLogger())

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.Use(s.requireToken())
	{
		api.POST("/digest", s.handleDigest)
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddress,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSecs) * time.Second,
	}
	return s
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("address", s.cfg.ListenAddress).Msg("HTTP server listening")
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) requireToken() gin.HandlerFunc {
	expected := []byte(s.cfg.AuthToken)
	return func(c *gin.Context) {
		got := []byte(c.GetHeader(s.cfg.AuthHeader))
		if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
			s.logger.Warn().Str("remote_addr", c.ClientIP()).Msg("Rejected request with invalid auth token")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("Request handled")
	}
}
