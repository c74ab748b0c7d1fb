// Package api serves the indexed entities over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"minorityScope/internal/storage"
)

// Config holds the HTTP server settings.
type Config struct {
	Debug        bool
	Listen       string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Server wraps the HTTP server.
type Server struct {
	config     Config
	reader     storage.Reader
	logger     *zap.Logger
	httpServer *http.Server
}

func New(cfg Config, reader storage.Reader, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = 10 * time.Second
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	s := &Server{config: cfg, reader: reader, logger: logger}
	s.httpServer = &http.Server{
		Addr:         cfg.Listen,
		Handler:      s.Router(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router builds the gin engine with middleware and routes.
func (s *Server) Router() *gin.Engine {
	if s.config.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(recovery(s.logger))
	router.Use(requestLogger(s.logger))

	setupRoutes(router, &handler{reader: s.reader, logger: s.logger})
	return router
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("starting api server", zap.String("address", s.config.Listen))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down api server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}

func setupRoutes(router *gin.Engine, h *handler) {
	router.GET("/health", h.health)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/stats", h.systemStats)
		v1.GET("/networks/:chain/stats", h.networkStats)
		v1.GET("/field-policies", h.fieldPolicies)

		v1.GET("/entities/:kind", h.listEntities)
		v1.GET("/entities/:kind/:chain/:id", h.getEntity)
	}
}
