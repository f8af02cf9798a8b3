// Package server exposes the websocket endpoint and operational routes over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/amoylab/huddle/internal/common/config"
	"github.com/amoylab/huddle/internal/transport/ws"
	"github.com/amoylab/huddle/pkg/metrics"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

type Server struct {
	logger     *zap.Logger
	cfg        *config.HuddleConfig
	router     *gin.Engine
	httpServer *http.Server
	hub        *ws.Hub
	metrics    *metrics.Metrics
}

// NewServer builds the router; m may be nil to run without metrics
func NewServer(logger *zap.Logger, cfg *config.HuddleConfig, hub *ws.Hub, inbox ws.Inbox, m *metrics.Metrics) *Server {
	s := &Server{
		logger:  logger.Named("server"),
		cfg:     cfg,
		router:  gin.New(),
		hub:     hub,
		metrics: m,
	}

	s.router.Use(s.recoveryMiddleware(), s.loggerMiddleware())
	if m != nil {
		s.router.Use(m.Middleware())
	}
	if cfg.Tracing.Enabled {
		s.router.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	s.registerRoutes(inbox)

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: s.router,
	}
	return s
}

func (s *Server) registerRoutes(inbox ws.Inbox) {
	s.router.GET("/health_check", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}
	s.router.GET("/ws", s.hub.HandleWebSocket(inbox))
}

// Handler returns the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start binds the listener and serves in the background
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	s.logger.Info("listening", zap.String("addr", ln.Addr().String()))

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	}()
	return nil
}

// Shutdown closes websocket connections and stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")
	s.hub.Shutdown()
	return s.httpServer.Shutdown(ctx)
}
