// Package api serves the HTTP surface: health, metrics, and the MCP
// WebSocket endpoint.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/developer-mesh/gitee-mcp/internal/config"
	"github.com/developer-mesh/gitee-mcp/internal/mcp"
	"github.com/developer-mesh/gitee-mcp/internal/observability"
	"github.com/developer-mesh/gitee-mcp/internal/tools"
	"github.com/developer-mesh/gitee-mcp/internal/tracing"
)

// Options carries the collaborators of a Server
type Options struct {
	Logger   observability.Logger
	Tracer   *tracing.TracerProvider
	Gatherer prometheus.Gatherer
	Version  string
	// OriginPatterns lists hosts allowed to open cross-origin WebSockets
	OriginPatterns []string
}

// Server represents the API server
type Server struct {
	router   *gin.Engine
	server   *http.Server
	handler  *mcp.Handler
	registry *tools.Registry
	config   config.ServerConfig
	opts     Options
	started  time.Time
}

// NewServer creates a new API server
func NewServer(cfg config.ServerConfig, handler *mcp.Handler, registry *tools.Registry, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.NewNoopLogger()
	}
	opts.Logger = opts.Logger.WithPrefix("api")
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(opts.Logger))
	router.Use(TracingMiddleware(opts.Tracer))

	s := &Server{
		router:   router,
		handler:  handler,
		registry: registry,
		config:   cfg,
		opts:     opts,
		started:  time.Now(),
		server: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))
	s.router.GET("/ws", s.websocketHandler)
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Addr is the listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start listens until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start() error {
	s.opts.Logger.Info("HTTP server listening", map[string]interface{}{
		"addr": s.server.Addr,
	})
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for handlers to finish
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"version": s.opts.Version,
		"tools":   s.registry.Count(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) websocketHandler(c *gin.Context) {
	// server timeouts bound plain requests, not long-lived sessions
	rc := http.NewResponseController(c.Writer)
	_ = rc.SetReadDeadline(time.Time{})
	_ = rc.SetWriteDeadline(time.Time{})

	s.handler.ServeWebSocket(c.Writer, c.Request, mcp.WebSocketOptions{
		MaxConcurrent:  s.config.MaxConcurrent,
		OriginPatterns: s.opts.OriginPatterns,
	})
}
