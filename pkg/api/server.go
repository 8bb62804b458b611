// Package api exposes the HTTP control plane: submitting runs, reading
// their history and output, and inspecting the cluster.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"armada/pkg/api/middleware"
	"armada/pkg/auth"
	"armada/pkg/coordination"
	"armada/pkg/logger"
	"armada/pkg/logsink"
	"armada/pkg/storage"
)

// Server encapsulates the HTTP API server and its dependencies.
type Server struct {
	router     *gin.Engine
	httpServer *http.Server

	runStore    storage.RunStore
	queue       storage.Queue
	outputs     storage.OutputStore
	coordinator coordination.Coordinator
	election    coordination.Election
	sink        *logsink.Sink
	validator   *middleware.Validator
}

// Config holds API server configuration.
type Config struct {
	Port        string
	RunStore    storage.RunStore
	Queue       storage.Queue
	Outputs     storage.OutputStore
	Coordinator coordination.Coordinator
	Election    coordination.Election
	Sink        *logsink.Sink

	// Optional authentication; both nil disables auth entirely.
	JWTService  *auth.JWTService
	APIKeyStore auth.APIKeyStore
}

// NewServer creates a new API server with all dependencies.
func NewServer(cfg Config) *Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware stack (order matters)
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.TracingMiddleware("armada-api"))
	router.Use(middleware.MetricsMiddleware())
	router.Use(requestLogger())
	router.Use(middleware.RateLimitMiddleware())
	router.Use(middleware.BodySizeLimitMiddleware(1 << 20)) // 1MB body limit

	if cfg.JWTService != nil || cfg.APIKeyStore != nil {
		router.Use(middleware.AuthMiddleware(middleware.AuthConfig{
			JWTService:  cfg.JWTService,
			APIKeyStore: cfg.APIKeyStore,
			SkipPaths:   []string{"/health", "/metrics"},
		}))
	}

	s := &Server{
		router:      router,
		runStore:    cfg.RunStore,
		queue:       cfg.Queue,
		outputs:     cfg.Outputs,
		coordinator: cfg.Coordinator,
		election:    cfg.Election,
		sink:        cfg.Sink,
		validator:   middleware.NewValidator(middleware.DefaultValidatorConfig()),
	}

	s.registerRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests driving requests directly.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	logger.Info("api server starting", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("api server shutting down")
	return s.httpServer.Shutdown(ctx)
}

// registerRoutes sets up all API endpoints.
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthCheck)

	// Prometheus metrics endpoint
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.POST("", s.createRun)
			runs.GET("", s.listRuns)
			runs.GET("/:id", s.getRun)
			runs.GET("/:id/output", s.getRunOutput)
		}

		logs := v1.Group("/logs")
		{
			logs.POST("", s.postLogLine)
			logs.GET("/components", s.listComponents)
		}

		cluster := v1.Group("/cluster")
		{
			cluster.GET("/nodes", s.listNodes)
			cluster.GET("/leader", s.getLeader)
		}
	}
}

// requestLogger logs HTTP requests through the structured logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

// healthCheck returns server health status with dependency checks.
func (s *Server) healthCheck(c *gin.Context) {
	deps := map[string]bool{
		"postgres": s.runStore != nil,
		"redis":    s.queue != nil,
		"etcd":     s.coordinator != nil,
	}

	healthy := true
	for _, ok := range deps {
		if !ok {
			healthy = false
			break
		}
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":       status,
		"dependencies": deps,
		"timestamp":    time.Now().UTC(),
	})
}
