// Package http provides the HTTP adapter for the application layer. It is a
// thin translation layer: requests map to service calls and domain error
// kinds map to status codes.
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/soglasovach/soglasovach/internal/application/service"
	"github.com/soglasovach/soglasovach/internal/application/workflow"
	"github.com/soglasovach/soglasovach/internal/auth"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// Server is the HTTP server adapter
type Server struct {
	config     ServerConfig
	httpServer *http.Server
	router     *gin.Engine
	handlers   *Handlers
	logger     *zap.Logger
}

// NewServer creates a new HTTP server with the given services
func NewServer(
	config ServerConfig,
	templateService service.TemplateService,
	engine workflow.Engine,
	attachmentService service.AttachmentService,
	userService service.UserService,
	tokens *auth.TokenManager,
	logger *zap.Logger,
) *Server {
	gin.SetMode(gin.ReleaseMode)

	server := &Server{
		config:   config,
		router:   gin.New(),
		handlers: NewHandlers(templateService, engine, attachmentService, userService, tokens, logger),
		logger:   logger,
	}

	server.setupMiddleware()
	server.setupRoutes()

	return server
}

// setupMiddleware configures middleware for the router
func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(s.loggingMiddleware())
}

// loggingMiddleware creates a request logging middleware
func (s *Server) loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		s.logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.HealthCheck)

	authGroup := s.router.Group("/auth")
	{
		authGroup.POST("/register", s.handlers.Register)
		authGroup.POST("/token", s.handlers.Login)
	}

	authorized := s.handlers.AuthMiddleware()

	s.router.GET("/users/me", authorized, s.handlers.CurrentUser)

	api := s.router.Group("/api", authorized)
	{
		api.POST("/workflow_templates", s.handlers.CreateTemplate)
		api.GET("/workflow_templates", s.handlers.ListTemplates)
		api.GET("/workflow_templates/:id", s.handlers.GetTemplate)
		api.POST("/workflow_templates/:id/steps", s.handlers.AppendStep)
		api.GET("/workflow_steps/:id", s.handlers.GetStep)

		api.POST("/workflow_instances", s.handlers.CreateInstance)
		api.GET("/workflow_instances", s.handlers.ListInstances)
		api.GET("/workflow_instances/:id", s.handlers.GetInstance)
		api.POST("/workflow_instances/:id/approve", s.handlers.ApproveStep)
		api.POST("/workflow_instances/:id/reject", s.handlers.RejectStep)

		api.POST("/attachments/upload", s.handlers.UploadAttachment)
		api.GET("/attachments/:id/download", s.handlers.DownloadAttachment)
	}
}

// Start starts the HTTP server and blocks until ctx is cancelled or the
// server fails.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("Starting HTTP server", zap.String("address", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("HTTP server shutdown requested")
		return s.Stop()
	case err := <-errCh:
		s.logger.Error("HTTP server error", zap.Error(err))
		return err
	}
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.httpServer == nil {
		return nil
	}

	s.logger.Info("Stopping HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
		return err
	}

	s.logger.Info("HTTP server stopped")
	return nil
}

// Router returns the underlying gin router (for testing)
func (s *Server) Router() *gin.Engine {
	return s.router
}
