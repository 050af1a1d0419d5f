// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	adminAccessHTTP "github.com/allisson/chatseal/internal/adminaccess/http"
	adminAccessService "github.com/allisson/chatseal/internal/adminaccess/service"
	"github.com/allisson/chatseal/internal/config"
	conversationHTTP "github.com/allisson/chatseal/internal/conversation/http"
	"github.com/allisson/chatseal/internal/metrics"
)

// Server represents the HTTP server.
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// NewServer creates a new HTTP server. Call SetupRouter before Start.
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers middlewares and routes.
//
// Routes:
//   - GET /health, GET /ready
//   - /v1/admin/* guarded by the admin API key
//   - POST /v1/admin-access/authorize, public and rate limited per IP
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	adminAccessHandler *adminAccessHTTP.AdminAccessHandler,
	adminReadHandler *conversationHTTP.AdminReadHandler,
	adminKeyService adminAccessService.AdminKeyService,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")

	admin := v1.Group("/admin")
	admin.Use(adminAccessHTTP.AdminAuthenticationMiddleware(cfg.AdminAPIKeyHash, adminKeyService, s.logger))
	{
		admin.POST("/users/:user_id/access-requests", adminAccessHandler.RequestAccessHandler)
		admin.GET("/users/:user_id/access", adminAccessHandler.StatusHandler)
		admin.DELETE("/users/:user_id/access", adminAccessHandler.RevokeHandler)
		admin.GET("/users/:user_id/conversations", adminReadHandler.ListUserConversationsHandler)
		admin.GET("/conversations/:conversation_id/messages", adminReadHandler.ListConversationMessagesHandler)
	}

	authorize := v1.Group("/admin-access")
	if cfg.RateLimitAuthorizeEnabled {
		authorize.Use(adminAccessHTTP.AuthorizeRateLimitMiddleware(
			ctx,
			cfg.RateLimitAuthorizeRequestsPerSec,
			cfg.RateLimitAuthorizeBurst,
			s.logger,
		))
	}
	authorize.POST("/authorize", adminAccessHandler.AuthorizeHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler pings the database with a short timeout.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}
