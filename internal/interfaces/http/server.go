// internal/interfaces/http/server.go
package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/anomaly"
	"github.com/your-org/branchops-backend/internal/domain/branch"
	"github.com/your-org/branchops-backend/internal/domain/inventory"
	"github.com/your-org/branchops-backend/internal/domain/notification"
	"github.com/your-org/branchops-backend/internal/domain/request"
	"github.com/your-org/branchops-backend/internal/domain/user"
	redisdb "github.com/your-org/branchops-backend/internal/infrastructure/database/redis"
	"github.com/your-org/branchops-backend/internal/interfaces/http/handlers"
	"github.com/your-org/branchops-backend/internal/interfaces/http/middleware"
	"github.com/your-org/branchops-backend/internal/interfaces/http/routes"
	"github.com/your-org/branchops-backend/internal/pkg/license"
	"github.com/your-org/branchops-backend/internal/pkg/pdf"
	"gorm.io/gorm"
)

// Server represents the HTTP server
type Server struct {
	config      *config.Config
	gin         *gin.Engine
	httpServer  *http.Server
	db          *gorm.DB
	redisClient *redisdb.Client
	logger      *logrus.Logger
	startedAt   time.Time
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redisdb.Client, logger *logrus.Logger) *Server {
	return &Server{
		config:      cfg,
		db:          db,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	// Set Gin mode based on environment
	if s.config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	s.gin = gin.New()
	s.startedAt = time.Now().UTC()

	s.setupMiddleware()
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Server.Port,
		Handler:      s.gin,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	log.Printf("HTTP server starting on port %s", s.config.Server.Port)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	log.Println("Shutting down HTTP server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	log.Println("HTTP server stopped gracefully")
	return nil
}

// setupMiddleware configures all middleware for the server
func (s *Server) setupMiddleware() {
	// Recovery middleware - recover from panics
	s.gin.Use(gin.Recovery())

	// Custom logger middleware
	s.gin.Use(middleware.Logger(s.config))

	// Request ID middleware
	s.gin.Use(middleware.RequestID())

	// CORS middleware
	s.gin.Use(middleware.CORS(s.config))

	// Security headers middleware
	s.gin.Use(middleware.SecurityHeaders())

	// Rate limiting middleware
	s.gin.Use(middleware.RateLimit(s.config, s.redisClient.GetClient()))

	// Request size limit middleware
	s.gin.Use(middleware.RequestSizeLimit(10 << 20)) // 10MB limit

	// Timeout middleware
	s.gin.Use(middleware.Timeout(30 * time.Second))
}

// setupRoutes wires the domain services into handlers and registers routes
func (s *Server) setupRoutes() {
	// Health check endpoints (no auth required)
	s.gin.GET("/health", s.healthCheck)
	s.gin.GET("/ready", s.readinessCheck)

	gate := license.NewConfigGate(s.config)

	// Domain services
	notificationService := notification.NewService(s.db, s.logger)
	inventoryService := inventory.NewService(s.db, s.config)
	branchService := branch.NewService(s.db, s.config)
	userService := user.NewService(s.db, s.config)
	requestService := request.NewService(s.db, s.config, inventoryService, notificationService)
	anomalyService := anomaly.NewService(s.db, s.config, s.redisClient, gate, notificationService)
	pdfService := pdf.NewService(s.config)

	h := &routes.Handlers{
		Auth:         handlers.NewAuthHandler(userService, s.config),
		Branch:       handlers.NewBranchHandler(branchService, s.config),
		Inventory:    handlers.NewInventoryHandler(inventoryService, s.config),
		Request:      handlers.NewRequestHandler(requestService, anomalyService, branchService, pdfService, s.config),
		Anomaly:      handlers.NewAnomalyHandler(anomalyService, s.config),
		Notification: handlers.NewNotificationHandler(notificationService, s.config),
	}

	apiV1 := s.gin.Group("/api/v1")
	routes.SetupRoutes(apiV1, h, gate, s.config)

	if s.config.IsDevelopment() {
		s.gin.GET("/", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"message":     "BranchOps API",
				"version":     s.config.App.Version,
				"environment": s.config.App.Environment,
				"health":      "/health",
				"endpoints": gin.H{
					"auth":          "/api/v1/auth",
					"branches":      "/api/v1/branches",
					"products":      "/api/v1/products",
					"requests":      "/api/v1/requests",
					"queries":       "/api/v1/queries",
					"notifications": "/api/v1/notifications",
				},
			})
		})
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	sqlDB, err := s.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database connection error",
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database ping failed",
		})
		return
	}

	if err := s.redisClient.Health(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "redis ping failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"version":     s.config.App.Version,
		"environment": s.config.App.Environment,
	})
}

// readinessCheck handles readiness check requests
func (s *Server) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.startedAt).String(),
	})
}
