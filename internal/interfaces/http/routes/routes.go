// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/your-org/branchops-backend/internal/config"
	"github.com/your-org/branchops-backend/internal/domain/user"
	"github.com/your-org/branchops-backend/internal/interfaces/http/handlers"
	"github.com/your-org/branchops-backend/internal/interfaces/http/middleware"
	"github.com/your-org/branchops-backend/internal/pkg/license"
)

// Handlers bundles the endpoint handlers wired by the server
type Handlers struct {
	Auth         *handlers.AuthHandler
	Branch       *handlers.BranchHandler
	Inventory    *handlers.InventoryHandler
	Request      *handlers.RequestHandler
	Anomaly      *handlers.AnomalyHandler
	Notification *handlers.NotificationHandler
}

// SetupRoutes registers all API routes
func SetupRoutes(rg *gin.RouterGroup, h *Handlers, gate license.Gate, cfg *config.Config) {
	setupAuthRoutes(rg, h, cfg)
	setupBranchRoutes(rg, h, cfg)
	setupProductRoutes(rg, h, cfg)
	setupRequestRoutes(rg, h, gate, cfg)
	setupQueryRoutes(rg, h, gate, cfg)
	setupNotificationRoutes(rg, h, cfg)
}

// setupAuthRoutes sets up authentication related routes
func setupAuthRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	auth := rg.Group("/auth")
	{
		// Public auth endpoints
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.RefreshToken)

		// Protected auth endpoints
		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", h.Auth.GetProfile)
		}
	}

	// Account provisioning is admin only
	users := rg.Group("/users")
	users.Use(middleware.AuthMiddleware(cfg))
	users.Use(middleware.RequireRoles(string(user.RoleAdmin)))
	{
		users.POST("", h.Auth.CreateUser)
	}
}

// setupBranchRoutes sets up branch related routes
func setupBranchRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	branches := rg.Group("/branches")
	branches.Use(middleware.AuthMiddleware(cfg))
	{
		branches.GET("", h.Branch.GetBranches)
		branches.GET("/:id", h.Branch.GetBranch)

		admin := branches.Group("")
		admin.Use(middleware.RequireRoles(string(user.RoleAdmin)))
		{
			admin.POST("", h.Branch.CreateBranch)
		}
	}
}

// setupProductRoutes sets up warehouse catalog routes
func setupProductRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	products := rg.Group("/products")
	products.Use(middleware.AuthMiddleware(cfg))
	{
		products.GET("", h.Inventory.GetProducts)
		products.GET("/:id", h.Inventory.GetProduct)
		products.GET("/:id/movements", h.Inventory.GetMovements)

		// Catalog and stock mutations are warehouse side
		warehouse := products.Group("")
		warehouse.Use(middleware.RequireRoles(string(user.RoleWarehouseManager), string(user.RoleAdmin)))
		{
			warehouse.POST("", h.Inventory.CreateProduct)
			warehouse.POST("/:id/restock", h.Inventory.Restock)
		}
	}
}

// setupRequestRoutes sets up stock request routes
func setupRequestRoutes(rg *gin.RouterGroup, h *Handlers, gate license.Gate, cfg *config.Config) {
	requests := rg.Group("/requests")
	requests.Use(middleware.AuthMiddleware(cfg))
	{
		requests.POST("", h.Request.Submit)
		requests.GET("", h.Request.List)
		requests.GET("/:id", h.Request.Get)
		requests.GET("/:id/summary.pdf", h.Request.GetSummaryPDF)

		// Reviewing is warehouse side
		warehouse := requests.Group("")
		warehouse.Use(middleware.RequireRoles(string(user.RoleWarehouseManager), string(user.RoleAdmin)))
		{
			warehouse.POST("/:id/review", h.Request.Review)

			anomalies := warehouse.Group("")
			anomalies.Use(middleware.RequireFeature(gate, license.FeatureAnomalyDetection))
			{
				anomalies.GET("/:id/anomalies", h.Request.GetAnomalies)
			}
		}
	}
}

// setupQueryRoutes sets up anomaly query routes
func setupQueryRoutes(rg *gin.RouterGroup, h *Handlers, gate license.Gate, cfg *config.Config) {
	queries := rg.Group("/queries")
	queries.Use(middleware.AuthMiddleware(cfg))
	queries.Use(middleware.RequireFeature(gate, license.FeatureQuerySystem))
	{
		queries.GET("", h.Anomaly.ListQueries)
		queries.GET("/:id", h.Anomaly.GetQuery)

		// Branches answer; the warehouse asks
		queries.POST("/:id/respond", h.Anomaly.Respond)

		warehouse := queries.Group("")
		warehouse.Use(middleware.RequireRoles(string(user.RoleWarehouseManager), string(user.RoleAdmin)))
		{
			warehouse.POST("", h.Anomaly.CreateQuery)
		}
	}
}

// setupNotificationRoutes sets up notification routes
func setupNotificationRoutes(rg *gin.RouterGroup, h *Handlers, cfg *config.Config) {
	notifications := rg.Group("/notifications")
	notifications.Use(middleware.AuthMiddleware(cfg))
	{
		notifications.GET("", h.Notification.List)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
		notifications.PUT("/read-all", h.Notification.MarkAllRead)
	}
}
