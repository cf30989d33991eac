package routes

import (
	"time"

	"pizza-backend/handlers"
	"pizza-backend/middleware"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	franchiseHandler := &handlers.FranchiseHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db}

	authLimiter := middleware.NewRateLimiter(20, time.Minute)

	api := r.Group("/api")
	{
		// Session lifecycle: POST registers, PUT logs in, DELETE logs out
		api.POST("/auth", authLimiter.Middleware(), authHandler.Register)
		api.PUT("/auth", authLimiter.Middleware(), authHandler.Login)

		// Public menu
		api.GET("/order/menu", orderHandler.GetMenu)

		// Public franchise list; fields are scoped to the caller's role
		api.GET("/franchise", middleware.OptionalAuthMiddleware(db), franchiseHandler.ListFranchises)
	}

	// Protected routes (require a live session)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(db))
	{
		protected.DELETE("/auth", authHandler.Logout)
		protected.GET("/user/me", authHandler.Me)
		protected.PUT("/user/:id", authHandler.UpdateUser)

		protected.GET("/franchise/:userId", franchiseHandler.ListUserFranchises)
		protected.POST("/franchise/:id/store", franchiseHandler.CreateStore)

		protected.POST("/order", orderHandler.CreateOrder)
		protected.GET("/order", orderHandler.ListOrders)
	}

	// Admin routes (require admin role)
	admin := api.Group("")
	admin.Use(middleware.AuthMiddleware(db))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.POST("/franchise", franchiseHandler.CreateFranchise)
		admin.DELETE("/franchise/:id", franchiseHandler.DeleteFranchise)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
