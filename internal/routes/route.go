package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/dharamshala/internal/container"
	"github.com/joshua-takyi/dharamshala/internal/handlers"
	"github.com/joshua-takyi/dharamshala/internal/middleware"
	"github.com/joshua-takyi/dharamshala/internal/models"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	cfg := container.Config
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger, cfg.IsDevelopment()))
	r.Use(gin.Recovery())

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status":  "OK",
				"service": "dharamshala-api",
			})
		})

		// public routes
		api.POST("/register", handlers.Register(container.AccountService))
		api.POST("/login", handlers.Login(container.AccountService, cfg.IsProduction()))
		api.POST("/logout", handlers.Logout(cfg.IsProduction()))
		api.GET("/venues/:id", handlers.GetVenue(container.VenueService))
	}

	auth := middleware.AuthMiddleware(container.Validator, container.Accounts, container.Logger)
	protected := api.Group("/")
	protected.Use(auth)
	{
		protected.POST("/me", handlers.Me(container.AccountService))
	}

	venueRoutes := protected.Group("/venues")
	{
		venueRoutes.GET("", handlers.ListVenues(container.VenueService))
		venueRoutes.POST("", handlers.CreateVenue(container.VenueService))
		venueRoutes.PUT("", handlers.UpdateVenue(container.VenueService))
		venueRoutes.DELETE("/:id", handlers.DeleteVenue(container.VenueService))

		venueRoutes.POST("/:id/book", handlers.BookDates(container.BookingService))
		venueRoutes.POST("/:id/remove-book", handlers.UnbookDates(container.BookingService))

		venueRoutes.POST("/:id/inventory", handlers.AddInventoryItem(container.InventoryService))
		venueRoutes.PUT("/:id/inventory", handlers.UpdateInventoryItem(container.InventoryService))
		venueRoutes.DELETE("/:id/inventory/:itemId", handlers.RemoveInventoryItem(container.InventoryService))
	}

	adminRoutes := protected.Group("/admins")
	adminRoutes.Use(middleware.RequireRoles(models.RoleSuperAdmin))
	{
		adminRoutes.GET("", handlers.ListAccounts(container.AccountService))
		adminRoutes.GET("/dashboard", handlers.Dashboard(container.AccountService))
		adminRoutes.GET("/:id", handlers.GetAccount(container.AccountService))
		adminRoutes.PUT("/:id", handlers.UpdateAccount(container.AccountService))
		adminRoutes.DELETE("/:id", handlers.DeleteAccount(container.AccountService))
	}

	return r
}
