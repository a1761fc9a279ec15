package main

import (
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/amara-atelier/atelier-orders-api/config"
	"github.com/amara-atelier/atelier-orders-api/controllers"
	"github.com/amara-atelier/atelier-orders-api/middleware"
	"github.com/amara-atelier/atelier-orders-api/models"
	"github.com/amara-atelier/atelier-orders-api/services"
)

func main() {
	// Basic logging
	log.Println("Starting Atelier Orders API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	config.SetConfig(cfg)

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusHistoryEntry{},
		&models.Tailor{},
		&models.ProductionQueueEntry{},
		&models.ProductionNote{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Initialize S3-backed image storage when a bucket is configured
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service()
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
		log.Printf("Design image uploads backed by S3 bucket %s", cfg.AWSS3Bucket)
	} else {
		log.Println("AWS_S3_BUCKET not set, design images stored locally")
	}

	router := setupRouter(cfg)

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// setupRouter builds the gin engine with all middleware and routes
func setupRouter(cfg *config.Config) *gin.Engine {
	router := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	v1 := router.Group("/api/v1")
	{
		// Public endpoints
		v1.GET("/health", healthCheck)
		v1.GET("/database/status", databaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		// Authenticated endpoints
		authed := v1.Group("")
		authed.Use(middleware.EnsureValidToken(cfg))
		{
			authed.POST("/users", controllers.CreateUser)
			authed.GET("/users/me", controllers.GetCurrentUser)
			authed.PUT("/users/me", controllers.UpdateCurrentUser)

			authed.POST("/orders", controllers.CreateOrder)
			authed.GET("/orders", controllers.ListOrders)
			authed.GET("/orders/:id", controllers.GetOrder)
			authed.POST("/orders/:id/cancel", controllers.CancelOrder)

			authed.POST("/uploads/design", controllers.UploadDesignImage)

			// Staff endpoints
			staff := authed.Group("")
			staff.Use(middleware.RequireRole("admin"))
			{
				staff.PATCH("/orders/:id/status", controllers.UpdateOrderStatus)
				staff.POST("/orders/:id/verify-payment", controllers.VerifyPayment)
				staff.DELETE("/orders/:id", controllers.DeleteOrder)

				staff.POST("/tailors", controllers.CreateTailor)
			}

			// Production endpoints are shared between admins and tailors
			production := authed.Group("")
			production.Use(middleware.RequireRole("admin", "tailor"))
			{
				production.POST("/production", controllers.EnqueueOrder)
				production.GET("/production", controllers.ListProduction)
				production.GET("/production/:id", controllers.GetProductionEntry)
				production.PATCH("/production/:id/status", controllers.AdvanceProductionStatus)
				production.POST("/production/:id/assign", controllers.AssignTailor)
				production.PATCH("/production/bulk-status", controllers.BulkUpdateProductionStatus)
				production.POST("/production/:id/notes", controllers.AddProductionNote)

				production.GET("/tailors", controllers.ListTailors)
			}
		}
	}

	return router
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Atelier Orders API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()
	if db == nil {
		respondErrorJSON(c, http.StatusServiceUnavailable, "DATABASE_NOT_CONNECTED", "Database is not connected")
		return
	}

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		respondErrorJSON(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get database instance")
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.Ping(); err != nil {
		respondErrorJSON(c, http.StatusInternalServerError, "DATABASE_CONNECTION_ERROR", "Database connection failed")
		return
	}

	// Get list of tables
	var tables []string
	if err := db.Raw("SELECT tablename FROM pg_tables WHERE schemaname = 'public'").Scan(&tables).Error; err != nil {
		respondErrorJSON(c, http.StatusInternalServerError, "DATABASE_QUERY_ERROR", "Failed to query tables")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}

func respondErrorJSON(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
