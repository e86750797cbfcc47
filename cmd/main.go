package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"pharmacy-inventory-service/internal/config"
	"pharmacy-inventory-service/internal/handlers"
	"pharmacy-inventory-service/internal/middleware"
	"pharmacy-inventory-service/internal/repository"
)

// @title Pharmacy Inventory API
// @version 1.0.0
// @description Inventory management service for pharmacies: product catalog, batches, stock levels and storage locations

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable is required")
	}

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	redisClient := redis.NewClient(redisOpts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("Redis connected successfully")
	}
	cancel()

	// Initialize repositories
	catalogRepo := repository.NewCatalogRepository(db, redisClient, logger)
	inventoryRepo := repository.NewInventoryRepository(db, logger)

	// Initialize handlers
	productsHandler := handlers.NewProductsHandler(catalogRepo, cfg, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo, logger)
	inventoryHandler := handlers.NewInventoryHandler(inventoryRepo, cfg, logger)
	stockHandler := handlers.NewStockHandler(inventoryRepo, logger)
	importHandler := handlers.NewImportHandler(catalogRepo, logger)
	healthHandler := handlers.NewHealthHandler(db, catalogRepo)

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/health/extended", healthHandler.ExtendedHealthCheck)

	// Role shortcuts for route gates
	read := middleware.RequireAnyRole(middleware.RoleViewer, middleware.RolePharmacist, middleware.RoleManager)
	write := middleware.RequireAnyRole(middleware.RolePharmacist, middleware.RoleManager)
	remove := middleware.RequireAnyRole(middleware.RoleManager)

	// Protected API routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		products := v1.Group("/products")
		{
			products.GET("", read, productsHandler.SearchProducts)
			products.GET("/:id", read, productsHandler.GetProduct)
			products.POST("", write, productsHandler.CreateProduct)
			products.PATCH("/:id", write, productsHandler.UpdateProduct)
			products.DELETE("/:id", remove, productsHandler.DeleteProduct)

			products.GET("/:id/categories", read, productsHandler.GetProductCategories)
			products.POST("/:id/categories/:categoryId", write, productsHandler.AddProductCategory)
			products.DELETE("/:id/categories/:categoryId", write, productsHandler.RemoveProductCategory)

			products.GET("/:id/ingredients", read, productsHandler.GetProductIngredients)
			products.POST("/:id/ingredients", write, productsHandler.UpsertProductIngredient)
			products.DELETE("/:id/ingredients/:ingredientId", write, productsHandler.RemoveProductIngredient)

			products.GET("/import/template", write, importHandler.GetImportTemplate)
			products.POST("/import", write, importHandler.ImportProducts)
			products.GET("/export", write, importHandler.ExportProducts)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", read, catalogHandler.ListCategories)
			categories.GET("/:id", read, catalogHandler.GetCategory)
			categories.POST("", write, catalogHandler.CreateCategory)
			categories.PATCH("/:id", write, catalogHandler.UpdateCategory)
			categories.DELETE("/:id", remove, catalogHandler.DeleteCategory)
		}

		ingredients := v1.Group("/ingredients")
		{
			ingredients.GET("", read, catalogHandler.ListIngredients)
			ingredients.GET("/:id", read, catalogHandler.GetIngredient)
			ingredients.POST("", write, catalogHandler.CreateIngredient)
			ingredients.PATCH("/:id", write, catalogHandler.UpdateIngredient)
			ingredients.DELETE("/:id", remove, catalogHandler.DeleteIngredient)
		}

		units := v1.Group("/measurement-units")
		{
			units.GET("", read, catalogHandler.ListMeasurementUnits)
			units.GET("/:id", read, catalogHandler.GetMeasurementUnit)
			units.POST("", write, catalogHandler.CreateMeasurementUnit)
			units.PATCH("/:id", write, catalogHandler.UpdateMeasurementUnit)
			units.DELETE("/:id", remove, catalogHandler.DeleteMeasurementUnit)
		}

		locations := v1.Group("/locations")
		{
			locations.GET("", read, inventoryHandler.SearchLocations)
			locations.GET("/:id", read, inventoryHandler.GetLocation)
			locations.POST("", write, inventoryHandler.CreateLocation)
			locations.PATCH("/:id", write, inventoryHandler.UpdateLocation)
			locations.DELETE("/:id", remove, inventoryHandler.DeleteLocation)

			locations.GET("/:id/shelves", read, inventoryHandler.ListLocationShelves)
			locations.GET("/:id/shelves/:shelfId", read, inventoryHandler.GetShelf)
			locations.POST("/:id/shelves", write, inventoryHandler.CreateShelf)
			locations.PATCH("/:id/shelves/:shelfId", write, inventoryHandler.UpdateShelf)
			locations.DELETE("/:id/shelves/:shelfId", remove, inventoryHandler.DeleteShelf)
		}

		batches := v1.Group("/batches")
		{
			batches.GET("", read, inventoryHandler.SearchBatches)
			batches.GET("/:id", read, inventoryHandler.GetBatch)
			batches.POST("", write, inventoryHandler.CreateBatch)
			batches.PATCH("/:id", write, inventoryHandler.UpdateBatch)
			batches.DELETE("/:id", remove, inventoryHandler.DeleteBatch)

			batches.GET("/:id/shelves", read, inventoryHandler.ListBatchAllocations)
			batches.POST("/:id/shelves", write, inventoryHandler.CreateAllocation)
			batches.PATCH("/:id/shelves/:allocationId", write, inventoryHandler.UpdateAllocation)
			batches.DELETE("/:id/shelves/:allocationId", remove, inventoryHandler.DeleteAllocation)
		}

		stockLevels := v1.Group("/stock-levels")
		{
			stockLevels.GET("", read, stockHandler.ListStockLevels)
			stockLevels.GET("/:id", read, stockHandler.GetStockLevel)
			stockLevels.POST("", write, stockHandler.CreateStockLevel)
			stockLevels.PATCH("/:id", write, stockHandler.UpdateStockLevel)
			stockLevels.DELETE("/:id", remove, stockHandler.DeleteStockLevel)
		}

		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", read, stockHandler.SearchSuppliers)
			suppliers.GET("/:id", read, stockHandler.GetSupplier)
			suppliers.POST("", write, stockHandler.CreateSupplier)
			suppliers.PATCH("/:id", write, stockHandler.UpdateSupplier)
			suppliers.DELETE("/:id", remove, stockHandler.DeleteSupplier)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Pharmacy inventory service starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down pharmacy-inventory-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Pharmacy inventory service stopped")
}
