package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/lmwati/dukapos-api/internal/application/service"
	"github.com/lmwati/dukapos-api/internal/config"
	"github.com/lmwati/dukapos-api/internal/infrastructure/database"
	"github.com/lmwati/dukapos-api/internal/infrastructure/repository"
	"github.com/lmwati/dukapos-api/internal/presentation/http/handler"
	"github.com/lmwati/dukapos-api/internal/presentation/http/routes"
	"github.com/lmwati/dukapos-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Optionally seed a first shop and owner account
	if err := database.SeedOwner(db, &cfg.Seed); err != nil {
		log.Printf("Warning: Failed to seed owner account: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	shopRepo := repository.NewShopRepository(db)
	productRepo := repository.NewProductRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	supplierRepo := repository.NewSupplierRepository(db)
	reportRepo := repository.NewReportRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, shopRepo, jwtManager)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	orderService := service.NewOrderService(orderRepo, productRepo)
	purchaseService := service.NewPurchaseService(purchaseRepo, productRepo, supplierRepo)
	supplierService := service.NewSupplierService(supplierRepo)
	reportService := service.NewReportService(reportRepo, orderRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Order:    handler.NewOrderHandler(orderService),
		Purchase: handler.NewPurchaseHandler(purchaseService),
		Supplier: handler.NewSupplierHandler(supplierService),
		Report:   handler.NewReportHandler(reportService),
	}

	// Setup router
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Start server
	port := cfg.App.Port
	if envPort := os.Getenv("PORT"); envPort != "" {
		port = envPort
	}

	log.Printf("Starting %s on port %s", cfg.App.Name, port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
