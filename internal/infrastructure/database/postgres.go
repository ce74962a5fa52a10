package database

import (
	"fmt"
	"log"

	"github.com/lmwati/dukapos-api/internal/config"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/utils"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	logLevel := logger.Info

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN(),
		PreferSimpleProtocol: true, // disables implicit prepared statement usage
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying SQL DB to set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Println("Successfully connected to PostgreSQL database")
	return db, nil
}

// AutoMigrate runs GORM auto-migration for all entities
func AutoMigrate(db *gorm.DB) error {
	log.Println("Running database migrations...")

	err := db.AutoMigrate(
		&entity.Shop{},
		&entity.User{},

		&entity.Category{},
		&entity.Product{},
		&entity.Supplier{},

		&entity.Order{},
		&entity.OrderItem{},
		&entity.Purchase{},
		&entity.PurchaseItem{},

		&entity.IdempotencyKey{},
	)

	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// SeedOwner bootstraps a first shop and owner account on an empty
// database when configured. Existing accounts are left untouched.
func SeedOwner(db *gorm.DB, cfg *config.SeedConfig) error {
	if cfg.OwnerEmail == "" || cfg.OwnerPassword == "" {
		return nil
	}

	var existing entity.User
	if err := db.Where("email = ?", cfg.OwnerEmail).First(&existing).Error; err == nil {
		log.Printf("Seed owner already exists: %s", cfg.OwnerEmail)
		return nil
	}

	hashed, err := utils.HashPassword(cfg.OwnerPassword)
	if err != nil {
		return fmt.Errorf("failed to hash seed owner password: %w", err)
	}

	shopName := cfg.ShopName
	if shopName == "" {
		shopName = "Main Shop"
	}

	return db.Transaction(func(tx *gorm.DB) error {
		shop := entity.Shop{
			Name: shopName,
			Slug: utils.Slugify(shopName),
		}
		if err := tx.Create(&shop).Error; err != nil {
			return err
		}

		owner := entity.User{
			ShopID:    shop.ID,
			FirstName: "Shop",
			LastName:  "Owner",
			Email:     cfg.OwnerEmail,
			Password:  hashed,
			Role:      entity.RoleOwner,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		log.Printf("Seed owner created: %s (shop %s)", owner.Email, shop.Slug)
		return nil
	})
}
