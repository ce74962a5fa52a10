package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	domainRepo "github.com/lmwati/dukapos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository
func NewPurchaseRepository(db *gorm.DB) domainRepo.PurchaseRepository {
	return &purchaseRepository{db: db}
}

// CreateWithItems inserts the purchase with its items, increments each
// product's current and lifetime stock, and overwrites the product's
// cost price with the received unit cost, all in one transaction.
func (r *purchaseRepository) CreateWithItems(ctx context.Context, purchase *entity.Purchase, increments map[uuid.UUID]int, unitCosts map[uuid.UUID]int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(purchase).Error; err != nil {
			return err
		}

		for productID, quantity := range increments {
			updates := map[string]interface{}{
				"current_stock": gorm.Expr("current_stock + ?", quantity),
				"total_stock":   gorm.Expr("total_stock + ?", quantity),
			}
			if cost, ok := unitCosts[productID]; ok {
				updates["cost_price"] = cost
			}
			result := tx.Model(&entity.Product{}).
				Where("id = ? AND shop_id = ?", productID, purchase.ShopID).
				Updates(updates)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return domainRepo.ErrNotFound
			}
		}
		return nil
	})
}

// DeleteReversingStock removes the purchase and decrements the received
// quantities back out. The decrement is guarded: stock already sold on
// cannot be pulled below zero.
func (r *purchaseRepository) DeleteReversingStock(ctx context.Context, shopID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var purchase entity.Purchase
		if err := tx.Scopes(ShopScope(shopID)).
			Preload("Items").
			First(&purchase, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrNotFound
			}
			return err
		}

		var failedIDs []uuid.UUID
		for _, item := range purchase.Items {
			ok, err := decrementStock(tx, shopID, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				failedIDs = append(failedIDs, item.ProductID)
			}
		}
		if len(failedIDs) > 0 {
			return &domainRepo.InsufficientStockError{ProductIDs: failedIDs}
		}

		if err := tx.Where("purchase_id = ?", purchase.ID).
			Delete(&entity.PurchaseItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&purchase).Error
	})
}

func (r *purchaseRepository) GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Purchase, error) {
	var purchase entity.Purchase
	err := r.db.WithContext(ctx).Scopes(ShopScope(shopID)).
		Preload("Items").Preload("Supplier").
		First(&purchase, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &purchase, err
}

func (r *purchaseRepository) List(ctx context.Context, shopID uuid.UUID, params *domainRepo.PurchaseFilterParams) ([]entity.Purchase, int64, error) {
	var purchases []entity.Purchase
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Purchase{}).Scopes(ShopScope(shopID))

	if params.Search != "" {
		query = query.Where("purchase_no ILIKE ?", "%"+params.Search+"%")
	}
	if params.SupplierID != nil {
		query = query.Where("supplier_id = ?", *params.SupplierID)
	}
	if params.StartDate != nil {
		query = query.Where("received_at >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("received_at <= ?", *params.EndDate)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "received_at"
	sortOrder := "DESC"
	switch params.SortBy {
	case "received_at", "total_amount", "created_at":
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").Preload("Supplier").
		Order(sortBy + " " + sortOrder).
		Find(&purchases).Error

	return purchases, total, err
}
