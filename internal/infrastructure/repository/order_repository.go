package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	domainRepo "github.com/lmwati/dukapos-api/internal/domain/repository"
	"gorm.io/gorm"
)

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) domainRepo.OrderRepository {
	return &orderRepository{db: db}
}

// decrementStock applies a guarded atomic decrement:
// UPDATE products SET current_stock = current_stock - q
// WHERE id = ? AND shop_id = ? AND current_stock >= q.
// Zero rows affected means insufficient stock (or a missing product).
func decrementStock(tx *gorm.DB, shopID, productID uuid.UUID, quantity int) (bool, error) {
	result := tx.Model(&entity.Product{}).
		Where("id = ? AND shop_id = ? AND current_stock >= ?", productID, shopID, quantity).
		Update("current_stock", gorm.Expr("current_stock - ?", quantity))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// incrementStock restores quantity to a product. Products deleted since
// the sale are skipped: restoring to a vanished row is a no-op.
func incrementStock(tx *gorm.DB, shopID, productID uuid.UUID, quantity int) error {
	return tx.Model(&entity.Product{}).
		Where("id = ? AND shop_id = ?", productID, shopID).
		Update("current_stock", gorm.Expr("current_stock + ?", quantity)).Error
}

// CreateWithItems inserts the order and its items and decrements stock,
// all in one transaction. Any failed guard rolls everything back.
func (r *orderRepository) CreateWithItems(ctx context.Context, order *entity.Order, decrements map[uuid.UUID]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		var failedIDs []uuid.UUID
		for productID, quantity := range decrements {
			ok, err := decrementStock(tx, order.ShopID, productID, quantity)
			if err != nil {
				return err
			}
			if !ok {
				failedIDs = append(failedIDs, productID)
			}
		}
		if len(failedIDs) > 0 {
			return &domainRepo.InsufficientStockError{ProductIDs: failedIDs}
		}
		return nil
	})
}

// UpdateWithStockDeltas persists an edited order in one transaction.
// A positive delta restores stock; a negative delta is a guarded
// decrement of the additional quantity sold.
func (r *orderRepository) UpdateWithStockDeltas(ctx context.Context, order *entity.Order, items []entity.OrderItem, removeIDs []uuid.UUID, deltas map[uuid.UUID]int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entity.Order{}).
			Where("id = ? AND shop_id = ?", order.ID, order.ShopID).
			Updates(map[string]interface{}{
				"total_items":     order.TotalItems,
				"subtotal":        order.Subtotal,
				"discount_amount": order.DiscountAmount,
				"discount_type":   order.DiscountType,
				"total_amount":    order.TotalAmount,
			}).Error; err != nil {
			return err
		}

		for i := range items {
			item := &items[i]
			if err := tx.Model(&entity.OrderItem{}).
				Where("id = ? AND order_id = ?", item.ID, order.ID).
				Updates(map[string]interface{}{
					"quantity":   item.Quantity,
					"discount":   item.Discount,
					"line_total": item.LineTotal,
				}).Error; err != nil {
				return err
			}
		}

		if len(removeIDs) > 0 {
			if err := tx.Where("id IN ? AND order_id = ?", removeIDs, order.ID).
				Delete(&entity.OrderItem{}).Error; err != nil {
				return err
			}
		}

		var failedIDs []uuid.UUID
		for productID, delta := range deltas {
			switch {
			case delta > 0:
				if err := incrementStock(tx, order.ShopID, productID, delta); err != nil {
					return err
				}
			case delta < 0:
				ok, err := decrementStock(tx, order.ShopID, productID, -delta)
				if err != nil {
					return err
				}
				if !ok {
					failedIDs = append(failedIDs, productID)
				}
			}
		}
		if len(failedIDs) > 0 {
			return &domainRepo.InsufficientStockError{ProductIDs: failedIDs}
		}
		return nil
	})
}

// DeleteRestoringStock restores every item's quantity and deletes the
// order. The load and the restore share one transaction so a concurrent
// second delete observes either the order or nothing.
func (r *orderRepository) DeleteRestoringStock(ctx context.Context, shopID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var order entity.Order
		if err := tx.Scopes(ShopScope(shopID)).
			Preload("Items").
			First(&order, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainRepo.ErrNotFound
			}
			return err
		}

		for _, item := range order.Items {
			if err := incrementStock(tx, shopID, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Where("order_id = ?", order.ID).
			Delete(&entity.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
}

func (r *orderRepository) GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Scopes(ShopScope(shopID)).
		Preload("Items").
		First(&order, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func (r *orderRepository) GetByOrderNo(ctx context.Context, shopID uuid.UUID, orderNo string) (*entity.Order, error) {
	var order entity.Order
	err := r.db.WithContext(ctx).Scopes(ShopScope(shopID)).
		Preload("Items").
		First(&order, "order_no = ?", orderNo).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &order, err
}

func applyOrderFilters(query *gorm.DB, search string, startDate, endDate *time.Time) *gorm.DB {
	if search != "" {
		query = query.Where("order_no ILIKE ?", "%"+search+"%")
	}
	if startDate != nil {
		query = query.Where("order_date >= ?", *startDate)
	}
	if endDate != nil {
		query = query.Where("order_date <= ?", *endDate)
	}
	return query
}

func (r *orderRepository) List(ctx context.Context, shopID uuid.UUID, params *domainRepo.OrderFilterParams) ([]entity.Order, int64, error) {
	var orders []entity.Order
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Order{}).Scopes(ShopScope(shopID))
	query = applyOrderFilters(query, params.Search, params.StartDate, params.EndDate)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := "order_date"
	sortOrder := "DESC"
	switch params.SortBy {
	case "order_date", "total_amount", "created_at":
		sortBy = params.SortBy
	}
	if params.SortOrder == "ASC" || params.SortOrder == "asc" {
		sortOrder = "ASC"
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Items").
		Order(sortBy + " " + sortOrder).
		Find(&orders).Error

	return orders, total, err
}

// ListWithCursor returns orders using keyset pagination, newest first.
func (r *orderRepository) ListWithCursor(ctx context.Context, shopID uuid.UUID, params *domainRepo.OrderCursorFilterParams) ([]entity.Order, error) {
	var orders []entity.Order

	params.Cursor.Validate()
	query := r.db.WithContext(ctx).Model(&entity.Order{}).Scopes(ShopScope(shopID))
	query = applyOrderFilters(query, params.Search, params.StartDate, params.EndDate)

	cursor, err := params.Cursor.DecodeCursor()
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	// Fetch limit+1 to detect hasMore
	err = query.Limit(params.Cursor.Limit + 1).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Find(&orders).Error

	return orders, err
}
