package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations. The
// three reconciliation methods each run as a single transaction: order
// rows and guarded stock deltas commit together or not at all.
type OrderRepository interface {
	// CreateWithItems inserts the order with its items and decrements
	// stock per product, guarded by current_stock >= quantity. Returns
	// *InsufficientStockError when any guard fails.
	CreateWithItems(ctx context.Context, order *entity.Order, decrements map[uuid.UUID]int) error
	// UpdateWithStockDeltas persists edited totals/items and applies
	// stock deltas (positive restores stock, negative is a guarded
	// decrement). removeIDs are items whose quantity dropped to zero.
	UpdateWithStockDeltas(ctx context.Context, order *entity.Order, items []entity.OrderItem, removeIDs []uuid.UUID, deltas map[uuid.UUID]int) error
	// DeleteRestoringStock restores each item's quantity to its product
	// (skipping products that no longer exist) and deletes the order.
	DeleteRestoringStock(ctx context.Context, shopID, id uuid.UUID) error

	GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Order, error)
	GetByOrderNo(ctx context.Context, shopID uuid.UUID, orderNo string) (*entity.Order, error)
	List(ctx context.Context, shopID uuid.UUID, params *OrderFilterParams) ([]entity.Order, int64, error)
	ListWithCursor(ctx context.Context, shopID uuid.UUID, params *OrderCursorFilterParams) ([]entity.Order, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// OrderCursorFilterParams contains cursor-based filtering for order queries
type OrderCursorFilterParams struct {
	Cursor    *pagination.CursorParams
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
}
