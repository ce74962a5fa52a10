package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/pagination"
)

// PurchaseRepository defines the interface for purchase data operations.
// Create and delete are reconciliation transactions mirroring the order
// paths: stock increments on intake, guarded decrements on reversal.
type PurchaseRepository interface {
	// CreateWithItems inserts the purchase with its items, increments
	// each product's current and lifetime stock, and overwrites the
	// product's cost price with the received unit cost.
	CreateWithItems(ctx context.Context, purchase *entity.Purchase, increments map[uuid.UUID]int, unitCosts map[uuid.UUID]int64) error
	// DeleteReversingStock removes the purchase and decrements the
	// received quantities back out, guarded so already-sold stock
	// cannot go negative. Returns *InsufficientStockError on a failed
	// guard.
	DeleteReversingStock(ctx context.Context, shopID, id uuid.UUID) error

	GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Purchase, error)
	List(ctx context.Context, shopID uuid.UUID, params *PurchaseFilterParams) ([]entity.Purchase, int64, error)
}

// PurchaseFilterParams contains filtering parameters for purchase queries
type PurchaseFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	SupplierID *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}
