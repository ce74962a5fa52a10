package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/internal/domain/entity"
	"github.com/lmwati/dukapos-api/pkg/pagination"
)

// ProductRepository defines the interface for product data operations.
// Stock is never written with read-modify-write: sale and intake paths
// run through the order/purchase reconciliation transactions, and the
// only direct overwrite is SetStock for a physical stocktake.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, shopID uuid.UUID, ids []uuid.UUID) ([]entity.Product, error)
	GetBySlug(ctx context.Context, shopID uuid.UUID, slug string) (*entity.Product, error)
	GetByCode(ctx context.Context, shopID uuid.UUID, code string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, params *ProductFilterParams) ([]entity.Product, int64, error)
	GetLowStock(ctx context.Context, shopID uuid.UUID) ([]entity.Product, error)
	// SetStock overwrites current stock to a counted value (stocktake).
	SetStock(ctx context.Context, shopID, id uuid.UUID, quantity int) error
}

// ProductFilterParams contains filtering parameters for product queries
type ProductFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	LowStock   bool
	SortBy     string
	SortOrder  string
}

// CategoryRepository defines the interface for category data operations
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, shopID, id uuid.UUID) (*entity.Category, error)
	GetBySlug(ctx context.Context, shopID uuid.UUID, slug string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	Delete(ctx context.Context, shopID, id uuid.UUID) error
	List(ctx context.Context, shopID uuid.UUID, params *pagination.PaginationParams, search string) ([]entity.Category, int64, error)
}
