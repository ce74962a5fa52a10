package request

import "github.com/google/uuid"

// CreateProductRequest represents a product creation request. Prices
// are in major currency units.
type CreateProductRequest struct {
	CategoryID     *uuid.UUID `json:"category_id"`
	Name           string     `json:"name" binding:"required,min=2,max=255"`
	Code           string     `json:"code" binding:"omitempty,max=100"`
	CostPrice      float64    `json:"cost_price" binding:"min=0"`
	SellPrice      float64    `json:"sell_price" binding:"required,min=0"`
	FloorPrice     float64    `json:"floor_price" binding:"min=0"`
	CurrentStock   int        `json:"current_stock" binding:"min=0"`
	StockThreshold int        `json:"stock_threshold" binding:"min=0"`
	Notes          *string    `json:"notes"`
}

// UpdateProductRequest represents a product update request. Stock is
// deliberately absent: it moves through orders, purchases and the
// stocktake endpoint.
type UpdateProductRequest struct {
	CategoryID     *uuid.UUID `json:"category_id"`
	Name           *string    `json:"name" binding:"omitempty,min=2,max=255"`
	CostPrice      *float64   `json:"cost_price" binding:"omitempty,min=0"`
	SellPrice      *float64   `json:"sell_price" binding:"omitempty,min=0"`
	FloorPrice     *float64   `json:"floor_price" binding:"omitempty,min=0"`
	StockThreshold *int       `json:"stock_threshold" binding:"omitempty,min=0"`
	Notes          *string    `json:"notes"`
}

// SetStockRequest represents a stocktake request overwriting the
// counted quantity
type SetStockRequest struct {
	Quantity int `json:"quantity" binding:"min=0"`
}

// ProductFilterRequest represents product filter parameters
type ProductFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	LowStock   bool   `form:"low_stock"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// CategoryRequest represents a category create/update request
type CategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
