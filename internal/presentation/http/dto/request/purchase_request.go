package request

import "github.com/google/uuid"

// PurchaseItemRequest is one received line. UnitCost is in major
// currency units.
type PurchaseItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	UnitCost  float64   `json:"unit_cost" binding:"min=0"`
}

// CreatePurchaseRequest represents a stock intake request
type CreatePurchaseRequest struct {
	SupplierID *uuid.UUID            `json:"supplier_id"`
	Notes      *string               `json:"notes"`
	Items      []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
}

// PurchaseFilterRequest represents purchase list parameters
type PurchaseFilterRequest struct {
	Search     string `form:"search"`
	SupplierID string `form:"supplier_id"`
	StartDate  string `form:"start_date"`
	EndDate    string `form:"end_date"`
	SortBy     string `form:"sort_by"`
	SortOrder  string `form:"sort_order"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
}

// SupplierRequest represents a supplier create/update request
type SupplierRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=255"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Address *string `json:"address"`
}
