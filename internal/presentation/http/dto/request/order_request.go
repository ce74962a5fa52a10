package request

import (
	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/pkg/pricing"
)

// OrderItemRequest is one cart line in a checkout request
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

// DiscountRequest is the requested total-bill discount
type DiscountRequest struct {
	Value float64              `json:"value" binding:"min=0"`
	Type  pricing.DiscountType `json:"type" binding:"omitempty,oneof=percent fixed"`
}

// CreateOrderRequest represents a checkout request. The server
// recomputes all totals; any client-side amounts are ignored.
type CreateOrderRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount DiscountRequest    `json:"discount"`
}

// PreviewCartRequest represents a live cart preview request
type PreviewCartRequest struct {
	Items    []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	Discount DiscountRequest    `json:"discount"`
}

// OrderItemEditRequest adjusts one existing order line. NewQuantity 0
// removes the line.
type OrderItemEditRequest struct {
	ItemID      uuid.UUID `json:"item_id" binding:"required"`
	NewQuantity int       `json:"new_quantity" binding:"min=0"`
}

// UpdateOrderRequest represents an order edit request
type UpdateOrderRequest struct {
	Items    []OrderItemEditRequest `json:"items" binding:"omitempty,dive"`
	Discount DiscountRequest        `json:"discount"`
}

// OrderFilterRequest represents order list parameters. A cursor or
// explicit limit selects keyset pagination over page numbers.
type OrderFilterRequest struct {
	Search    string `form:"search"`
	StartDate string `form:"start_date"` // YYYY-MM-DD
	EndDate   string `form:"end_date"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order"`
	Page      int    `form:"page"`
	PerPage   int    `form:"per_page"`
	Cursor    string `form:"cursor"`
	Limit     int    `form:"limit"`
}
