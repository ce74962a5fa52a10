package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lmwati/dukapos-api/pkg/pricing"
	"gorm.io/gorm"
)

// Order represents a completed sale. Totals are persisted at sale time
// and never recomputed from current product state.
type Order struct {
	ID             uuid.UUID            `gorm:"type:uuid;primary_key" json:"id"`
	ShopID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID         uuid.UUID            `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderNo        string               `gorm:"size:100;unique;not null" json:"order_no"`
	OrderDate      time.Time            `gorm:"not null;index" json:"order_date"`
	TotalItems     int                  `gorm:"default:0" json:"total_items"`
	Subtotal       int64                `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	DiscountAmount int64                `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	DiscountType   pricing.DiscountType `gorm:"size:20;default:'fixed'" json:"discount_type"`
	TotalAmount    int64                `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
	DeletedAt      gorm.DeletedAt       `gorm:"index" json:"-"`

	// Relationships
	Shop  Shop        `gorm:"foreignKey:ShopID" json:"-"`
	User  User        `gorm:"foreignKey:UserID" json:"-"`
	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (o Order) MarshalJSON() ([]byte, error) {
	type Alias Order
	return json.Marshal(&struct {
		Alias
		Subtotal       float64 `json:"subtotal"`
		DiscountAmount float64 `json:"discount_amount"`
		TotalAmount    float64 `json:"total_amount"`
	}{
		Alias:          Alias(o),
		Subtotal:       float64(o.Subtotal) / 100,
		DiscountAmount: float64(o.DiscountAmount) / 100,
		TotalAmount:    float64(o.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem represents a line item in an order. ProductName, SoldAt and
// CostAtSale are immutable snapshots taken when the sale was recorded,
// so later product edits cannot rewrite history.
type OrderItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	ProductName string         `gorm:"size:255;not null" json:"product_name"`
	Quantity    int            `gorm:"not null" json:"quantity"`
	SoldAt      int64          `gorm:"not null" json:"-"`  // unit sell price in cents at sale time
	CostAtSale  int64          `gorm:"not null" json:"-"`  // unit cost in cents at sale time
	Discount    int64          `gorm:"default:0" json:"-"` // per-unit allocated discount in cents
	LineTotal   int64          `gorm:"not null" json:"-"`  // Stored in cents, excluded from JSON
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Order   Order   `gorm:"foreignKey:OrderID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (oi OrderItem) MarshalJSON() ([]byte, error) {
	type Alias OrderItem
	return json.Marshal(&struct {
		Alias
		SoldAt     float64 `json:"sold_at"`
		CostAtSale float64 `json:"cost_at_sale"`
		Discount   float64 `json:"discount"`
		LineTotal  float64 `json:"line_total"`
	}{
		Alias:      Alias(oi),
		SoldAt:     float64(oi.SoldAt) / 100,
		CostAtSale: float64(oi.CostAtSale) / 100,
		Discount:   float64(oi.Discount) / 100,
		LineTotal:  float64(oi.LineTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new order item
func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
