package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a product in the inventory. CurrentStock is only
// ever mutated through atomic guarded deltas in the repository layer;
// the invariant CurrentStock >= 0 is enforced there, not here.
type Product struct {
	ID             uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ShopID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"shop_id"`
	CategoryID     *uuid.UUID     `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Slug           string         `gorm:"size:255;unique;not null" json:"slug"`
	Code           string         `gorm:"size:100;unique;not null" json:"code"`
	CurrentStock   int            `gorm:"default:0" json:"current_stock"`
	TotalStock     int            `gorm:"default:0" json:"total_stock"` // lifetime received
	StockThreshold int            `gorm:"default:0" json:"stock_threshold"`
	CostPrice      int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	SellPrice      int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	FloorPrice     int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Notes          *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Shop     Shop      `gorm:"foreignKey:ShopID" json:"-"`
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Product) MarshalJSON() ([]byte, error) {
	type Alias Product
	return json.Marshal(&struct {
		Alias
		CostPrice  float64 `json:"cost_price"`
		SellPrice  float64 `json:"sell_price"`
		FloorPrice float64 `json:"floor_price"`
		LowStock   bool    `json:"low_stock"`
	}{
		Alias:      Alias(p),
		CostPrice:  float64(p.CostPrice) / 100,
		SellPrice:  float64(p.SellPrice) / 100,
		FloorPrice: float64(p.FloorPrice) / 100,
		LowStock:   p.IsLowStock(),
	})
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}

// IsLowStock reports whether current stock has fallen to the alert threshold
func (p *Product) IsLowStock() bool {
	return p.StockThreshold > 0 && p.CurrentStock <= p.StockThreshold
}

// Category represents a product category
type Category struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ShopID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"shop_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Slug      string         `gorm:"size:255;unique;not null" json:"slug"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Shop     Shop      `gorm:"foreignKey:ShopID" json:"-"`
	Products []Product `gorm:"foreignKey:CategoryID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}
