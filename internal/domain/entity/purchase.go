package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseDeletionWindow is how long after creation a purchase may
// still be deleted (and its stock increments reversed).
const PurchaseDeletionWindow = 24 * time.Hour

// Purchase represents a received shipment from a supplier. Creating it
// increments stock; deleting it (inside the window) reverses that.
type Purchase struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	ShopID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"shop_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	SupplierID  *uuid.UUID     `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	PurchaseNo  string         `gorm:"size:100;unique;not null" json:"purchase_no"`
	ReceivedAt  time.Time      `gorm:"not null" json:"received_at"`
	TotalAmount int64          `gorm:"default:0" json:"-"` // Stored in cents, excluded from JSON
	Notes       *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Shop     Shop           `gorm:"foreignKey:ShopID" json:"-"`
	User     User           `gorm:"foreignKey:UserID" json:"-"`
	Supplier *Supplier      `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Items    []PurchaseItem `gorm:"foreignKey:PurchaseID" json:"items,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (p Purchase) MarshalJSON() ([]byte, error) {
	type Alias Purchase
	return json.Marshal(&struct {
		Alias
		TotalAmount float64 `json:"total_amount"`
	}{
		Alias:       Alias(p),
		TotalAmount: float64(p.TotalAmount) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new purchase
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Purchase model
func (Purchase) TableName() string {
	return "purchases"
}

// DeletableUntil returns the end of the deletion window
func (p *Purchase) DeletableUntil() time.Time {
	return p.CreatedAt.Add(PurchaseDeletionWindow)
}

// PurchaseItem represents a line item in a purchase
type PurchaseItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	PurchaseID uuid.UUID      `gorm:"type:uuid;not null;index" json:"purchase_id"`
	ProductID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity   int            `gorm:"not null" json:"quantity"`
	UnitCost   int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	LineTotal  int64          `gorm:"not null" json:"-"` // Stored in cents, excluded from JSON
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Purchase Purchase `gorm:"foreignKey:PurchaseID" json:"-"`
	Product  Product  `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (pi PurchaseItem) MarshalJSON() ([]byte, error) {
	type Alias PurchaseItem
	return json.Marshal(&struct {
		Alias
		UnitCost  float64 `json:"unit_cost"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(pi),
		UnitCost:  float64(pi.UnitCost) / 100,
		LineTotal: float64(pi.LineTotal) / 100,
	})
}

// BeforeCreate generates a UUID before creating a new purchase item
func (pi *PurchaseItem) BeforeCreate(tx *gorm.DB) error {
	if pi.ID == uuid.Nil {
		pi.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseItem model
func (PurchaseItem) TableName() string {
	return "purchase_items"
}
