package repository

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ShopScope returns a GORM scope that filters by shop. Every query on a
// shop-scoped entity must apply it; the zero UUID matches nothing, so a
// missing scope cannot leak cross-shop data.
func ShopScope(shopID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if shopID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("shop_id = ?", shopID)
	}
}
