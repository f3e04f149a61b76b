package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry for a furniture piece.
type Product struct {
	ID                   uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	SKU                  string     `gorm:"column:sku;type:text;not null;uniqueIndex"`
	Name                 string     `gorm:"column:name;not null"`
	Description          *string    `gorm:"column:description"`
	CategoryID           uuid.UUID  `gorm:"column:category_id;type:uuid;not null"`
	BasePriceCents       int        `gorm:"column:base_price_cents;not null"`
	MinimumOrderQuantity int        `gorm:"column:minimum_order_quantity;not null;default:1"`
	LeadTimeDays         *int       `gorm:"column:lead_time_days"`
	IsActive             bool       `gorm:"column:is_active;not null;default:true"`
	Category             *Category  `gorm:"foreignKey:CategoryID"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
