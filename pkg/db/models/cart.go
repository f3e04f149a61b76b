package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart is the mutable pre-quote basket. At most one active cart exists per
// company, enforced by a partial unique index; a cart goes inactive exactly
// once, when it is converted into a quote.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	CompanyID uuid.UUID  `gorm:"column:company_id;type:uuid;not null"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
