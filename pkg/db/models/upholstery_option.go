package models

import (
	"time"

	"github.com/google/uuid"
)

// UpholsteryOption is a fabric or leather selection a product can carry.
type UpholsteryOption struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Name      string    `gorm:"column:name;not null"`
	Grade     *string   `gorm:"column:grade"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
