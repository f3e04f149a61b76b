package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/types"
)

// CartItem is one line in a cart. The unit price is snapshotted from the
// product at add time and never re-read. Lines merge on the
// (cart, product, finish, upholstery) tuple.
type CartItem struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	CartID             uuid.UUID           `gorm:"column:cart_id;type:uuid;not null"`
	ProductID          uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity           int                 `gorm:"column:quantity;not null"`
	UnitPriceCents     int                 `gorm:"column:unit_price_cents;not null"`
	FinishOptionID     *uuid.UUID          `gorm:"column:finish_option_id;type:uuid"`
	UpholsteryOptionID *uuid.UUID          `gorm:"column:upholstery_option_id;type:uuid"`
	Notes              *string             `gorm:"column:notes"`
	Configuration      types.Configuration `gorm:"column:configuration;type:jsonb;serializer:json"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// LineSubtotalCents returns quantity times the snapshotted unit price.
func (c CartItem) LineSubtotalCents() int {
	return c.Quantity * c.UnitPriceCents
}
