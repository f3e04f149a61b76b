package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/types"
)

// QuoteItem is an immutable snapshot of a CartItem taken at conversion time.
// It carries no link back to the source line, which is deleted with its cart.
type QuoteItem struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	QuoteID            uuid.UUID           `gorm:"column:quote_id;type:uuid;not null"`
	ProductID          uuid.UUID           `gorm:"column:product_id;type:uuid;not null"`
	Quantity           int                 `gorm:"column:quantity;not null"`
	UnitPriceCents     int                 `gorm:"column:unit_price_cents;not null"`
	FinishOptionID     *uuid.UUID          `gorm:"column:finish_option_id;type:uuid"`
	UpholsteryOptionID *uuid.UUID          `gorm:"column:upholstery_option_id;type:uuid"`
	Notes              *string             `gorm:"column:notes"`
	Configuration      types.Configuration `gorm:"column:configuration;type:jsonb;serializer:json"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
}
