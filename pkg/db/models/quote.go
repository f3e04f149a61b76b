package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/enums"
	"github.com/strataform/strataform-backend/pkg/types"
)

// Quote is the immutable request minted from a cart. Line items are copied at
// conversion time; only status and the admin response fields change afterward.
type Quote struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	QuoteNumber           string            `gorm:"column:quote_number;type:text;not null;uniqueIndex"`
	CompanyID             uuid.UUID         `gorm:"column:company_id;type:uuid;not null"`
	Status                enums.QuoteStatus `gorm:"column:status;type:text;not null;default:'submitted'"`
	DeliveryAddress       types.Address     `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	RequestedDeliveryDate *time.Time        `gorm:"column:requested_delivery_date;type:date"`
	SpecialInstructions   *string           `gorm:"column:special_instructions"`
	QuotedPriceCents      *int              `gorm:"column:quoted_price_cents"`
	QuotedLeadTimeDays    *int              `gorm:"column:quoted_lead_time_days"`
	AdminNotes            *string           `gorm:"column:admin_notes"`
	ValidUntil            *time.Time        `gorm:"column:valid_until"`
	Items                 []QuoteItem       `gorm:"foreignKey:QuoteID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
