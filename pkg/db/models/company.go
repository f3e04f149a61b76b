package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/enums"
	"github.com/strataform/strataform-backend/pkg/types"
)

// Company represents a B2B customer account.
type Company struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	Name            string              `gorm:"column:name;not null"`
	ContactEmail    string              `gorm:"column:contact_email;type:text;not null;uniqueIndex"`
	PasswordHash    string              `gorm:"column:password_hash;not null"`
	Phone           *string             `gorm:"column:phone"`
	TaxID           *string             `gorm:"column:tax_id"`
	BillingAddress  *types.Address      `gorm:"column:billing_address;type:jsonb;serializer:json"`
	ShippingAddress *types.Address      `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	Status          enums.CompanyStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	IsActive        bool                `gorm:"column:is_active;not null;default:true"`
	PricingTierID   *uuid.UUID          `gorm:"column:pricing_tier_id;type:uuid"`
	LastLoginAt     *time.Time          `gorm:"column:last_login_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
