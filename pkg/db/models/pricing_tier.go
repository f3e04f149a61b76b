package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/strataform/strataform-backend/pkg/db/types"
)

// PricingTier represents a percentage price adjustment. A tier without an
// owning company is reusable and may be referenced by many companies; a tier
// with OwnerCompanyID set is a legacy company-specific tier.
type PricingTier struct {
	ID                   uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	Name                 string            `gorm:"column:name;not null"`
	OwnerCompanyID       *uuid.UUID        `gorm:"column:owner_company_id;type:uuid"`
	PercentageAdjustment int               `gorm:"column:percentage_adjustment;not null"`
	AppliesToAllProducts bool              `gorm:"column:applies_to_all_products;not null;default:false"`
	SpecificCategoryIDs  dbtypes.UUIDArray `gorm:"column:specific_category_ids"`
	EffectiveFrom        *time.Time        `gorm:"column:effective_from;type:date"`
	ExpiresAt            *time.Time        `gorm:"column:expires_at;type:date"`
	IsActive             bool              `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// IsReusable reports whether the tier can be assigned to any company.
func (p PricingTier) IsReusable() bool {
	return p.OwnerCompanyID == nil
}

// InEffectOn reports whether the tier's date window covers the given day.
// Missing bounds are open-ended.
func (p PricingTier) InEffectOn(day time.Time) bool {
	day = day.Truncate(24 * time.Hour)
	if p.EffectiveFrom != nil && day.Before(p.EffectiveFrom.Truncate(24*time.Hour)) {
		return false
	}
	if p.ExpiresAt != nil && day.After(p.ExpiresAt.Truncate(24*time.Hour)) {
		return false
	}
	return true
}
