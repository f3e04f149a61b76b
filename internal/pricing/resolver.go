package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
)

// AppliesToCategory reports whether the tier's scope covers the category.
func AppliesToCategory(tier *models.PricingTier, categoryID uuid.UUID) bool {
	if tier == nil {
		return false
	}
	if tier.AppliesToAllProducts {
		return true
	}
	return tier.SpecificCategoryIDs.Contains(categoryID)
}

// AdjustedPriceCents applies the tier's percentage adjustment to the base
// price. The base price is returned unchanged when the tier is nil, inactive,
// outside its date window, or scoped away from the product's category.
// Results round half up to the nearest cent and never go below zero.
func AdjustedPriceCents(baseCents int, tier *models.PricingTier, categoryID uuid.UUID, on time.Time) int {
	if tier == nil || !tier.IsActive || !tier.InEffectOn(on) || !AppliesToCategory(tier, categoryID) {
		return baseCents
	}

	base := decimal.NewFromInt(int64(baseCents))
	factor := decimal.NewFromInt(int64(100 + tier.PercentageAdjustment)).
		Div(decimal.NewFromInt(100))
	adjusted := base.Mul(factor).Round(0)

	if adjusted.IsNegative() {
		return 0
	}
	return int(adjusted.IntPart())
}

type companyLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
}

type tierFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricingTier, error)
}

// Resolver computes company-specific unit prices from tier assignments.
type Resolver struct {
	companies companyLoader
	tiers     tierFinder
	now       func() time.Time
}

// NewResolver constructs a price resolver.
func NewResolver(companies companyLoader, tiers tierFinder) (*Resolver, error) {
	if companies == nil {
		return nil, fmt.Errorf("company loader is required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier finder is required")
	}
	return &Resolver{companies: companies, tiers: tiers, now: time.Now}, nil
}

// TierFor returns the company's assigned tier, or nil when the company has no
// assignment or the assigned tier no longer resolves.
func (r *Resolver) TierFor(ctx context.Context, companyID uuid.UUID) (*models.PricingTier, error) {
	company, err := r.companies.FindByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}
	if company.PricingTierID == nil {
		return nil, nil
	}

	tier, err := r.tiers.FindByID(ctx, *company.PricingTierID)
	if err != nil {
		// A dangling assignment falls back to base pricing.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing tier")
	}
	return tier, nil
}

// EffectiveUnitPriceCents prices the product for the company as of now.
func (r *Resolver) EffectiveUnitPriceCents(ctx context.Context, companyID uuid.UUID, product *models.Product) (int, error) {
	if product == nil {
		return 0, fmt.Errorf("product is required")
	}
	tier, err := r.TierFor(ctx, companyID)
	if err != nil {
		return 0, err
	}
	return AdjustedPriceCents(product.BasePriceCents, tier, product.CategoryID, r.now()), nil
}
