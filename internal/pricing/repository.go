package pricing

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
)

// Repository encapsulates pricing tier persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Create inserts the provided tier.
func (r *Repository) Create(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error) {
	if err := r.db.WithContext(ctx).Create(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// Update saves the provided tier.
func (r *Repository) Update(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error) {
	if err := r.db.WithContext(ctx).Save(tier).Error; err != nil {
		return nil, err
	}
	return tier, nil
}

// FindByID loads a single tier.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.PricingTier, error) {
	var tier models.PricingTier
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// FindReusableByName returns the reusable tier carrying the given name.
func (r *Repository) FindReusableByName(ctx context.Context, name string) (*models.PricingTier, error) {
	var tier models.PricingTier
	err := r.db.WithContext(ctx).
		Where("name = ? AND owner_company_id IS NULL", name).
		First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// List returns all tiers ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]models.PricingTier, error) {
	var tiers []models.PricingTier
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

// UnassignCompanies clears the tier reference from every company using it and
// reports how many rows changed.
func (r *Repository) UnassignCompanies(ctx context.Context, tierID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("pricing_tier_id = ?", tierID).
		Update("pricing_tier_id", nil)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// Delete removes the tier row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PricingTier{}).Error
}
