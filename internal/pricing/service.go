package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	dbtypes "github.com/strataform/strataform-backend/pkg/db/types"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
)

const (
	// MinAdjustmentPercent is the largest allowed discount.
	MinAdjustmentPercent = -50
	// MaxAdjustmentPercent is the largest allowed markup.
	MaxAdjustmentPercent = 100
)

// TierInput carries the writable tier fields.
type TierInput struct {
	Name                 string
	PercentageAdjustment int
	OwnerCompanyID       *uuid.UUID
	AppliesToAllProducts bool
	SpecificCategoryIDs  []uuid.UUID
	EffectiveFrom        *time.Time
	ExpiresAt            *time.Time
}

// DeleteResult reports the outcome of removing a tier.
type DeleteResult struct {
	UnassignedCompanies int64 `json:"unassigned_companies"`
}

// Service defines the behavior needed by the pricing controllers.
type Service interface {
	CreateTier(ctx context.Context, input TierInput) (*models.PricingTier, error)
	UpdateTier(ctx context.Context, id uuid.UUID, input TierInput) (*models.PricingTier, error)
	GetTier(ctx context.Context, id uuid.UUID) (*models.PricingTier, error)
	ListTiers(ctx context.Context) ([]models.PricingTier, error)
	DeleteTier(ctx context.Context, id uuid.UUID, force bool) (*DeleteResult, error)
}

type tierRepository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error)
	Update(ctx context.Context, tier *models.PricingTier) (*models.PricingTier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricingTier, error)
	FindReusableByName(ctx context.Context, name string) (*models.PricingTier, error)
	List(ctx context.Context) ([]models.PricingTier, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tiers tierRepository
	tx    txRunner
}

// NewService constructs a pricing service with the provided dependencies.
func NewService(tiers tierRepository, tx txRunner) (Service, error) {
	if tiers == nil {
		return nil, fmt.Errorf("tier repository is required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{tiers: tiers, tx: tx}, nil
}

func (s *service) CreateTier(ctx context.Context, input TierInput) (*models.PricingTier, error) {
	if err := s.validateInput(ctx, input, uuid.Nil); err != nil {
		return nil, err
	}

	tier := &models.PricingTier{
		Name:                 strings.TrimSpace(input.Name),
		OwnerCompanyID:       input.OwnerCompanyID,
		PercentageAdjustment: input.PercentageAdjustment,
		AppliesToAllProducts: input.AppliesToAllProducts,
		SpecificCategoryIDs:  dbtypes.UUIDArray(input.SpecificCategoryIDs),
		EffectiveFrom:        input.EffectiveFrom,
		ExpiresAt:            input.ExpiresAt,
		IsActive:             true,
	}

	created, err := s.tiers.Create(ctx, tier)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a reusable tier with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pricing tier")
	}
	return created, nil
}

func (s *service) UpdateTier(ctx context.Context, id uuid.UUID, input TierInput) (*models.PricingTier, error) {
	tier, err := s.loadTier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(ctx, input, id); err != nil {
		return nil, err
	}

	tier.Name = strings.TrimSpace(input.Name)
	tier.PercentageAdjustment = input.PercentageAdjustment
	tier.AppliesToAllProducts = input.AppliesToAllProducts
	tier.SpecificCategoryIDs = dbtypes.UUIDArray(input.SpecificCategoryIDs)
	tier.OwnerCompanyID = input.OwnerCompanyID
	tier.EffectiveFrom = input.EffectiveFrom
	tier.ExpiresAt = input.ExpiresAt

	updated, err := s.tiers.Update(ctx, tier)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a reusable tier with this name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update pricing tier")
	}
	return updated, nil
}

func (s *service) GetTier(ctx context.Context, id uuid.UUID) (*models.PricingTier, error) {
	return s.loadTier(ctx, id)
}

func (s *service) ListTiers(ctx context.Context) ([]models.PricingTier, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list pricing tiers")
	}
	return tiers, nil
}

// DeleteTier removes the tier, clearing it from every assigned company in
// the same transaction unless forced. A forced delete leaves the unassign
// step to the ON DELETE SET NULL constraint and reports no count.
func (s *service) DeleteTier(ctx context.Context, id uuid.UUID, force bool) (*DeleteResult, error) {
	if _, err := s.loadTier(ctx, id); err != nil {
		return nil, err
	}

	result := &DeleteResult{}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.tiers.WithTx(tx)
		if !force {
			unassigned, err := repo.UnassignCompanies(ctx, id)
			if err != nil {
				return err
			}
			result.UnassignedCompanies = unassigned
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete pricing tier")
	}
	return result, nil
}

func (s *service) loadTier(ctx context.Context, id uuid.UUID) (*models.PricingTier, error) {
	tier, err := s.tiers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing tier")
	}
	return tier, nil
}

func (s *service) validateInput(ctx context.Context, input TierInput, updatingID uuid.UUID) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tier name is required")
	}
	if input.PercentageAdjustment < MinAdjustmentPercent || input.PercentageAdjustment > MaxAdjustmentPercent {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("percentage adjustment must be between %d and %d", MinAdjustmentPercent, MaxAdjustmentPercent))
	}
	if !input.AppliesToAllProducts && len(input.SpecificCategoryIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "category-scoped tiers need at least one category")
	}
	if input.EffectiveFrom != nil && input.ExpiresAt != nil && input.ExpiresAt.Before(*input.EffectiveFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "expiry date must not precede the effective date")
	}

	// Reusable tier names stay unique so admins can tell them apart.
	if input.OwnerCompanyID == nil {
		existing, err := s.tiers.FindReusableByName(ctx, name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check tier name")
		}
		if existing != nil && existing.ID != updatingID {
			return pkgerrors.New(pkgerrors.CodeConflict, "a reusable tier with this name already exists")
		}
	}
	return nil
}
