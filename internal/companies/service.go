package companies

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/security"
	"github.com/strataform/strataform-backend/pkg/types"
)

// RegisterInput carries the fields needed to open a new account.
type RegisterInput struct {
	Name            string
	ContactEmail    string
	Password        string
	Phone           *string
	TaxID           *string
	BillingAddress  *types.Address
	ShippingAddress *types.Address
}

// Service defines the behavior needed by the company controllers.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*models.Company, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, status string) ([]models.Company, error)
	SetStatus(ctx context.Context, id uuid.UUID, status enums.CompanyStatus) (*models.Company, error)
	AssignPricingTier(ctx context.Context, companyID uuid.UUID, tierID *uuid.UUID) (*models.Company, error)
}

type companyRepository interface {
	Create(ctx context.Context, company *models.Company) (*models.Company, error)
	Update(ctx context.Context, company *models.Company) (*models.Company, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	List(ctx context.Context, status string) ([]models.Company, error)
}

type tierLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.PricingTier, error)
}

type service struct {
	companies   companyRepository
	tiers       tierLoader
	passwordCfg config.PasswordConfig
}

// NewService constructs a company service with the provided dependencies.
func NewService(companies companyRepository, tiers tierLoader, passwordCfg config.PasswordConfig) (Service, error) {
	if companies == nil {
		return nil, fmt.Errorf("company repository is required")
	}
	if tiers == nil {
		return nil, fmt.Errorf("tier loader is required")
	}
	return &service{companies: companies, tiers: tiers, passwordCfg: passwordCfg}, nil
}

// Register opens a new account in pending status. Accounts stay pending until
// an admin activates them.
func (s *service) Register(ctx context.Context, input RegisterInput) (*models.Company, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.ContactEmail))
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name is required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact email is required")
	}
	if len(input.Password) < 8 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password must be at least 8 characters")
	}
	if input.ShippingAddress != nil {
		if missing := input.ShippingAddress.Validate(); missing != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is missing "+missing)
		}
		normalized := input.ShippingAddress.Normalized()
		input.ShippingAddress = &normalized
	}
	if input.BillingAddress != nil {
		if missing := input.BillingAddress.Validate(); missing != "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "billing address is missing "+missing)
		}
		normalized := input.BillingAddress.Normalized()
		input.BillingAddress = &normalized
	}

	hash, err := security.HashPassword(input.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	company := &models.Company{
		Name:            name,
		ContactEmail:    email,
		PasswordHash:    hash,
		Phone:           input.Phone,
		TaxID:           input.TaxID,
		BillingAddress:  input.BillingAddress,
		ShippingAddress: input.ShippingAddress,
		Status:          enums.CompanyStatusPending,
		IsActive:        true,
	}

	created, err := s.companies.Create(ctx, company)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "an account with this email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create company")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.load(ctx, id)
}

func (s *service) List(ctx context.Context, status string) ([]models.Company, error) {
	if status != "" {
		if _, err := enums.ParseCompanyStatus(status); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown company status")
		}
	}
	companies, err := s.companies.List(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list companies")
	}
	return companies, nil
}

// SetStatus moves the account to the requested status.
func (s *service) SetStatus(ctx context.Context, id uuid.UUID, status enums.CompanyStatus) (*models.Company, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown company status")
	}
	company, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if company.Status == status {
		return company, nil
	}

	company.Status = status
	updated, err := s.companies.Update(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update company status")
	}
	return updated, nil
}

// AssignPricingTier points the company at a tier, or clears the assignment
// when tierID is nil. Owner-bound tiers may only be assigned to their owner.
func (s *service) AssignPricingTier(ctx context.Context, companyID uuid.UUID, tierID *uuid.UUID) (*models.Company, error) {
	company, err := s.load(ctx, companyID)
	if err != nil {
		return nil, err
	}

	if tierID != nil {
		tier, err := s.tiers.FindByID(ctx, *tierID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing tier not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pricing tier")
		}
		if !tier.IsReusable() && (tier.OwnerCompanyID == nil || *tier.OwnerCompanyID != companyID) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier is bound to a different company")
		}
	}

	company.PricingTierID = tierID
	updated, err := s.companies.Update(ctx, company)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign pricing tier")
	}
	return updated, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.companies.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "company not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load company")
	}
	return company, nil
}
