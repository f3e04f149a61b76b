package companies

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
)

// Repository encapsulates company persistence.
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

// Create inserts the provided company.
func (r *Repository) Create(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// Update saves the provided company.
func (r *Repository) Update(ctx context.Context, company *models.Company) (*models.Company, error) {
	if err := r.db.WithContext(ctx).Save(company).Error; err != nil {
		return nil, err
	}
	return company, nil
}

// FindByID loads a single company.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// FindByEmail loads a company by its normalized contact email.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.Company, error) {
	var company models.Company
	err := r.db.WithContext(ctx).
		Where("contact_email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&company).Error
	if err != nil {
		return nil, err
	}
	return &company, nil
}

// List returns companies ordered by creation time, optionally filtered by status.
func (r *Repository) List(ctx context.Context, status string) ([]models.Company, error) {
	query := r.db.WithContext(ctx).Order("created_at ASC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var companies []models.Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, err
	}
	return companies, nil
}

// UpdateLastLogin stamps the company's last successful login.
func (r *Repository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Company{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}
