package quotes

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

// ListFilter narrows quote listings.
type ListFilter struct {
	CompanyID *uuid.UUID
	Status    *enums.QuoteStatus
}

// Repository encapsulates quote persistence.
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

// Create inserts the quote together with its items.
func (r *Repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// Update saves the quote header.
func (r *Repository) Update(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Omit("Items").Save(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

// FindByID loads a quote with its items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CountCreatedOn returns how many quotes were minted on the given UTC day.
func (r *Repository) CountCreatedOn(ctx context.Context, day time.Time) (int64, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Quote{}).
		Where("created_at >= ? AND created_at < ?", start, end).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// List returns a page of quotes plus a flag for more rows. Results are newest
// first.
func (r *Repository) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Quote, bool, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC, id DESC").
		Limit(limit + 1)

	if filter.CompanyID != nil {
		query = query.Where("company_id = ?", *filter.CompanyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, false, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var quotes []models.Quote
	if err := query.Find(&quotes).Error; err != nil {
		return nil, false, err
	}

	hasMore := len(quotes) > limit
	if hasMore {
		quotes = quotes[:limit]
	}
	return quotes, hasMore, nil
}
