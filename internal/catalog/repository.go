package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID      *uuid.UUID
	IncludeInactive bool
}

// Repository encapsulates catalog persistence.
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

// ListCategories returns active categories ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ListProducts returns a page of products plus a flag for more rows.
func (r *Repository) ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) ([]models.Product, bool, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Limit(limit + 1)

	if !filter.IncludeInactive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, false, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at > ?) OR (created_at = ? AND id > ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, false, err
	}

	hasMore := len(products) > limit
	if hasMore {
		products = products[:limit]
	}
	return products, hasMore, nil
}

// FindProductByID loads a product regardless of active flag.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListFinishOptions returns the active finishes for a product.
func (r *Repository) ListFinishOptions(ctx context.Context, productID uuid.UUID) ([]models.FinishOption, error) {
	var options []models.FinishOption
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("name ASC").
		Find(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

// ListUpholsteryOptions returns the active upholstery choices for a product.
func (r *Repository) ListUpholsteryOptions(ctx context.Context, productID uuid.UUID) ([]models.UpholsteryOption, error) {
	var options []models.UpholsteryOption
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND is_active = ?", productID, true).
		Order("name ASC").
		Find(&options).Error
	if err != nil {
		return nil, err
	}
	return options, nil
}

// FindFinishOption loads a finish option belonging to the given product.
func (r *Repository) FindFinishOption(ctx context.Context, id, productID uuid.UUID) (*models.FinishOption, error) {
	var option models.FinishOption
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", id, productID).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}

// FindUpholsteryOption loads an upholstery option belonging to the given product.
func (r *Repository) FindUpholsteryOption(ctx context.Context, id, productID uuid.UUID) (*models.UpholsteryOption, error) {
	var option models.UpholsteryOption
	err := r.db.WithContext(ctx).
		Where("id = ? AND product_id = ?", id, productID).
		First(&option).Error
	if err != nil {
		return nil, err
	}
	return &option, nil
}
