package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

// ProductView is a product decorated with the caller's effective price.
type ProductView struct {
	models.Product
	EffectivePriceCents int `json:"effective_price_cents"`
}

// ProductDetail adds the configurable options to a product view.
type ProductDetail struct {
	ProductView
	FinishOptions     []models.FinishOption     `json:"finish_options"`
	UpholsteryOptions []models.UpholsteryOption `json:"upholstery_options"`
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

// Service defines the read surface for the storefront catalog.
type Service interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, companyID uuid.UUID, filter ProductFilter, params pagination.Params) (*ProductPage, error)
	GetProduct(ctx context.Context, companyID, productID uuid.UUID) (*ProductDetail, error)
}

type catalogRepository interface {
	ListCategories(ctx context.Context) ([]models.Category, error)
	ListProducts(ctx context.Context, filter ProductFilter, params pagination.Params) ([]models.Product, bool, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListFinishOptions(ctx context.Context, productID uuid.UUID) ([]models.FinishOption, error)
	ListUpholsteryOptions(ctx context.Context, productID uuid.UUID) ([]models.UpholsteryOption, error)
}

type priceResolver interface {
	EffectiveUnitPriceCents(ctx context.Context, companyID uuid.UUID, product *models.Product) (int, error)
}

type service struct {
	catalog catalogRepository
	prices  priceResolver
}

// NewService constructs a catalog read service.
func NewService(catalog catalogRepository, prices priceResolver) (Service, error) {
	if catalog == nil {
		return nil, fmt.Errorf("catalog repository is required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver is required")
	}
	return &service{catalog: catalog, prices: prices}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return categories, nil
}

func (s *service) ListProducts(ctx context.Context, companyID uuid.UUID, filter ProductFilter, params pagination.Params) (*ProductPage, error) {
	products, hasMore, err := s.catalog.ListProducts(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}

	views := make([]ProductView, 0, len(products))
	for i := range products {
		view, err := s.decorate(ctx, companyID, &products[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}

	page := &ProductPage{Products: views}
	if hasMore && len(products) > 0 {
		last := products[len(products)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

func (s *service) GetProduct(ctx context.Context, companyID, productID uuid.UUID) (*ProductDetail, error) {
	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	view, err := s.decorate(ctx, companyID, product)
	if err != nil {
		return nil, err
	}

	finishes, err := s.catalog.ListFinishOptions(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list finish options")
	}
	upholstery, err := s.catalog.ListUpholsteryOptions(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list upholstery options")
	}

	return &ProductDetail{
		ProductView:       *view,
		FinishOptions:     finishes,
		UpholsteryOptions: upholstery,
	}, nil
}

func (s *service) decorate(ctx context.Context, companyID uuid.UUID, product *models.Product) (*ProductView, error) {
	price := product.BasePriceCents
	if companyID != uuid.Nil {
		resolved, err := s.prices.EffectiveUnitPriceCents(ctx, companyID, product)
		if err != nil {
			return nil, err
		}
		price = resolved
	}
	return &ProductView{Product: *product, EffectivePriceCents: price}, nil
}
