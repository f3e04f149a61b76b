package carts

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/types"
)

// activeCartConstraint is the partial unique index guarding one active cart
// per company.
const activeCartConstraint = "carts_one_active_per_company"

// AddItemInput carries the fields for adding a line to the active cart.
type AddItemInput struct {
	ProductID          uuid.UUID
	Quantity           int
	FinishOptionID     *uuid.UUID
	UpholsteryOptionID *uuid.UUID
	Notes              *string
	Configuration      types.Configuration
}

// UpdateItemInput carries the optional fields of a line edit. Nil fields are
// left unchanged.
type UpdateItemInput struct {
	Quantity           *int
	FinishOptionID     *uuid.UUID
	UpholsteryOptionID *uuid.UUID
	Notes              *string
}

// CartView is a cart with its computed subtotal.
type CartView struct {
	models.Cart
	SubtotalCents int `json:"subtotal_cents"`
}

// Service defines the behavior needed by the cart controllers.
type Service interface {
	GetActiveCart(ctx context.Context, companyID uuid.UUID) (*CartView, error)
	AddItem(ctx context.Context, companyID uuid.UUID, input AddItemInput) (*CartView, error)
	UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*CartView, error)
	RemoveItem(ctx context.Context, companyID, itemID uuid.UUID) (*CartView, error)
	ClearCart(ctx context.Context, companyID uuid.UUID) (*CartView, error)
}

type cartRepository interface {
	Create(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	FindActiveByCompany(ctx context.Context, companyID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindMatchingItem(ctx context.Context, cartID, productID uuid.UUID, finishID, upholsteryID *uuid.UUID) (*models.CartItem, error)
	CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	UpdateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error)
	DeleteItem(ctx context.Context, id uuid.UUID) error
	DeleteItems(ctx context.Context, cartID uuid.UUID) error
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindFinishOption(ctx context.Context, id, productID uuid.UUID) (*models.FinishOption, error)
	FindUpholsteryOption(ctx context.Context, id, productID uuid.UUID) (*models.UpholsteryOption, error)
}

type priceResolver interface {
	EffectiveUnitPriceCents(ctx context.Context, companyID uuid.UUID, product *models.Product) (int, error)
}

type service struct {
	carts   cartRepository
	catalog productLoader
	prices  priceResolver
}

// NewService constructs a cart service with the provided dependencies.
func NewService(carts cartRepository, catalog productLoader, prices priceResolver) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("product loader is required")
	}
	if prices == nil {
		return nil, fmt.Errorf("price resolver is required")
	}
	return &service{carts: carts, catalog: catalog, prices: prices}, nil
}

// GetActiveCart returns the company's active cart, creating an empty one on
// first use. A concurrent create losing the unique-index race falls back to
// reading the winner's row.
func (s *service) GetActiveCart(ctx context.Context, companyID uuid.UUID) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return newCartView(cart), nil
}

func (s *service) AddItem(ctx context.Context, companyID uuid.UUID, input AddItemInput) (*CartView, error) {
	product, err := s.loadActiveProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Quantity < product.MinimumOrderQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("quantity %d is below the minimum order quantity %d", input.Quantity, product.MinimumOrderQuantity)).
			WithDetails(map[string]int{"minimum_order_quantity": product.MinimumOrderQuantity})
	}
	if err := s.validateOptions(ctx, product.ID, input.FinishOptionID, input.UpholsteryOptionID); err != nil {
		return nil, err
	}

	cart, err := s.getOrCreate(ctx, companyID)
	if err != nil {
		return nil, err
	}

	existing, err := s.carts.FindMatchingItem(ctx, cart.ID, product.ID, input.FinishOptionID, input.UpholsteryOptionID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find matching item")
	}

	if existing != nil {
		// Same configuration merges; the original price snapshot stands.
		existing.Quantity += input.Quantity
		if input.Notes != nil {
			existing.Notes = input.Notes
		}
		if input.Configuration != nil {
			existing.Configuration = input.Configuration
		}
		if _, err := s.carts.UpdateItem(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart item")
		}
		return s.reload(ctx, cart.ID)
	}

	unitPrice, err := s.prices.EffectiveUnitPriceCents(ctx, companyID, product)
	if err != nil {
		return nil, err
	}

	item := &models.CartItem{
		CartID:             cart.ID,
		ProductID:          product.ID,
		Quantity:           input.Quantity,
		UnitPriceCents:     unitPrice,
		FinishOptionID:     input.FinishOptionID,
		UpholsteryOptionID: input.UpholsteryOptionID,
		Notes:              input.Notes,
		Configuration:      input.Configuration,
	}
	if _, err := s.carts.CreateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) UpdateItem(ctx context.Context, companyID, itemID uuid.UUID, input UpdateItemInput) (*CartView, error) {
	item, cart, err := s.loadOwnedItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}

	product, err := s.loadActiveProduct(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if input.Quantity != nil {
		if *input.Quantity < product.MinimumOrderQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("quantity %d is below the minimum order quantity %d", *input.Quantity, product.MinimumOrderQuantity)).
				WithDetails(map[string]int{"minimum_order_quantity": product.MinimumOrderQuantity})
		}
		item.Quantity = *input.Quantity
	}

	selectionChanged := false
	if input.FinishOptionID != nil {
		item.FinishOptionID = input.FinishOptionID
		selectionChanged = true
	}
	if input.UpholsteryOptionID != nil {
		item.UpholsteryOptionID = input.UpholsteryOptionID
		selectionChanged = true
	}
	if selectionChanged {
		if err := s.validateOptions(ctx, product.ID, item.FinishOptionID, item.UpholsteryOptionID); err != nil {
			return nil, err
		}
	}
	if input.Notes != nil {
		item.Notes = input.Notes
	}

	if selectionChanged {
		// The new selection may now share another line's merge identity;
		// fold this line into it instead of keeping a duplicate row.
		match, err := s.carts.FindMatchingItem(ctx, cart.ID, item.ProductID, item.FinishOptionID, item.UpholsteryOptionID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find matching item")
		}
		if match != nil && match.ID != item.ID {
			match.Quantity += item.Quantity
			if item.Notes != nil {
				match.Notes = item.Notes
			}
			if item.Configuration != nil {
				match.Configuration = item.Configuration
			}
			if _, err := s.carts.UpdateItem(ctx, match); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge cart item")
			}
			if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop merged cart item")
			}
			return s.reload(ctx, cart.ID)
		}
	}

	if _, err := s.carts.UpdateItem(ctx, item); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) RemoveItem(ctx context.Context, companyID, itemID uuid.UUID) (*CartView, error) {
	item, cart, err := s.loadOwnedItem(ctx, companyID, itemID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItem(ctx, item.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart item")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) ClearCart(ctx context.Context, companyID uuid.UUID) (*CartView, error) {
	cart, err := s.getOrCreate(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if err := s.carts.DeleteItems(ctx, cart.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "clear cart")
	}
	return s.reload(ctx, cart.ID)
}

func (s *service) getOrCreate(ctx context.Context, companyID uuid.UUID) (*models.Cart, error) {
	cart, err := s.carts.FindActiveByCompany(ctx, companyID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active cart")
	}

	created, err := s.carts.Create(ctx, &models.Cart{CompanyID: companyID, IsActive: true})
	if err != nil {
		if db.IsUniqueViolation(err, activeCartConstraint) || db.IsUniqueViolation(err, "") {
			cart, readErr := s.carts.FindActiveByCompany(ctx, companyID)
			if readErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, readErr, "reload active cart")
			}
			return cart, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
	}
	return created, nil
}

// loadOwnedItem walks item to cart to company and rejects cross-company
// access with a forbidden error.
func (s *service) loadOwnedItem(ctx context.Context, companyID, itemID uuid.UUID) (*models.CartItem, *models.Cart, error) {
	item, err := s.carts.FindItemByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart item")
	}

	cart, err := s.carts.FindByID(ctx, item.CartID)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	if cart.CompanyID != companyID {
		return nil, nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another company")
	}
	if !cart.IsActive {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart has already been converted")
	}
	return item, cart, nil
}

func (s *service) loadActiveProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.catalog.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "product is no longer available")
	}
	return product, nil
}

func (s *service) validateOptions(ctx context.Context, productID uuid.UUID, finishID, upholsteryID *uuid.UUID) error {
	if finishID != nil {
		if _, err := s.catalog.FindFinishOption(ctx, *finishID, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "finish option does not belong to this product")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load finish option")
		}
	}
	if upholsteryID != nil {
		if _, err := s.catalog.FindUpholsteryOption(ctx, *upholsteryID, productID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "upholstery option does not belong to this product")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load upholstery option")
		}
	}
	return nil
}

func (s *service) reload(ctx context.Context, cartID uuid.UUID) (*CartView, error) {
	cart, err := s.carts.FindByID(ctx, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload cart")
	}
	return newCartView(cart), nil
}

func newCartView(cart *models.Cart) *CartView {
	view := &CartView{Cart: *cart}
	for _, item := range cart.Items {
		view.SubtotalCents += item.LineSubtotalCents()
	}
	return view
}
