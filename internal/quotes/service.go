package quotes

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/strataform/strataform-backend/internal/carts"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/metrics"
	"github.com/strataform/strataform-backend/pkg/pagination"
	"github.com/strataform/strataform-backend/pkg/types"
)

// numberMintAttempts bounds retries when two conversions race for the same
// day-scoped sequence.
const numberMintAttempts = 3

// ConvertInput carries the buyer-supplied fields for a conversion.
type ConvertInput struct {
	DeliveryAddress       types.Address
	RequestedDeliveryDate *time.Time
	SpecialInstructions   *string
}

// ReviewInput carries the admin response fields applied during transitions.
type ReviewInput struct {
	QuotedPriceCents   *int
	QuotedLeadTimeDays *int
	AdminNotes         *string
}

// QuotePage is one page of a quote listing.
type QuotePage struct {
	Quotes     []models.Quote `json:"quotes"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// Service defines the behavior needed by the quote controllers.
type Service interface {
	ConvertCartToQuote(ctx context.Context, companyID uuid.UUID, input ConvertInput) (*models.Quote, error)
	GetForCompany(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error)
	ListForCompany(ctx context.Context, companyID uuid.UUID, status *enums.QuoteStatus, params pagination.Params) (*QuotePage, error)
	Get(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) (*QuotePage, error)
	UpdateStatus(ctx context.Context, quoteID uuid.UUID, next enums.QuoteStatus, input ReviewInput) (*models.Quote, error)
}

type quoteRepository interface {
	WithTx(tx *gorm.DB) *Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	Update(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Quote, error)
	CountCreatedOn(ctx context.Context, day time.Time) (int64, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Quote, bool, error)
}

type cartAccess interface {
	WithTx(tx *gorm.DB) *carts.Repository
	FindActiveByCompany(ctx context.Context, companyID uuid.UUID) (*models.Cart, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	quotes quoteRepository
	carts  cartAccess
	tx     txRunner
	cfg    config.QuotesConfig
	stats  *metrics.QuoteMetrics
	now    func() time.Time
}

// ServiceParams bundles the dependencies required to build a quote service.
type ServiceParams struct {
	QuoteRepo quoteRepository
	CartRepo  cartAccess
	TxRunner  txRunner
	Config    config.QuotesConfig
	Metrics   *metrics.QuoteMetrics
}

// NewService constructs a quote service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.QuoteRepo == nil {
		return nil, fmt.Errorf("quote repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		quotes: params.QuoteRepo,
		carts:  params.CartRepo,
		tx:     params.TxRunner,
		cfg:    params.Config,
		stats:  params.Metrics,
		now:    time.Now,
	}, nil
}

// ConvertCartToQuote atomically snapshots the active cart into a new quote
// and retires the cart. The cart is untouched when any step fails.
func (s *service) ConvertCartToQuote(ctx context.Context, companyID uuid.UUID, input ConvertInput) (*models.Quote, error) {
	cart, err := s.carts.FindActiveByCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.stats.IncConversion("failure")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active cart to convert")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load active cart")
	}

	if err := preflight(cart, input); err != nil {
		s.stats.IncConversion("failure")
		return nil, err
	}

	address := input.DeliveryAddress.Normalized()

	// A unique violation on the quote number aborts the whole transaction,
	// so the retry reruns the conversion from scratch.
	var quote *models.Quote
	for attempt := 0; attempt < numberMintAttempts; attempt++ {
		quote, err = s.convertOnce(ctx, cart, address, input)
		if err == nil {
			break
		}
		if db.IsUniqueViolation(err, "") && attempt < numberMintAttempts-1 {
			continue
		}
		s.stats.IncConversion("failure")
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "convert cart")
	}

	s.stats.IncConversion("success")
	return quote, nil
}

func (s *service) convertOnce(ctx context.Context, cart *models.Cart, address types.Address, input ConvertInput) (*models.Quote, error) {
	items := make([]models.QuoteItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		items = append(items, models.QuoteItem{
			ProductID:          line.ProductID,
			Quantity:           line.Quantity,
			UnitPriceCents:     line.UnitPriceCents,
			FinishOptionID:     line.FinishOptionID,
			UpholsteryOptionID: line.UpholsteryOptionID,
			Notes:              line.Notes,
			Configuration:      line.Configuration,
		})
	}

	var created *models.Quote
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		quoteRepo := s.quotes.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)

		count, err := quoteRepo.CountCreatedOn(ctx, s.now().UTC())
		if err != nil {
			return fmt.Errorf("count quotes for day: %w", err)
		}

		quote := &models.Quote{
			QuoteNumber:           FormatQuoteNumber(s.now().UTC(), count+1),
			CompanyID:             cart.CompanyID,
			Status:                enums.QuoteStatusSubmitted,
			DeliveryAddress:       address,
			RequestedDeliveryDate: input.RequestedDeliveryDate,
			SpecialInstructions:   input.SpecialInstructions,
			Items:                 items,
		}
		created, err = quoteRepo.Create(ctx, quote)
		if err != nil {
			return err
		}
		// The snapshot above is the only surviving copy of the lines.
		if err := cartRepo.DeleteItems(ctx, cart.ID); err != nil {
			return fmt.Errorf("clear converted cart: %w", err)
		}
		return cartRepo.Deactivate(ctx, cart.ID)
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func preflight(cart *models.Cart, input ConvertInput) error {
	var problems error
	if len(cart.Items) == 0 {
		problems = multierr.Append(problems, errors.New("cart has no items"))
	}
	if missing := input.DeliveryAddress.Validate(); missing != "" {
		problems = multierr.Append(problems, fmt.Errorf("delivery address is missing %s", missing))
	}
	if problems == nil {
		return nil
	}

	messages := make([]string, 0)
	for _, e := range multierr.Errors(problems) {
		messages = append(messages, e.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "cart cannot be converted").
		WithDetails(map[string][]string{"problems": messages})
}

func (s *service) GetForCompany(ctx context.Context, companyID, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	if quote.CompanyID != companyID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "quote belongs to another company")
	}
	return s.applyLazyExpiry(ctx, quote)
}

func (s *service) ListForCompany(ctx context.Context, companyID uuid.UUID, status *enums.QuoteStatus, params pagination.Params) (*QuotePage, error) {
	return s.List(ctx, ListFilter{CompanyID: &companyID, Status: status}, params)
}

func (s *service) Get(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	return s.applyLazyExpiry(ctx, quote)
}

func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) (*QuotePage, error) {
	if filter.Status != nil && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status")
	}

	quotes, hasMore, err := s.quotes.List(ctx, filter, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list quotes")
	}

	page := &QuotePage{Quotes: quotes}
	if hasMore && len(quotes) > 0 {
		last := quotes[len(quotes)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return page, nil
}

// UpdateStatus applies an admin transition. Invalid jumps are rejected
// against the lifecycle table rather than written through.
func (s *service) UpdateStatus(ctx context.Context, quoteID uuid.UUID, next enums.QuoteStatus, input ReviewInput) (*models.Quote, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown quote status")
	}

	quote, err := s.load(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if !quote.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move quote from %s to %s", quote.Status, next)).
			WithDetails(map[string]string{"current_status": quote.Status.String()})
	}

	if next == enums.QuoteStatusQuoted {
		if input.QuotedPriceCents != nil {
			quote.QuotedPriceCents = input.QuotedPriceCents
		}
		if input.QuotedLeadTimeDays != nil {
			quote.QuotedLeadTimeDays = input.QuotedLeadTimeDays
		}
		validUntil := s.now().UTC().AddDate(0, 0, s.validityDays())
		quote.ValidUntil = &validUntil
	}
	if input.AdminNotes != nil {
		quote.AdminNotes = input.AdminNotes
	}

	quote.Status = next
	updated, err := s.quotes.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update quote status")
	}

	s.stats.IncTransition(next.String())
	return updated, nil
}

func (s *service) load(ctx context.Context, quoteID uuid.UUID) (*models.Quote, error) {
	quote, err := s.quotes.FindByID(ctx, quoteID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "quote not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load quote")
	}
	return quote, nil
}

// applyLazyExpiry retires a quoted offer whose validity window has lapsed.
// Expiry happens on read; there is no background sweeper.
func (s *service) applyLazyExpiry(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if quote.Status != enums.QuoteStatusQuoted || quote.ValidUntil == nil {
		return quote, nil
	}
	if !s.now().UTC().After(*quote.ValidUntil) {
		return quote, nil
	}

	quote.Status = enums.QuoteStatusExpired
	updated, err := s.quotes.Update(ctx, quote)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "expire quote")
	}
	s.stats.IncTransition(enums.QuoteStatusExpired.String())
	return updated, nil
}

func (s *service) validityDays() int {
	if s.cfg.ValidityDays <= 0 {
		return 30
	}
	return s.cfg.ValidityDays
}
