package quotes

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/internal/carts"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/pagination"
	"github.com/strataform/strataform-backend/pkg/types"
)

type fixture struct {
	svc     *service
	client  *db.Client
	company models.Company
}

func deliveryAddress() types.Address {
	return types.Address{
		Line1:      "500 Commerce Way",
		City:       "Grand Rapids",
		State:      "mi",
		PostalCode: "49503",
		Country:    "US",
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DBConfig{
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Driver:       "sqlite",
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open sqlite client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	err = client.DB().AutoMigrate(
		&models.Company{}, &models.Category{}, &models.Product{},
		&models.Cart{}, &models.CartItem{}, &models.Quote{}, &models.QuoteItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(ServiceParams{
		QuoteRepo: NewRepository(client.DB()),
		CartRepo:  carts.NewRepository(client.DB()),
		TxRunner:  client,
		Config:    config.QuotesConfig{ValidityDays: 30},
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	company := models.Company{Name: "Buyer", ContactEmail: "quotes@example.com", PasswordHash: "x"}
	if err := client.DB().Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return &fixture{svc: svc.(*service), client: client, company: company}
}

func (f *fixture) seedCartWithItems(t *testing.T, lines int) models.Cart {
	t.Helper()
	cart := models.Cart{CompanyID: f.company.ID, IsActive: true}
	if err := f.client.DB().Create(&cart).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	for i := 0; i < lines; i++ {
		item := models.CartItem{
			CartID:         cart.ID,
			ProductID:      uuid.New(),
			Quantity:       2,
			UnitPriceCents: 15000,
		}
		if err := f.client.DB().Create(&item).Error; err != nil {
			t.Fatalf("seed cart item: %v", err)
		}
	}
	return cart
}

func TestConvertCartToQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cart := f.seedCartWithItems(t, 2)

	quote, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if quote.Status != enums.QuoteStatusSubmitted {
		t.Fatalf("expected submitted status, got %s", quote.Status)
	}
	if !strings.HasPrefix(quote.QuoteNumber, "Q-") {
		t.Fatalf("unexpected quote number %s", quote.QuoteNumber)
	}
	if _, seq, err := ParseQuoteNumber(quote.QuoteNumber); err != nil || seq != 1 {
		t.Fatalf("expected first sequence of the day, got %s (%v)", quote.QuoteNumber, err)
	}
	if len(quote.Items) != 2 {
		t.Fatalf("expected 2 copied items, got %d", len(quote.Items))
	}
	if quote.DeliveryAddress.State != "MI" {
		t.Fatalf("expected normalized state, got %q", quote.DeliveryAddress.State)
	}

	// The source cart is retired and its lines are gone.
	var retired models.Cart
	if err := f.client.DB().Where("id = ?", cart.ID).First(&retired).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if retired.IsActive {
		t.Fatal("expected cart deactivated after conversion")
	}
	var leftover int64
	if err := f.client.DB().Model(&models.CartItem{}).Where("cart_id = ?", cart.ID).Count(&leftover).Error; err != nil {
		t.Fatalf("count cart items: %v", err)
	}
	if leftover != 0 {
		t.Fatalf("expected cart items removed after snapshot, found %d", leftover)
	}

	// A second conversion finds no active cart.
	_, err = f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on second conversion, got %v", err)
	}
}

func TestConvertSequencesIncrementWithinDay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seedCartWithItems(t, 1)
	first, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("first convert: %v", err)
	}

	f.seedCartWithItems(t, 1)
	second, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}

	_, seq1, _ := ParseQuoteNumber(first.QuoteNumber)
	_, seq2, _ := ParseQuoteNumber(second.QuoteNumber)
	if seq2 != seq1+1 {
		t.Fatalf("expected consecutive sequences, got %d then %d", seq1, seq2)
	}
}

func TestConvertRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	f.seedCartWithItems(t, 0)

	_, err := f.svc.ConvertCartToQuote(context.Background(), f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	// The cart must survive a failed conversion.
	var cart models.Cart
	if err := f.client.DB().Where("company_id = ?", f.company.ID).First(&cart).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	if !cart.IsActive {
		t.Fatal("failed conversion should leave the cart active")
	}
}

func TestConvertCollectsAllPreflightProblems(t *testing.T) {
	f := newFixture(t)
	f.seedCartWithItems(t, 0)

	_, err := f.svc.ConvertCartToQuote(context.Background(), f.company.ID, ConvertInput{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string][]string)
	if !ok {
		t.Fatalf("expected detail map, got %T", typed.Details())
	}
	if len(details["problems"]) < 2 {
		t.Fatalf("expected empty-cart and address problems together, got %v", details["problems"])
	}
}

func TestUpdateStatusFollowsLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCartWithItems(t, 1)

	quote, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	// submitted -> quoted skips review and must fail.
	price := 250000
	_, err = f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusQuoted, ReviewInput{QuotedPriceCents: &price})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusUnderReview, ReviewInput{}); err != nil {
		t.Fatalf("move to under_review: %v", err)
	}

	lead := 21
	quoted, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusQuoted, ReviewInput{QuotedPriceCents: &price, QuotedLeadTimeDays: &lead})
	if err != nil {
		t.Fatalf("move to quoted: %v", err)
	}
	if quoted.ValidUntil == nil {
		t.Fatal("expected validity window set")
	}
	if quoted.QuotedPriceCents == nil || *quoted.QuotedPriceCents != price {
		t.Fatalf("expected quoted price recorded, got %v", quoted.QuotedPriceCents)
	}

	accepted, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusAccepted, ReviewInput{})
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != enums.QuoteStatusAccepted {
		t.Fatalf("expected accepted, got %s", accepted.Status)
	}

	// Terminal states admit no further moves.
	_, err = f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusDeclined, ReviewInput{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict from terminal state, got %v", err)
	}
}

func TestQuotedTransitionWithoutPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCartWithItems(t, 1)

	quote, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusUnderReview, ReviewInput{}); err != nil {
		t.Fatalf("review: %v", err)
	}

	// The response fields are optional; only the validity window is stamped.
	quoted, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusQuoted, ReviewInput{})
	if err != nil {
		t.Fatalf("quote without price: %v", err)
	}
	if quoted.QuotedPriceCents != nil {
		t.Fatalf("expected no quoted price, got %v", quoted.QuotedPriceCents)
	}
	if quoted.ValidUntil == nil {
		t.Fatal("expected validity window set")
	}
}

func TestQuotedOfferExpiresLazily(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCartWithItems(t, 1)

	quote, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusUnderReview, ReviewInput{}); err != nil {
		t.Fatalf("review: %v", err)
	}
	price := 100000
	if _, err := f.svc.UpdateStatus(ctx, quote.ID, enums.QuoteStatusQuoted, ReviewInput{QuotedPriceCents: &price}); err != nil {
		t.Fatalf("quote: %v", err)
	}

	// Jump the clock past the validity window.
	f.svc.now = func() time.Time { return time.Now().UTC().AddDate(0, 0, 31) }

	reread, err := f.svc.GetForCompany(ctx, f.company.ID, quote.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if reread.Status != enums.QuoteStatusExpired {
		t.Fatalf("expected lazy expiry, got %s", reread.Status)
	}
}

func TestGetForCompanyEnforcesOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedCartWithItems(t, 1)

	quote, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()})
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if _, err := f.svc.GetForCompany(ctx, uuid.New(), quote.ID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign company, got %v", err)
	}

	// The back office reads any quote.
	if _, err := f.svc.Get(ctx, quote.ID); err != nil {
		t.Fatalf("admin get: %v", err)
	}
}

func TestListFiltersByStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		f.seedCartWithItems(t, 1)
		if _, err := f.svc.ConvertCartToQuote(ctx, f.company.ID, ConvertInput{DeliveryAddress: deliveryAddress()}); err != nil {
			t.Fatalf("convert %d: %v", i, err)
		}
	}

	submitted := enums.QuoteStatusSubmitted
	page, err := f.svc.ListForCompany(ctx, f.company.ID, &submitted, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Quotes) != 3 {
		t.Fatalf("expected 3 submitted quotes, got %d", len(page.Quotes))
	}

	accepted := enums.QuoteStatusAccepted
	page, err = f.svc.ListForCompany(ctx, f.company.ID, &accepted, pagination.Params{})
	if err != nil {
		t.Fatalf("list accepted: %v", err)
	}
	if len(page.Quotes) != 0 {
		t.Fatalf("expected no accepted quotes, got %d", len(page.Quotes))
	}
}
