package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/internal/companies"
	"github.com/strataform/strataform-backend/internal/pricing"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

type fixture struct {
	svc      Service
	client   *db.Client
	category models.Category
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
		&models.Company{}, &models.PricingTier{}, &models.Category{},
		&models.Product{}, &models.FinishOption{}, &models.UpholsteryOption{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	resolver, err := pricing.NewResolver(companies.NewRepository(client.DB()), pricing.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	svc, err := NewService(NewRepository(client.DB()), resolver)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	category := models.Category{Name: "Seating", Slug: "seating", IsActive: true}
	if err := client.DB().Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	return &fixture{svc: svc, client: client, category: category}
}

func (f *fixture) seedProduct(t *testing.T, sku string, priceCents int, active bool) models.Product {
	t.Helper()
	product := models.Product{
		SKU:                  sku,
		Name:                 "Task Chair " + sku,
		CategoryID:           f.category.ID,
		BasePriceCents:       priceCents,
		MinimumOrderQuantity: 1,
		IsActive:             active,
	}
	if err := f.client.DB().Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestListProductsSkipsInactive(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "TC-100", 10000, true)
	f.seedProduct(t, "TC-101", 12000, false)

	page, err := f.svc.ListProducts(context.Background(), uuid.Nil, ProductFilter{}, pagination.Params{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(page.Products) != 1 {
		t.Fatalf("expected 1 active product, got %d", len(page.Products))
	}
	if page.Products[0].SKU != "TC-100" {
		t.Fatalf("unexpected product %s", page.Products[0].SKU)
	}
	if page.Products[0].EffectivePriceCents != 10000 {
		t.Fatalf("anonymous listing should carry base price, got %d", page.Products[0].EffectivePriceCents)
	}
}

func TestListProductsAppliesCompanyTier(t *testing.T) {
	f := newFixture(t)
	f.seedProduct(t, "TC-200", 20000, true)

	tier := models.PricingTier{Name: "Preferred", PercentageAdjustment: -15, AppliesToAllProducts: true, IsActive: true}
	if err := f.client.DB().Create(&tier).Error; err != nil {
		t.Fatalf("seed tier: %v", err)
	}
	company := models.Company{Name: "Co", ContactEmail: "catalog@example.com", PasswordHash: "x", PricingTierID: &tier.ID}
	if err := f.client.DB().Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}

	page, err := f.svc.ListProducts(context.Background(), company.ID, ProductFilter{}, pagination.Params{})
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(page.Products) != 1 {
		t.Fatalf("expected 1 product, got %d", len(page.Products))
	}
	if got := page.Products[0].EffectivePriceCents; got != 17000 {
		t.Fatalf("expected tier-adjusted 17000, got %d", got)
	}
}

func TestListProductsPaginates(t *testing.T) {
	f := newFixture(t)
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		product := f.seedProduct(t, fmt.Sprintf("TC-%03d", i), 1000, true)
		// Spread creation times so cursor ordering is deterministic.
		stamp := base.Add(time.Duration(i) * time.Minute)
		if err := f.client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("created_at", stamp).Error; err != nil {
			t.Fatalf("stamp product: %v", err)
		}
	}

	first, err := f.svc.ListProducts(context.Background(), uuid.Nil, ProductFilter{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Products) != 2 || first.NextCursor == "" {
		t.Fatalf("expected full first page with cursor, got %d items", len(first.Products))
	}

	second, err := f.svc.ListProducts(context.Background(), uuid.Nil, ProductFilter{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Products) != 2 {
		t.Fatalf("expected 2 items on second page, got %d", len(second.Products))
	}
	if second.Products[0].SKU == first.Products[0].SKU {
		t.Fatal("pages overlap")
	}
}

func TestGetProductIncludesOptions(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "TC-300", 30000, true)

	finish := models.FinishOption{ProductID: product.ID, Name: "Walnut", IsActive: true}
	if err := f.client.DB().Create(&finish).Error; err != nil {
		t.Fatalf("seed finish: %v", err)
	}
	grade := "A"
	fabric := models.UpholsteryOption{ProductID: product.ID, Name: "Wool Blend", Grade: &grade, IsActive: true}
	if err := f.client.DB().Create(&fabric).Error; err != nil {
		t.Fatalf("seed upholstery: %v", err)
	}

	detail, err := f.svc.GetProduct(context.Background(), uuid.Nil, product.ID)
	if err != nil {
		t.Fatalf("get product: %v", err)
	}
	if len(detail.FinishOptions) != 1 || detail.FinishOptions[0].Name != "Walnut" {
		t.Fatalf("unexpected finish options: %+v", detail.FinishOptions)
	}
	if len(detail.UpholsteryOptions) != 1 || detail.UpholsteryOptions[0].Name != "Wool Blend" {
		t.Fatalf("unexpected upholstery options: %+v", detail.UpholsteryOptions)
	}
}

func TestGetProductHidesInactive(t *testing.T) {
	f := newFixture(t)
	product := f.seedProduct(t, "TC-400", 5000, false)

	_, err := f.svc.GetProduct(context.Background(), uuid.Nil, product.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for inactive product, got %v", err)
	}
}
