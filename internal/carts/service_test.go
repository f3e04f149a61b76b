package carts

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/internal/catalog"
	"github.com/strataform/strataform-backend/internal/companies"
	"github.com/strataform/strataform-backend/internal/pricing"
	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	pkgerrors "github.com/strataform/strataform-backend/pkg/errors"
	"github.com/strataform/strataform-backend/pkg/types"
)

type fixture struct {
	svc     Service
	client  *db.Client
	company models.Company
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
		&models.Company{}, &models.PricingTier{}, &models.Category{}, &models.Product{},
		&models.FinishOption{}, &models.UpholsteryOption{}, &models.Cart{}, &models.CartItem{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// AutoMigrate cannot express the partial index the SQL migrations add.
	if err := client.DB().Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS carts_one_active_per_company ON carts (company_id) WHERE is_active",
	).Error; err != nil {
		t.Fatalf("create partial index: %v", err)
	}

	resolver, err := pricing.NewResolver(companies.NewRepository(client.DB()), pricing.NewRepository(client.DB()))
	if err != nil {
		t.Fatalf("build resolver: %v", err)
	}
	svc, err := NewService(NewRepository(client.DB()), catalog.NewRepository(client.DB()), resolver)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	company := models.Company{Name: "Buyer", ContactEmail: "buyer@example.com", PasswordHash: "x"}
	if err := client.DB().Create(&company).Error; err != nil {
		t.Fatalf("seed company: %v", err)
	}
	return &fixture{svc: svc, client: client, company: company}
}

func (f *fixture) seedProduct(t *testing.T, priceCents, moq int) models.Product {
	t.Helper()
	category := models.Category{Name: uuid.NewString(), Slug: uuid.NewString(), IsActive: true}
	if err := f.client.DB().Create(&category).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
	product := models.Product{
		SKU:                  uuid.NewString(),
		Name:                 "Conference Table",
		CategoryID:           category.ID,
		BasePriceCents:       priceCents,
		MinimumOrderQuantity: moq,
		IsActive:             true,
	}
	if err := f.client.DB().Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func TestGetActiveCartCreatesOnFirstUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.GetActiveCart(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("first read: %v", err)
	}
	if !first.IsActive || len(first.Items) != 0 {
		t.Fatalf("expected fresh empty cart, got %+v", first)
	}

	second, err := f.svc.GetActiveCart(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("second read: %v", err)
	}
	if second.ID != first.ID {
		t.Fatal("second read should return the same cart")
	}
}

func TestAddItemMergesSameConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 50000, 2)

	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("first add: %v", err)
	}
	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(view.Items))
	}
	if view.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", view.Items[0].Quantity)
	}
	if view.SubtotalCents != 250000 {
		t.Fatalf("expected subtotal 250000, got %d", view.SubtotalCents)
	}
}

func TestAddItemDistinctFinishStaysSeparate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	finish := models.FinishOption{ProductID: product.ID, Name: "Oak", IsActive: true}
	if err := f.client.DB().Create(&finish).Error; err != nil {
		t.Fatalf("seed finish: %v", err)
	}

	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("add base: %v", err)
	}
	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1, FinishOptionID: &finish.ID})
	if err != nil {
		t.Fatalf("add finished: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 lines for distinct configurations, got %d", len(view.Items))
	}
}

func TestAddItemEnforcesMinimumOrderQuantity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 5)

	_, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 4})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error below MOQ, got %v", err)
	}

	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 5}); err != nil {
		t.Fatalf("quantity equal to MOQ should pass: %v", err)
	}
}

func TestAddItemRejectsForeignOption(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)
	other := f.seedProduct(t, 9000, 1)

	foreign := models.FinishOption{ProductID: other.ID, Name: "Maple", IsActive: true}
	if err := f.client.DB().Create(&foreign).Error; err != nil {
		t.Fatalf("seed finish: %v", err)
	}

	_, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1, FinishOptionID: &foreign.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for foreign option, got %v", err)
	}
}

func TestAddItemSnapshotsTierPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 100000, 1)

	tier := models.PricingTier{Name: "Preferred", PercentageAdjustment: -20, AppliesToAllProducts: true, IsActive: true}
	if err := f.client.DB().Create(&tier).Error; err != nil {
		t.Fatalf("seed tier: %v", err)
	}
	if err := f.client.DB().Model(&models.Company{}).Where("id = ?", f.company.ID).Update("pricing_tier_id", tier.ID).Error; err != nil {
		t.Fatalf("assign tier: %v", err)
	}

	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if view.Items[0].UnitPriceCents != 80000 {
		t.Fatalf("expected snapshotted tier price 80000, got %d", view.Items[0].UnitPriceCents)
	}

	// Changing the base price later must not move the snapshot.
	if err := f.client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("base_price_cents", 999999).Error; err != nil {
		t.Fatalf("reprice product: %v", err)
	}
	reread, err := f.svc.GetActiveCart(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("reread cart: %v", err)
	}
	if reread.Items[0].UnitPriceCents != 80000 {
		t.Fatalf("snapshot moved, got %d", reread.Items[0].UnitPriceCents)
	}
}

func TestItemOwnershipIsEnforced(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	itemID := view.Items[0].ID

	intruder := models.Company{Name: "Intruder", ContactEmail: "intruder@example.com", PasswordHash: "x"}
	if err := f.client.DB().Create(&intruder).Error; err != nil {
		t.Fatalf("seed intruder: %v", err)
	}

	three := 3
	if _, err := f.svc.UpdateItem(ctx, intruder.ID, itemID, UpdateItemInput{Quantity: &three}); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden on update, got %v", err)
	}
	if _, err := f.svc.RemoveItem(ctx, intruder.ID, itemID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden on remove, got %v", err)
	}

	// The owner can still mutate the line.
	four := 4
	updated, err := f.svc.UpdateItem(ctx, f.company.ID, itemID, UpdateItemInput{Quantity: &four})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", updated.Items[0].Quantity)
	}
}

func TestClearCartRemovesAllLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("add item: %v", err)
	}
	view, err := f.svc.ClearCart(ctx, f.company.ID)
	if err != nil {
		t.Fatalf("clear cart: %v", err)
	}
	if len(view.Items) != 0 || view.SubtotalCents != 0 {
		t.Fatalf("expected empty cart after clear, got %+v", view)
	}
}

func TestAddItemMergeOverwritesNotesAndConfiguration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	firstNotes := "left return"
	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{
		ProductID:     product.ID,
		Quantity:      1,
		Notes:         &firstNotes,
		Configuration: types.Configuration{"layout": "straight"},
	}); err != nil {
		t.Fatalf("first add: %v", err)
	}

	secondNotes := "right return"
	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{
		ProductID:     product.ID,
		Quantity:      2,
		Notes:         &secondNotes,
		Configuration: types.Configuration{"layout": "ganged"},
	})
	if err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(view.Items) != 1 {
		t.Fatalf("expected merged single line, got %d", len(view.Items))
	}
	line := view.Items[0]
	if line.Quantity != 3 {
		t.Fatalf("expected quantity 3, got %d", line.Quantity)
	}
	if line.Notes == nil || *line.Notes != secondNotes {
		t.Fatalf("expected newly supplied notes to overwrite, got %v", line.Notes)
	}
	if line.Configuration["layout"] != "ganged" {
		t.Fatalf("expected newly supplied configuration to overwrite, got layout=%q", line.Configuration["layout"])
	}
}

func TestUpdateItemChangesSelectionAndNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	finish := models.FinishOption{ProductID: product.ID, Name: "Walnut", IsActive: true}
	if err := f.client.DB().Create(&finish).Error; err != nil {
		t.Fatalf("seed finish: %v", err)
	}

	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	itemID := view.Items[0].ID

	notes := "match reception desk"
	updated, err := f.svc.UpdateItem(ctx, f.company.ID, itemID, UpdateItemInput{
		FinishOptionID: &finish.ID,
		Notes:          &notes,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	line := updated.Items[0]
	if line.FinishOptionID == nil || *line.FinishOptionID != finish.ID {
		t.Fatalf("expected finish applied, got %v", line.FinishOptionID)
	}
	if line.Notes == nil || *line.Notes != notes {
		t.Fatalf("expected notes applied, got %v", line.Notes)
	}

	// A selection belonging to another product is rejected.
	other := f.seedProduct(t, 9000, 1)
	foreign := models.FinishOption{ProductID: other.ID, Name: "Ash", IsActive: true}
	if err := f.client.DB().Create(&foreign).Error; err != nil {
		t.Fatalf("seed foreign finish: %v", err)
	}
	_, err = f.svc.UpdateItem(ctx, f.company.ID, itemID, UpdateItemInput{FinishOptionID: &foreign.ID})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for foreign finish, got %v", err)
	}
}

func TestUpdateItemSelectionMergesIntoMatchingLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	finish := models.FinishOption{ProductID: product.ID, Name: "Oak", IsActive: true}
	if err := f.client.DB().Create(&finish).Error; err != nil {
		t.Fatalf("seed finish: %v", err)
	}

	if _, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 2, FinishOptionID: &finish.ID}); err != nil {
		t.Fatalf("add finished line: %v", err)
	}
	view, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 3})
	if err != nil {
		t.Fatalf("add bare line: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("expected 2 lines before the edit, got %d", len(view.Items))
	}

	var bareID uuid.UUID
	for _, item := range view.Items {
		if item.FinishOptionID == nil {
			bareID = item.ID
		}
	}

	merged, err := f.svc.UpdateItem(ctx, f.company.ID, bareID, UpdateItemInput{FinishOptionID: &finish.ID})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if len(merged.Items) != 1 {
		t.Fatalf("expected lines folded together, got %d", len(merged.Items))
	}
	if merged.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity 5, got %d", merged.Items[0].Quantity)
	}
}

func TestAddItemRejectsInactiveProduct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	product := f.seedProduct(t, 10000, 1)

	if err := f.client.DB().Model(&models.Product{}).Where("id = ?", product.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	_, err := f.svc.AddItem(ctx, f.company.ID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for retired product, got %v", err)
	}
}
