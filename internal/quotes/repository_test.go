package quotes

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strataform/strataform-backend/pkg/config"
	"github.com/strataform/strataform-backend/pkg/db"
	"github.com/strataform/strataform-backend/pkg/db/models"
	"github.com/strataform/strataform-backend/pkg/enums"
	"github.com/strataform/strataform-backend/pkg/pagination"
)

func setupQuotesRepo(t *testing.T) *Repository {
	t.Helper()
	cfg := config.DBConfig{
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Driver:       "sqlite",
		MaxOpenConns: 1,
	}
	client, err := db.New(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.DB().AutoMigrate(&models.Quote{}, &models.QuoteItem{}))
	return NewRepository(client.DB())
}

func seedQuote(t *testing.T, repo *Repository, companyID uuid.UUID, number string, status enums.QuoteStatus, createdAt time.Time) models.Quote {
	t.Helper()
	quote := models.Quote{
		QuoteNumber: number,
		CompanyID:   companyID,
		Status:      status,
	}
	_, err := repo.Create(context.Background(), &quote)
	require.NoError(t, err)

	// Backdate directly; autoCreateTime stamps rows on insert.
	err = repo.db.Model(&models.Quote{}).
		Where("id = ?", quote.ID).
		Update("created_at", createdAt).Error
	require.NoError(t, err)
	quote.CreatedAt = createdAt
	return quote
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	repo := setupQuotesRepo(t)
	ctx := context.Background()

	companyA := uuid.New()
	companyB := uuid.New()
	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		seedQuote(t, repo, companyA, FormatQuoteNumber(base, int64(i+1)), enums.QuoteStatusSubmitted, base.Add(time.Duration(i)*time.Hour))
	}
	seedQuote(t, repo, companyB, FormatQuoteNumber(base, 4), enums.QuoteStatusQuoted, base.Add(4*time.Hour))

	quotes, hasMore, err := repo.List(ctx, ListFilter{CompanyID: &companyA}, pagination.Params{Limit: 2})
	require.NoError(t, err)
	assert.True(t, hasMore)
	require.Len(t, quotes, 2)
	// Newest first.
	assert.True(t, quotes[0].CreatedAt.After(quotes[1].CreatedAt))

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: quotes[1].CreatedAt, ID: quotes[1].ID})
	rest, hasMore, err := repo.List(ctx, ListFilter{CompanyID: &companyA}, pagination.Params{Limit: 2, Cursor: cursor})
	require.NoError(t, err)
	assert.False(t, hasMore)
	require.Len(t, rest, 1)
	assert.NotEqual(t, quotes[0].ID, rest[0].ID)
	assert.NotEqual(t, quotes[1].ID, rest[0].ID)

	status := enums.QuoteStatusQuoted
	quoted, _, err := repo.List(ctx, ListFilter{Status: &status}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, quoted, 1)
	assert.Equal(t, companyB, quoted[0].CompanyID)
}

func TestRepositoryCountCreatedOn(t *testing.T) {
	repo := setupQuotesRepo(t)
	ctx := context.Background()

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	company := uuid.New()
	seedQuote(t, repo, company, FormatQuoteNumber(day, 1), enums.QuoteStatusSubmitted, day.Add(2*time.Hour))
	seedQuote(t, repo, company, FormatQuoteNumber(day, 2), enums.QuoteStatusSubmitted, day.Add(23*time.Hour))
	seedQuote(t, repo, company, FormatQuoteNumber(day.AddDate(0, 0, 1), 1), enums.QuoteStatusSubmitted, day.Add(25*time.Hour))

	count, err := repo.CountCreatedOn(ctx, day.Add(12*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
