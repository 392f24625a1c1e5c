package rates

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

func setupRatesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS exchange_rates (
  id TEXT PRIMARY KEY,
  currency_code TEXT NOT NULL UNIQUE,
  currency_name TEXT NOT NULL,
  rate_to_base TEXT NOT NULL,
  updated_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupRatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rate := &models.ExchangeRate{
		ID:           uuid.New(),
		CurrencyCode: "USD",
		CurrencyName: "US Dollar",
		RateToBase:   decimal.NewFromInt(2500),
	}
	require.NoError(t, repo.Create(ctx, rate))

	found, err := repo.FindByCurrency(ctx, "USD")
	require.NoError(t, err)
	require.Equal(t, rate.ID, found.ID)
	require.True(t, found.RateToBase.Equal(decimal.NewFromInt(2500)))

	byID, err := repo.FindByID(ctx, rate.ID)
	require.NoError(t, err)
	require.Equal(t, rate.CurrencyCode, byID.CurrencyCode)
}

func TestRepositoryListOrdersByCode(t *testing.T) {
	db := setupRatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	for _, code := range []string{"USD", "AED", "KES"} {
		require.NoError(t, repo.Create(ctx, &models.ExchangeRate{
			ID:           uuid.New(),
			CurrencyCode: enums.NormalizeCurrency(code),
			CurrencyName: code,
			RateToBase:   decimal.NewFromInt(1),
		}))
	}

	rows, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "AED", rows[0].CurrencyCode.String())
	require.Equal(t, "KES", rows[1].CurrencyCode.String())
	require.Equal(t, "USD", rows[2].CurrencyCode.String())
}

func TestRepositoryDelete(t *testing.T) {
	db := setupRatesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	rate := &models.ExchangeRate{
		ID:           uuid.New(),
		CurrencyCode: "USD",
		CurrencyName: "US Dollar",
		RateToBase:   decimal.NewFromInt(2500),
	}
	require.NoError(t, repo.Create(ctx, rate))
	require.NoError(t, repo.Delete(ctx, rate.ID))

	_, err := repo.FindByID(ctx, rate.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
