package currency

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

func testRates() []models.ExchangeRate {
	return []models.ExchangeRate{
		{CurrencyCode: "USD", CurrencyName: "US Dollar", RateToBase: decimal.NewFromInt(2500)},
		{CurrencyCode: "KES", CurrencyName: "Kenyan Shilling", RateToBase: decimal.NewFromInt(20)},
	}
}

func TestConverterToBase(t *testing.T) {
	conv := NewConverter(testRates(), nil)
	ctx := context.Background()

	got, ok := conv.ToBase(ctx, decimal.NewFromInt(100), "USD")
	require.True(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(250000)), "got %s", got)
}

func TestConverterBaseIsIdentity(t *testing.T) {
	conv := NewConverter(testRates(), nil)
	ctx := context.Background()

	got, ok := conv.ToBase(ctx, decimal.NewFromInt(42), enums.CurrencyTZS)
	require.True(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(42)))

	got, ok = conv.FromBase(ctx, decimal.NewFromInt(42), enums.CurrencyTZS)
	require.True(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(42)))
}

func TestConverterMissingRatePassthrough(t *testing.T) {
	conv := NewConverter(nil, nil)
	ctx := context.Background()

	got, ok := conv.ToBase(ctx, decimal.NewFromInt(100), "XYZ")
	require.False(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(100)), "missing rate must pass the amount through unchanged")

	got, ok = conv.FromBase(ctx, decimal.NewFromInt(100), "XYZ")
	require.False(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(100)))
}

func TestConverterConvertThroughBase(t *testing.T) {
	conv := NewConverter(testRates(), nil)
	ctx := context.Background()

	// 10 USD -> 25000 TZS -> 1250 KES
	got, ok := conv.Convert(ctx, decimal.NewFromInt(10), "USD", "KES")
	require.True(t, ok)
	require.True(t, got.Equal(decimal.NewFromInt(1250)), "got %s", got)
}

func TestConverterConvertMissingLeg(t *testing.T) {
	conv := NewConverter(testRates(), nil)
	ctx := context.Background()

	got, ok := conv.Convert(ctx, decimal.NewFromInt(10), "USD", "XYZ")
	require.False(t, ok)
	// The USD leg still applies before the passthrough.
	require.True(t, got.Equal(decimal.NewFromInt(25000)))
}

func TestConverterIgnoresNonPositiveRates(t *testing.T) {
	rates := []models.ExchangeRate{{CurrencyCode: "BAD", RateToBase: decimal.Zero}}
	conv := NewConverter(rates, nil)
	require.False(t, conv.HasRate("BAD"))
	require.True(t, conv.HasRate("TZS"))
}
