package invoices

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

func fixedLine(amount int64) LineInput {
	return LineInput{
		UnitType:  enums.UnitTypeFixed,
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.NewFromInt(amount),
	}
}

func percentLine(pct int64) LineInput {
	return LineInput{
		UnitType:  enums.UnitTypePercent,
		UnitPrice: decimal.NewFromInt(pct),
	}
}

func TestComputeLineAmountsCascades(t *testing.T) {
	amounts, subtotal := ComputeLineAmounts([]LineInput{fixedLine(100), percentLine(10)})
	require.Len(t, amounts, 2)
	require.True(t, amounts[0].Equal(decimal.NewFromInt(100)))
	require.True(t, amounts[1].Equal(decimal.NewFromInt(10)), "10%% of the 100 before it")
	require.True(t, subtotal.Equal(decimal.NewFromInt(110)))
}

func TestComputeLineAmountsOrderDependence(t *testing.T) {
	_, subtotal := ComputeLineAmounts([]LineInput{percentLine(10), fixedLine(100)})
	require.True(t, subtotal.Equal(decimal.NewFromInt(100)), "leading percent row has nothing to take a share of")
}

func TestComputeLineAmountsLeadingPercentIsZero(t *testing.T) {
	amounts, _ := ComputeLineAmounts([]LineInput{percentLine(50)})
	require.True(t, amounts[0].IsZero())
}

func TestComputeLineAmountsKgUsesSuppliedAmount(t *testing.T) {
	kg := decimal.NewFromInt(12)
	amounts, subtotal := ComputeLineAmounts([]LineInput{
		{UnitType: enums.UnitTypeKg, Quantity: decimal.NewFromInt(3), UnitPrice: decimal.NewFromInt(999), Amount: kg},
	})
	require.True(t, amounts[0].Equal(kg), "kg rows arrive priced, quantity and unit price are ignored")
	require.True(t, subtotal.Equal(kg))
}

func TestComputeLineAmountsStackedPercents(t *testing.T) {
	// Goods 100, handling 10% of goods, surcharge 10% of goods+handling.
	_, subtotal := ComputeLineAmounts([]LineInput{fixedLine(100), percentLine(10), percentLine(10)})
	require.True(t, subtotal.Equal(decimal.NewFromInt(121)), "got %s", subtotal)
}

func TestParseDiscount(t *testing.T) {
	subtotal := decimal.NewFromInt(200)

	cases := []struct {
		name string
		raw  string
		want decimal.Decimal
	}{
		{"percent", "10%", decimal.NewFromInt(20)},
		{"flat with currency sign", "$25.00", decimal.NewFromInt(25)},
		{"garbage", "garbage", decimal.Zero},
		{"empty", "", decimal.Zero},
		{"flat plain", "15", decimal.NewFromInt(15)},
		{"percent with spaces", " 5 % ", decimal.NewFromInt(10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseDiscount(tc.raw, subtotal)
			require.True(t, got.Equal(tc.want), "raw %q: want %s got %s", tc.raw, tc.want, got)
		})
	}
}

func TestComputeTotalsTaxAfterDiscount(t *testing.T) {
	discount := "20%"
	totals := ComputeTotals(context.Background(), decimal.NewFromInt(100), &discount, decimal.NewFromInt(10), enums.CurrencyTZS, currency.Converter{})

	require.True(t, totals.DiscountAmount.Equal(decimal.NewFromInt(20)))
	require.True(t, totals.AfterDiscount.Equal(decimal.NewFromInt(80)))
	require.True(t, totals.TaxAmount.Equal(decimal.NewFromInt(8)))
	require.True(t, totals.Total.Equal(decimal.NewFromInt(88)))
	require.Nil(t, totals.Base, "base equivalents are omitted for base-currency invoices")
}

func TestComputeTotalsDiscountCanExceedSubtotal(t *testing.T) {
	discount := "150%"
	totals := ComputeTotals(context.Background(), decimal.NewFromInt(100), &discount, decimal.Zero, enums.CurrencyTZS, currency.Converter{})
	require.True(t, totals.AfterDiscount.Equal(decimal.NewFromInt(-50)), "oversized discounts stay visible, not clamped")
}

func TestComputeTotalsBaseEquivalents(t *testing.T) {
	conv := currency.NewConverter([]models.ExchangeRate{
		{CurrencyCode: "USD", RateToBase: decimal.NewFromInt(2500)},
	}, nil)

	totals := ComputeTotals(context.Background(), decimal.NewFromInt(100), nil, decimal.Zero, "USD", conv)
	require.NotNil(t, totals.Base)
	require.True(t, totals.Base.Subtotal.Equal(decimal.NewFromInt(250000)))
	require.True(t, totals.Base.Total.Equal(decimal.NewFromInt(250000)))
}

func TestComputeTotalsMissingRateOmitsBase(t *testing.T) {
	totals := ComputeTotals(context.Background(), decimal.NewFromInt(100), nil, decimal.Zero, "XYZ", currency.NewConverter(nil, nil))
	require.Nil(t, totals.Base)
}
