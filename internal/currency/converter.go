package currency

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	"github.com/astraline/astraline-backend/pkg/logger"
)

// Converter converts amounts between arbitrary currencies and the base unit
// using a snapshot of exchange rates. A missing rate never fails a
// conversion: the amount passes through unchanged and the boolean result
// reports that no rate was applied, so callers can decide whether to surface
// the gap.
type Converter struct {
	rates map[enums.Currency]decimal.Decimal
	logg  *logger.Logger
}

// NewConverter builds a converter from the supplied rate rows. Rows with a
// non-positive rate are ignored.
func NewConverter(rates []models.ExchangeRate, logg *logger.Logger) Converter {
	index := make(map[enums.Currency]decimal.Decimal, len(rates))
	for _, rate := range rates {
		if rate.RateToBase.IsPositive() {
			index[enums.NormalizeCurrency(string(rate.CurrencyCode))] = rate.RateToBase
		}
	}
	return Converter{rates: index, logg: logg}
}

// ToBase converts an amount from the given currency into the base unit.
// The boolean reports whether a rate (or the base identity) was applied.
func (c Converter) ToBase(ctx context.Context, amount decimal.Decimal, code enums.Currency) (decimal.Decimal, bool) {
	code = enums.NormalizeCurrency(string(code))
	if code.IsBase() || code.IsZero() {
		return amount, true
	}
	rate, ok := c.rates[code]
	if !ok {
		c.warnMissingRate(ctx, code)
		return amount, false
	}
	return amount.Mul(rate), true
}

// FromBase converts a base-unit amount into the given currency.
func (c Converter) FromBase(ctx context.Context, amount decimal.Decimal, code enums.Currency) (decimal.Decimal, bool) {
	code = enums.NormalizeCurrency(string(code))
	if code.IsBase() || code.IsZero() {
		return amount, true
	}
	rate, ok := c.rates[code]
	if !ok || rate.IsZero() {
		c.warnMissingRate(ctx, code)
		return amount, false
	}
	return amount.Div(rate), true
}

// Convert moves an amount between two currencies through the base unit.
// Both legs must resolve for the result to count as converted.
func (c Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to enums.Currency) (decimal.Decimal, bool) {
	from = enums.NormalizeCurrency(string(from))
	to = enums.NormalizeCurrency(string(to))
	if from == to {
		return amount, true
	}
	base, okFrom := c.ToBase(ctx, amount, from)
	out, okTo := c.FromBase(ctx, base, to)
	return out, okFrom && okTo
}

// HasRate reports whether a conversion for the given currency would use a
// real rate rather than the passthrough fallback.
func (c Converter) HasRate(code enums.Currency) bool {
	code = enums.NormalizeCurrency(string(code))
	if code.IsBase() || code.IsZero() {
		return true
	}
	_, ok := c.rates[code]
	return ok
}

func (c Converter) warnMissingRate(ctx context.Context, code enums.Currency) {
	if c.logg == nil {
		return
	}
	logCtx := c.logg.WithFields(ctx, map[string]any{"currency": string(code)})
	c.logg.Warn(logCtx, "currency.rate_missing_passthrough")
}
