package invoices

import (
	"context"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// LineInput is one row of the cascading line calculator, in display order.
type LineInput struct {
	UnitType  enums.UnitType
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	// Amount is only consulted for kg rows, whose figure is priced per
	// kilogram upstream and arrives precomputed.
	Amount decimal.Decimal
}

// ComputeLineAmounts folds the ordered rows left to right. Percent rows take
// their share of the running total accumulated so far, so the caller's order
// is load bearing: moving a percent row changes every figure after it. A
// percent row in first position yields zero, which is the intended result,
// not an error.
func ComputeLineAmounts(items []LineInput) ([]decimal.Decimal, decimal.Decimal) {
	amounts := make([]decimal.Decimal, 0, len(items))
	runningTotal := decimal.Zero
	for _, item := range items {
		var amount decimal.Decimal
		switch item.UnitType {
		case enums.UnitTypePercent:
			amount = runningTotal.Mul(item.UnitPrice).Div(oneHundred)
		case enums.UnitTypeKg:
			amount = item.Amount
		default:
			amount = item.Quantity.Mul(item.UnitPrice)
		}
		amounts = append(amounts, amount)
		runningTotal = runningTotal.Add(amount)
	}
	return amounts, runningTotal
}

var nonNumericPattern = regexp.MustCompile(`[^0-9.\-]`)

// ParseDiscount turns a free-text discount ("10%", "$25.00") into an amount.
// A % marker means a share of the subtotal; anything else is stripped down to
// a flat figure. Unparseable input coerces to zero rather than failing.
func ParseDiscount(raw string, subtotal decimal.Decimal) decimal.Decimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero
	}
	isPercent := strings.Contains(raw, "%")
	cleaned := nonNumericPattern.ReplaceAllString(raw, "")
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero
	}
	if isPercent {
		return subtotal.Mul(value).Div(oneHundred)
	}
	return value
}

// Totals carries the derived financial figures of an invoice.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	AfterDiscount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
	// Base holds base-currency equivalents, present only when the invoice
	// currency differs from the base and a rate was available.
	Base *BaseTotals
}

// BaseTotals mirrors Totals in the base currency.
type BaseTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ComputeTotals applies the discount and then the tax rate on top of the
// discounted figure. The discounted subtotal is deliberately not clamped at
// zero; an oversized discount is the caller's mistake and stays visible.
func ComputeTotals(ctx context.Context, subtotal decimal.Decimal, discount *string, taxRate decimal.Decimal, code enums.Currency, conv currency.Converter) Totals {
	discountAmount := decimal.Zero
	if discount != nil {
		discountAmount = ParseDiscount(*discount, subtotal)
	}
	afterDiscount := subtotal.Sub(discountAmount)
	taxAmount := afterDiscount.Mul(taxRate).Div(oneHundred)
	total := afterDiscount.Add(taxAmount)

	totals := Totals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		AfterDiscount:  afterDiscount,
		TaxAmount:      taxAmount,
		Total:          total,
	}

	if !code.IsBase() && !code.IsZero() && conv.HasRate(code) {
		subtotalBase, _ := conv.ToBase(ctx, subtotal, code)
		discountBase, _ := conv.ToBase(ctx, discountAmount, code)
		taxBase, _ := conv.ToBase(ctx, taxAmount, code)
		totalBase, _ := conv.ToBase(ctx, total, code)
		totals.Base = &BaseTotals{
			Subtotal:       subtotalBase,
			DiscountAmount: discountBase,
			TaxAmount:      taxBase,
			Total:          totalBase,
		}
	}
	return totals
}

// LineInputsFromModels adapts persisted rows into calculator rows, honoring
// their stored position.
func LineInputsFromModels(items []models.InvoiceLineItem) []LineInput {
	inputs := make([]LineInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, LineInput{
			UnitType:  item.UnitType,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Amount:    item.Amount,
		})
	}
	return inputs
}
