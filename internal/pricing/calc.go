package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

var oneHundred = decimal.NewFromInt(100)

// QuoteLine is one applied charge in a quote breakdown.
type QuoteLine struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
}

// Quote is a calculator result. Total = Base plus every line, in order.
type Quote struct {
	Base     decimal.Decimal `json:"base"`
	Lines    []QuoteLine     `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Currency enums.Currency  `json:"currency"`
}

type chargeRow struct {
	label        string
	chargeType   enums.ChargeType
	value        decimal.Decimal
	active       bool
	displayOrder int
}

// applyCascading folds active charges over a running total in display order.
// Fixed rows add their value; percentage rows add value% of the running
// total, so row order changes the outcome.
func applyCascading(base decimal.Decimal, rows []chargeRow) ([]QuoteLine, decimal.Decimal) {
	ordered := activeInDisplayOrder(rows)
	lines := make([]QuoteLine, 0, len(ordered))
	running := base
	for _, row := range ordered {
		var amount decimal.Decimal
		if row.chargeType == enums.ChargeTypePercentage {
			amount = running.Mul(row.value).Div(oneHundred)
		} else {
			amount = row.value
		}
		running = running.Add(amount)
		lines = append(lines, QuoteLine{Label: row.label, Amount: amount})
	}
	return lines, running
}

// applyAgainstBase applies every active row against the same fixed base.
// Percentage rows take value% of the base regardless of prior rows; used by
// the duty schedule, where each levy is assessed on the CIF value alone.
func applyAgainstBase(base decimal.Decimal, rows []chargeRow) ([]QuoteLine, decimal.Decimal) {
	ordered := activeInDisplayOrder(rows)
	lines := make([]QuoteLine, 0, len(ordered))
	total := base
	for _, row := range ordered {
		var amount decimal.Decimal
		if row.chargeType == enums.ChargeTypePercentage {
			amount = base.Mul(row.value).Div(oneHundred)
		} else {
			amount = row.value
		}
		total = total.Add(amount)
		lines = append(lines, QuoteLine{Label: row.label, Amount: amount})
	}
	return lines, total
}

func activeInDisplayOrder(rows []chargeRow) []chargeRow {
	ordered := make([]chargeRow, 0, len(rows))
	for _, row := range rows {
		if row.active {
			ordered = append(ordered, row)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].displayOrder < ordered[j].displayOrder
	})
	return ordered
}

// ChargeableWeight clamps the actual weight to the region's minimum.
func ChargeableWeight(weight, minimum decimal.Decimal) decimal.Decimal {
	if weight.LessThan(minimum) {
		return minimum
	}
	return weight
}
