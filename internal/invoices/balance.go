package invoices

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

// BalanceView is the derived payment state of an invoice.
type BalanceView struct {
	TotalPaid        decimal.Decimal `json:"total_paid"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	IsPaid           bool            `json:"is_paid"`
	IsPartiallyPaid  bool            `json:"is_partially_paid"`
	IsOverdue        bool            `json:"is_overdue"`
}

// TotalPaid reconciles the denormalized amount_paid cache against the live
// verified payment rows. The cache can lag behind the rows, so the larger of
// the two wins.
func TotalPaid(invoice models.Invoice, payments []models.Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, payment := range payments {
		if payment.VerificationStatus == enums.VerificationStatusVerified {
			sum = sum.Add(payment.Amount)
		}
	}
	if invoice.AmountPaid.GreaterThan(sum) {
		return invoice.AmountPaid
	}
	return sum
}

// RemainingBalance clamps at zero: overpayment never shows as a negative due.
func RemainingBalance(invoice models.Invoice, totalPaid decimal.Decimal) decimal.Decimal {
	remaining := invoice.Amount.Sub(totalPaid)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// DeriveBalance computes the full balance view from an invoice and its
// loaded payment rows.
func DeriveBalance(invoice models.Invoice) BalanceView {
	return DeriveBalanceAt(invoice, time.Now().UTC())
}

// DeriveBalanceAt is DeriveBalance against an explicit clock. The overdue flag
// does not wait for the cron sweep: a past-due date with an unpaid balance is
// overdue even while the stored status still says pending.
func DeriveBalanceAt(invoice models.Invoice, now time.Time) BalanceView {
	totalPaid := TotalPaid(invoice, invoice.Payments)
	remaining := RemainingBalance(invoice, totalPaid)
	pastDue := invoice.Status == enums.InvoiceStatusOverdue ||
		(invoice.DueDate != nil && invoice.DueDate.Before(now) && invoice.Status != enums.InvoiceStatusCancelled)
	return BalanceView{
		TotalPaid:        totalPaid,
		RemainingBalance: remaining,
		IsPaid:           invoice.Status == enums.InvoiceStatusPaid || !remaining.IsPositive(),
		IsPartiallyPaid:  totalPaid.IsPositive() && remaining.IsPositive(),
		IsOverdue:        pastDue && remaining.IsPositive(),
	}
}
