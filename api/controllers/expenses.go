package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/expenses"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type createExpenseRequest struct {
	Description string          `json:"description" validate:"required"`
	Category    *string         `json:"category,omitempty"`
	Amount      decimal.Decimal `json:"amount" validate:"required"`
	Currency    string          `json:"currency"`
	IncurredAt  *time.Time      `json:"incurred_at,omitempty"`
	ReceiptRef  *string         `json:"receipt_ref,omitempty"`
}

// ListExpenses returns expenses, optionally filtered by approval status.
func ListExpenses(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.ExpenseStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			parsed := enums.ExpenseStatus(strings.ToLower(raw))
			switch parsed {
			case enums.ExpenseStatusPending, enums.ExpenseStatusApproved, enums.ExpenseStatusRejected:
				status = &parsed
			default:
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
		}

		rows, err := svc.List(r.Context(), status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// GetExpense returns a single expense by id.
func GetExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

// CreateExpense records a pending expense for later approval.
func CreateExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createExpenseRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := expenses.CreateExpenseInput{
			Description: body.Description,
			Category:    body.Category,
			Amount:      body.Amount,
			Currency:    enums.NormalizeCurrency(body.Currency),
			ReceiptRef:  body.ReceiptRef,
			SubmittedBy: &actor.UserID,
		}
		if body.IncurredAt != nil {
			input.IncurredAt = *body.IncurredAt
		}

		expense, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, expense)
	}
}

// ApproveExpense marks an expense approved and posts the ledger entry.
func ApproveExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Approve(r.Context(), id, expenses.Actor{UserID: actor.UserID, Role: actor.Role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}

// RejectExpense marks an expense rejected without touching the ledger.
func RejectExpense(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "expenseId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expense, err := svc.Reject(r.Context(), id, expenses.Actor{UserID: actor.UserID, Role: actor.Role})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, expense)
	}
}
