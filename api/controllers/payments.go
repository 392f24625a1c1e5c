package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/payments"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type paymentRequest struct {
	Amount           decimal.Decimal `json:"amount" validate:"required"`
	Currency         string          `json:"currency"`
	Method           string          `json:"method" validate:"required"`
	DepositAccountID *uuid.UUID      `json:"deposit_account_id,omitempty"`
	PaidAt           *time.Time      `json:"paid_at,omitempty"`
	Reference        *string         `json:"reference,omitempty"`
	Notes            *string         `json:"notes,omitempty"`
}

type quoteRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"required"`
	From   string          `json:"from" validate:"required"`
	To     string          `json:"to" validate:"required"`
}

func paymentMethod(raw string) (enums.PaymentMethod, error) {
	method := enums.PaymentMethod(raw)
	if !method.IsValid() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	return method, nil
}

func paidAtOrZero(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

// RecordPayment records an admin-entered payment against an invoice. The row
// is stored already verified.
func RecordPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := paymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Record(r.Context(), payments.RecordInput{
			InvoiceID:        invoiceID,
			Amount:           body.Amount,
			Currency:         enums.NormalizeCurrency(body.Currency),
			Method:           method,
			DepositAccountID: body.DepositAccountID,
			PaidAt:           paidAtOrZero(body.PaidAt),
			Reference:        body.Reference,
			Notes:            body.Notes,
			Actor:            actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// SubmitPayment lets an agent submit a payment for admin verification.
func SubmitPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body paymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := paymentMethod(body.Method)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Submit(r.Context(), payments.SubmitInput{
			InvoiceID:        invoiceID,
			Amount:           body.Amount,
			Currency:         enums.NormalizeCurrency(body.Currency),
			Method:           method,
			DepositAccountID: body.DepositAccountID,
			PaidAt:           paidAtOrZero(body.PaidAt),
			Reference:        body.Reference,
			Notes:            body.Notes,
			Actor:            actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, payment)
	}
}

// ListInvoicePayments returns the payment rows for an invoice.
func ListInvoicePayments(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		invoiceID, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListByInvoice(r.Context(), invoiceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// VerifyPayment promotes a pending payment and applies invoice side effects.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := parseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Verify(r.Context(), paymentID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// RejectPayment marks a pending payment rejected.
func RejectPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paymentID, err := parseUUIDParam(r, "paymentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := svc.Reject(r.Context(), paymentID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, payment)
	}
}

// QuoteConversion previews a currency conversion for the payment form.
func QuoteConversion(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body quoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		quote, err := svc.Quote(r.Context(), payments.QuoteInput{
			Amount: body.Amount,
			From:   enums.NormalizeCurrency(body.From),
			To:     enums.NormalizeCurrency(body.To),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
