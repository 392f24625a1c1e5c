package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/rates"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type rateRequest struct {
	CurrencyCode string          `json:"currency_code" validate:"required"`
	CurrencyName string          `json:"currency_name"`
	RateToBase   decimal.Decimal `json:"rate_to_base" validate:"required"`
}

// ListRates returns every configured exchange rate.
func ListRates(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CreateRate adds a currency to the rate table.
func CreateRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body rateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := svc.Create(r.Context(), rates.UpsertRateInput{
			CurrencyCode: body.CurrencyCode,
			CurrencyName: body.CurrencyName,
			RateToBase:   body.RateToBase,
			ActorUserID:  actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, rate)
	}
}

// UpdateRate edits an existing rate row.
func UpdateRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "rateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body rateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rate, err := svc.Update(r.Context(), id, rates.UpsertRateInput{
			CurrencyCode: body.CurrencyCode,
			CurrencyName: body.CurrencyName,
			RateToBase:   body.RateToBase,
			ActorUserID:  actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rate)
	}
}

// DeleteRate removes a rate row. The base currency cannot be removed.
func DeleteRate(svc rates.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "rateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
