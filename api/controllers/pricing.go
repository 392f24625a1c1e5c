package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/pricing"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type regionRequest struct {
	Name         string   `json:"name" validate:"required"`
	Countries    []string `json:"countries,omitempty"`
	Active       *bool    `json:"active,omitempty"`
	DisplayOrder *int     `json:"display_order,omitempty"`
}

type regionPricingRequest struct {
	ID          *uuid.UUID      `json:"id,omitempty"`
	ServiceType string          `json:"service_type" validate:"required"`
	RatePerKg   decimal.Decimal `json:"rate_per_kg" validate:"required"`
	MinimumKg   decimal.Decimal `json:"minimum_kg"`
	Currency    string          `json:"currency"`
	Active      *bool           `json:"active,omitempty"`
}

type chargeRequest struct {
	Label        string          `json:"label" validate:"required"`
	ChargeType   string          `json:"charge_type" validate:"required"`
	Value        decimal.Decimal `json:"value" validate:"required"`
	AppliesTo    string          `json:"applies_to,omitempty"`
	Active       *bool           `json:"active,omitempty"`
	DisplayOrder int             `json:"display_order"`
}

type shippingQuoteRequest struct {
	RegionID    uuid.UUID       `json:"region_id" validate:"required"`
	ServiceType string          `json:"service_type" validate:"required"`
	WeightKg    decimal.Decimal `json:"weight_kg" validate:"required"`
}

type dutyEstimateRequest struct {
	CIFValue decimal.Decimal `json:"cif_value" validate:"required"`
}

type shopForMeQuoteRequest struct {
	GoodsCost decimal.Decimal `json:"goods_cost" validate:"required"`
}

func (c chargeRequest) toInput() (pricing.ChargeInput, error) {
	chargeType, err := enums.ParseChargeType(c.ChargeType)
	if err != nil {
		return pricing.ChargeInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid charge type")
	}
	return pricing.ChargeInput{
		Label:        c.Label,
		ChargeType:   chargeType,
		Value:        c.Value,
		AppliesTo:    c.AppliesTo,
		Active:       c.Active,
		DisplayOrder: c.DisplayOrder,
	}, nil
}

// optionalUUIDParam reads a path param that may be absent on create routes.
func optionalUUIDParam(r *http.Request, name string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return &id, nil
}

// ListRegions returns configured shipping regions with their pricing rows.
func ListRegions(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
		regions, err := svc.ListRegions(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, regions)
	}
}

// GetRegion returns a single region by id.
func GetRegion(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "regionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		region, err := svc.GetRegion(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, region)
	}
}

// CreateRegion adds a shipping region.
func CreateRegion(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body regionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		region, err := svc.CreateRegion(r.Context(), pricing.RegionInput{
			Name:         body.Name,
			Countries:    body.Countries,
			Active:       body.Active,
			DisplayOrder: body.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, region)
	}
}

// UpdateRegion edits a shipping region.
func UpdateRegion(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "regionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body regionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		region, err := svc.UpdateRegion(r.Context(), id, pricing.RegionInput{
			Name:         body.Name,
			Countries:    body.Countries,
			Active:       body.Active,
			DisplayOrder: body.DisplayOrder,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, region)
	}
}

// DeleteRegion removes a region and its pricing rows.
func DeleteRegion(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "regionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteRegion(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetRegionPricing creates or updates a rate row for a region.
func SetRegionPricing(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		regionID, err := parseUUIDParam(r, "regionId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body regionPricingRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.SetRegionPricing(r.Context(), regionID, pricing.RegionPricingInput{
			ID:          body.ID,
			ServiceType: body.ServiceType,
			RatePerKg:   body.RatePerKg,
			MinimumKg:   body.MinimumKg,
			Currency:    enums.NormalizeCurrency(body.Currency),
			Active:      body.Active,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// ListShippingCharges returns the shipping add-on charge table.
func ListShippingCharges(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListShippingCharges(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SaveShippingCharge creates or updates a shipping charge row.
func SaveShippingCharge(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := optionalUUIDParam(r, "chargeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body chargeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.SaveShippingCharge(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if id == nil {
			responses.WriteSuccessStatus(w, http.StatusCreated, row)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// DeleteShippingCharge removes a shipping charge row.
func DeleteShippingCharge(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "chargeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteShippingCharge(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListDutyRates returns the vehicle duty rate table.
func ListDutyRates(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListDutyRates(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SaveDutyRate creates or updates a vehicle duty rate row.
func SaveDutyRate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := optionalUUIDParam(r, "rateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body chargeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.SaveDutyRate(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if id == nil {
			responses.WriteSuccessStatus(w, http.StatusCreated, row)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// DeleteDutyRate removes a vehicle duty rate row.
func DeleteDutyRate(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "rateId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteDutyRate(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListShopForMeCharges returns the shop-for-me charge table.
func ListShopForMeCharges(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows, err := svc.ListShopForMeCharges(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// SaveShopForMeCharge creates or updates a shop-for-me charge row.
func SaveShopForMeCharge(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := optionalUUIDParam(r, "chargeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body chargeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		row, err := svc.SaveShopForMeCharge(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if id == nil {
			responses.WriteSuccessStatus(w, http.StatusCreated, row)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// DeleteShopForMeCharge removes a shop-for-me charge row.
func DeleteShopForMeCharge(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "chargeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteShopForMeCharge(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// QuoteShipping estimates shipping cost for a region, service type and weight.
func QuoteShipping(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body shippingQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.ShippingQuote(r.Context(), pricing.ShippingQuoteInput{
			RegionID:    body.RegionID,
			ServiceType: body.ServiceType,
			WeightKg:    body.WeightKg,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteVehicleDuty estimates import duty for a vehicle CIF value.
func QuoteVehicleDuty(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body dutyEstimateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.VehicleDutyEstimate(r.Context(), body.CIFValue)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// QuoteShopForMe estimates total cost for a shop-for-me order.
func QuoteShopForMe(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body shopForMeQuoteRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		quote, err := svc.ShopForMeQuote(r.Context(), body.GoodsCost)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
