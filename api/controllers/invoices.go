package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

type lineItemRequest struct {
	ID               *uuid.UUID       `json:"id,omitempty"`
	Description      string           `json:"description" validate:"required"`
	ItemType         *string          `json:"item_type,omitempty"`
	UnitType         string           `json:"unit_type"`
	Quantity         decimal.Decimal  `json:"quantity"`
	UnitPrice        decimal.Decimal  `json:"unit_price"`
	Amount           decimal.Decimal  `json:"amount"`
	WeightKg         *decimal.Decimal `json:"weight_kg,omitempty"`
	ProductServiceID *uuid.UUID       `json:"product_service_id,omitempty"`
}

type createInvoiceRequest struct {
	CustomerID *uuid.UUID        `json:"customer_id,omitempty"`
	AgentID    *uuid.UUID        `json:"agent_id,omitempty"`
	Direction  string            `json:"direction"`
	Currency   string            `json:"currency"`
	Discount   *string           `json:"discount,omitempty"`
	TaxRate    decimal.Decimal   `json:"tax_rate"`
	DueDate    *time.Time        `json:"due_date,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	LineItems  []lineItemRequest `json:"line_items" validate:"required,min=1"`
}

type updateInvoiceRequest struct {
	CustomerID *uuid.UUID        `json:"customer_id,omitempty"`
	AgentID    *uuid.UUID        `json:"agent_id,omitempty"`
	Discount   *string           `json:"discount,omitempty"`
	TaxRate    *decimal.Decimal  `json:"tax_rate,omitempty"`
	DueDate    *time.Time        `json:"due_date,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	LineItems  []lineItemRequest `json:"line_items" validate:"required,min=1"`
}

type updateInvoiceStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type invoiceListResponse struct {
	Invoices   []models.Invoice `json:"invoices"`
	NextCursor *string          `json:"next_cursor,omitempty"`
}

func lineInputs(rows []lineItemRequest) ([]invoices.LineItemInput, error) {
	inputs := make([]invoices.LineItemInput, 0, len(rows))
	for _, row := range rows {
		unitType, err := enums.ParseUnitType(row.UnitType)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit type")
		}
		inputs = append(inputs, invoices.LineItemInput{
			ID:               row.ID,
			Description:      row.Description,
			ItemType:         row.ItemType,
			UnitType:         unitType,
			Quantity:         row.Quantity,
			UnitPrice:        row.UnitPrice,
			Amount:           row.Amount,
			WeightKg:         row.WeightKg,
			ProductServiceID: row.ProductServiceID,
		})
	}
	return inputs, nil
}

// ListInvoices returns a cursor-paginated invoice listing.
func ListInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := invoiceFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := invoiceListResponse{Invoices: page.Invoices}
		if page.NextCursor != nil {
			encoded := pagination.EncodeCursor(*page.NextCursor)
			resp.NextCursor = &encoded
		}
		responses.WriteSuccess(w, resp)
	}
}

func invoiceFilters(r *http.Request) (invoices.ListFilters, error) {
	var filters invoices.ListFilters

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseInvoiceStatus(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("direction")); raw != "" {
		direction, err := enums.ParseInvoiceDirection(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction filter")
		}
		filters.Direction = &direction
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("customer_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid customer id filter")
		}
		filters.CustomerID = &id
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("agent_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filters, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid agent id filter")
		}
		filters.AgentID = &id
	}
	return filters, nil
}

// CreateInvoice issues a new invoice with its line items.
func CreateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createInvoiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		direction, err := enums.ParseInvoiceDirection(body.Direction)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid direction"))
			return
		}

		items, err := lineInputs(body.LineItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Create(r.Context(), invoices.CreateInvoiceInput{
			CustomerID:  body.CustomerID,
			AgentID:     body.AgentID,
			Direction:   direction,
			Currency:    enums.NormalizeCurrency(body.Currency),
			Discount:    body.Discount,
			TaxRate:     body.TaxRate,
			DueDate:     body.DueDate,
			Notes:       body.Notes,
			LineItems:   items,
			ActorUserID: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, invoice)
	}
}

// GetInvoice returns an invoice with its computed totals and balance.
func GetInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, detail)
	}
}

// UpdateInvoice applies a full line-item resubmission and recomputes totals.
func UpdateInvoice(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateInvoiceRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := lineInputs(body.LineItems)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.Update(r.Context(), id, invoices.UpdateInvoiceInput{
			CustomerID:  body.CustomerID,
			AgentID:     body.AgentID,
			Discount:    body.Discount,
			TaxRate:     body.TaxRate,
			DueDate:     body.DueDate,
			Notes:       body.Notes,
			LineItems:   items,
			ActorUserID: actor.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}

// UpdateInvoiceStatus transitions an invoice's lifecycle status.
func UpdateInvoiceStatus(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "invoiceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateInvoiceStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseInvoiceStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		actor, err := actorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		invoice, err := svc.UpdateStatus(r.Context(), id, status, actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, invoice)
	}
}
