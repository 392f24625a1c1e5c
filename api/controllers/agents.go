package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/astraline/astraline-backend/api/responses"
	"github.com/astraline/astraline-backend/api/validators"
	"github.com/astraline/astraline-backend/internal/agents"
	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/pagination"
	"github.com/astraline/astraline-backend/pkg/types"
)

type createAgentRequest struct {
	Name               string     `json:"name" validate:"required"`
	Email              *string    `json:"email,omitempty"`
	Phone              *string    `json:"phone,omitempty"`
	Country            *string    `json:"country,omitempty"`
	SettlementCurrency string     `json:"settlement_currency"`
	Routes             []string   `json:"routes,omitempty"`
	UserID             *uuid.UUID `json:"user_id,omitempty"`
}

type updateAgentRequest struct {
	Name               *string            `json:"name,omitempty"`
	Email              *string            `json:"email,omitempty"`
	Phone              *string            `json:"phone,omitempty"`
	Country            *string            `json:"country,omitempty"`
	SettlementCurrency *string            `json:"settlement_currency,omitempty"`
	Routes             []string           `json:"routes,omitempty"`
	Active             *bool              `json:"active,omitempty"`
	UserID             types.NullableUUID `json:"user_id,omitempty"`
}

// ListAgents returns the agent network, optionally only active partners.
func ListAgents(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
		rows, err := svc.List(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CreateAgent registers a new agent.
func CreateAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createAgentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Create(r.Context(), agents.CreateAgentInput{
			Name:               body.Name,
			Email:              body.Email,
			Phone:              body.Phone,
			Country:            body.Country,
			SettlementCurrency: enums.NormalizeCurrency(body.SettlementCurrency),
			Routes:             body.Routes,
			UserID:             body.UserID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, agent)
	}
}

// GetAgent returns a single agent by id.
func GetAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "agentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		agent, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

// UpdateAgent edits an agent's profile or settlement configuration.
func UpdateAgent(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "agentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateAgentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := agents.UpdateAgentInput{
			Name:    body.Name,
			Email:   body.Email,
			Phone:   body.Phone,
			Country: body.Country,
			Routes:  body.Routes,
			Active:  body.Active,
			UserID:  body.UserID,
		}
		if body.SettlementCurrency != nil {
			settlement := enums.NormalizeCurrency(*body.SettlementCurrency)
			input.SettlementCurrency = &settlement
		}

		agent, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, agent)
	}
}

// GetAgentBalance returns an agent's settlement summary.
func GetAgentBalance(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseUUIDParam(r, "agentId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.BalanceSummary(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// agentScope resolves the caller's agent identity from the request context.
func agentScope(r *http.Request) (uuid.UUID, error) {
	actor, err := actorFromContext(r)
	if err != nil {
		return uuid.Nil, err
	}
	if actor.AgentID == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeForbidden, "agent scope missing")
	}
	return *actor.AgentID, nil
}

// AgentOwnBalance returns the settlement summary for the calling agent.
func AgentOwnBalance(svc agents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := agentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.BalanceSummary(r.Context(), agentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}

// AgentOwnInvoices lists the calling agent's invoices.
func AgentOwnInvoices(svc invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := agentScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}, invoices.ListFilters{AgentID: &agentID})
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
