package agents

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/types"
)

type converterSource interface {
	ConverterFor(ctx context.Context) (currency.Converter, error)
}

// Service manages the agent network and derives settlement balances.
type Service interface {
	List(ctx context.Context, activeOnly bool) ([]models.Agent, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Agent, error)
	Create(ctx context.Context, input CreateAgentInput) (*models.Agent, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateAgentInput) (*models.Agent, error)
	BalanceSummary(ctx context.Context, agentID uuid.UUID) (*BalanceSummary, error)
}

type CreateAgentInput struct {
	Name               string
	Email              *string
	Phone              *string
	Country            *string
	SettlementCurrency enums.Currency
	Routes             []string
	UserID             *uuid.UUID
}

// UpdateAgentInput carries partial updates. Nil pointers mean "leave alone";
// UserID distinguishes an explicit null (unlink the login) from absence.
type UpdateAgentInput struct {
	Name               *string
	Email              *string
	Phone              *string
	Country            *string
	SettlementCurrency *enums.Currency
	Routes             []string
	Active             *bool
	UserID             types.NullableUUID
}

// BalanceSummary is derived per agent, never persisted. All figures are in
// the agent's settlement currency. A positive NetBalance means the agent owes
// the company; negative means the company owes the agent. Downstream display
// logic keys off that sign, so it must not be normalised away.
type BalanceSummary struct {
	AgentID          uuid.UUID       `json:"agent_id"`
	Currency         enums.Currency  `json:"currency"`
	PaidToAgent      decimal.Decimal `json:"paid_to_agent"`
	PendingToAgent   decimal.Decimal `json:"pending_to_agent"`
	PaidFromAgent    decimal.Decimal `json:"paid_from_agent"`
	PendingFromAgent decimal.Decimal `json:"pending_from_agent"`
	NetBalance       decimal.Decimal `json:"net_balance"`
	RatesApplied     bool            `json:"rates_applied"`
}

type service struct {
	repo  Repository
	rates converterSource
	logg  *logger.Logger
}

// NewService builds an agent service with the required dependencies.
func NewService(repo Repository, rates converterSource, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("agents: repository is required")
	}
	if rates == nil {
		return nil, errors.New("agents: rates source is required")
	}
	return &service{repo: repo, rates: rates, logg: logg}, nil
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]models.Agent, error) {
	agents, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agents")
	}
	return agents, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Agent, error) {
	agent, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "agent not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load agent")
	}
	return agent, nil
}

func (s *service) Create(ctx context.Context, input CreateAgentInput) (*models.Agent, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name is required")
	}

	settlement := input.SettlementCurrency
	if settlement.IsZero() {
		settlement = enums.BaseCurrency()
	}

	agent := &models.Agent{
		Name:               name,
		Email:              input.Email,
		Phone:              input.Phone,
		Country:            input.Country,
		SettlementCurrency: enums.NormalizeCurrency(string(settlement)),
		Routes:             pq.StringArray(input.Routes),
		Active:             true,
		UserID:             input.UserID,
	}
	if err := s.repo.Create(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create agent")
	}
	return agent, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateAgentInput) (*models.Agent, error) {
	agent, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name cannot be empty")
		}
		agent.Name = name
	}
	if input.Email != nil {
		agent.Email = input.Email
	}
	if input.Phone != nil {
		agent.Phone = input.Phone
	}
	if input.Country != nil {
		agent.Country = input.Country
	}
	if input.SettlementCurrency != nil {
		agent.SettlementCurrency = enums.NormalizeCurrency(string(*input.SettlementCurrency))
	}
	if input.Routes != nil {
		agent.Routes = pq.StringArray(input.Routes)
	}
	if input.Active != nil {
		agent.Active = *input.Active
	}
	if input.UserID.Valid {
		agent.UserID = input.UserID.Value
	}

	if err := s.repo.Update(ctx, agent); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update agent")
	}
	return agent, nil
}

// BalanceSummary nets the agent's invoices by direction and status. Paid
// invoices land in the paid buckets, cancelled invoices are excluded, and
// everything else counts as pending. Amounts convert to the agent's
// settlement currency through the base unit before summing.
func (s *service) BalanceSummary(ctx context.Context, agentID uuid.UUID) (*BalanceSummary, error) {
	agent, err := s.Get(ctx, agentID)
	if err != nil {
		return nil, err
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	invoices, err := s.repo.ListInvoices(ctx, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent invoices")
	}

	summary := &BalanceSummary{
		AgentID:          agentID,
		Currency:         agent.SettlementCurrency,
		PaidToAgent:      decimal.Zero,
		PendingToAgent:   decimal.Zero,
		PaidFromAgent:    decimal.Zero,
		PendingFromAgent: decimal.Zero,
		RatesApplied:     true,
	}

	for _, invoice := range invoices {
		if invoice.Status == enums.InvoiceStatusCancelled {
			continue
		}

		amount, applied := conv.Convert(ctx, invoice.Amount, invoice.Currency, agent.SettlementCurrency)
		if !applied {
			summary.RatesApplied = false
		}

		paid := invoice.Status == enums.InvoiceStatusPaid
		switch invoice.Direction {
		case enums.InvoiceDirectionToAgent:
			if paid {
				summary.PaidToAgent = summary.PaidToAgent.Add(amount)
			} else {
				summary.PendingToAgent = summary.PendingToAgent.Add(amount)
			}
		case enums.InvoiceDirectionFromAgent:
			if paid {
				summary.PaidFromAgent = summary.PaidFromAgent.Add(amount)
			} else {
				summary.PendingFromAgent = summary.PendingFromAgent.Add(amount)
			}
		}
	}

	summary.NetBalance = summary.PaidFromAgent.Add(summary.PendingFromAgent).
		Sub(summary.PaidToAgent.Add(summary.PendingToAgent))
	return summary, nil
}
