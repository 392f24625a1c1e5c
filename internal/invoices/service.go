package invoices

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type converterSource interface {
	ConverterFor(ctx context.Context) (currency.Converter, error)
}

// Service defines invoice-level operations beyond repository reads.
type Service interface {
	Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error)
	Get(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*InvoiceList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus, actor uuid.UUID) (*models.Invoice, error)
}

// LineItemInput is one submitted invoice row, in display order. A nil ID
// means a new row; rows whose persisted IDs are absent from the submission
// are deleted during reconciliation.
type LineItemInput struct {
	ID               *uuid.UUID
	Description      string
	ItemType         *string
	UnitType         enums.UnitType
	Quantity         decimal.Decimal
	UnitPrice        decimal.Decimal
	Amount           decimal.Decimal
	WeightKg         *decimal.Decimal
	ProductServiceID *uuid.UUID
}

// CreateInvoiceInput carries everything needed to issue an invoice.
type CreateInvoiceInput struct {
	CustomerID  *uuid.UUID
	AgentID     *uuid.UUID
	Direction   enums.InvoiceDirection
	Currency    enums.Currency
	Discount    *string
	TaxRate     decimal.Decimal
	DueDate     *time.Time
	Notes       *string
	LineItems   []LineItemInput
	ActorUserID uuid.UUID
}

// UpdateInvoiceInput carries an invoice edit, including the full resubmitted
// line-item set.
type UpdateInvoiceInput struct {
	CustomerID  *uuid.UUID
	AgentID     *uuid.UUID
	Discount    *string
	TaxRate     *decimal.Decimal
	DueDate     *time.Time
	Notes       *string
	LineItems   []LineItemInput
	ActorUserID uuid.UUID
}

// ListFilters narrows invoice listings.
type ListFilters struct {
	Status     *enums.InvoiceStatus
	Direction  *enums.InvoiceDirection
	CustomerID *uuid.UUID
	AgentID    *uuid.UUID
}

// InvoiceDetail is an invoice plus every derived figure the dashboard shows.
type InvoiceDetail struct {
	Invoice models.Invoice `json:"invoice"`
	Totals  Totals         `json:"totals"`
	Balance BalanceView    `json:"balance"`
}

// InvoiceList is one page of invoices with an optional continuation cursor.
type InvoiceList struct {
	Invoices   []models.Invoice
	NextCursor *pagination.Cursor
}

type service struct {
	repo         Repository
	tx           txRunner
	rates        converterSource
	numberPrefix string
	logg         *logger.Logger
}

// NewService builds an invoice service with the required dependencies.
func NewService(repo Repository, tx txRunner, rates converterSource, numberPrefix string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("invoices: repository is required")
	}
	if tx == nil {
		return nil, errors.New("invoices: transaction runner is required")
	}
	if rates == nil {
		return nil, errors.New("invoices: rates source is required")
	}
	if strings.TrimSpace(numberPrefix) == "" {
		return nil, errors.New("invoices: number prefix is required")
	}
	return &service{
		repo:         repo,
		tx:           tx,
		rates:        rates,
		numberPrefix: strings.TrimSpace(numberPrefix),
		logg:         logg,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInvoiceInput) (*models.Invoice, error) {
	if err := validateParties(input.Direction, input.CustomerID, input.AgentID); err != nil {
		return nil, err
	}
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}
	code := enums.NormalizeCurrency(string(input.Currency))
	if code.IsZero() {
		code = enums.BaseCurrency()
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	amounts, subtotal := ComputeLineAmounts(lineInputs(input.LineItems))
	totals := ComputeTotals(ctx, subtotal, input.Discount, input.TaxRate, code, conv)
	amountInBase, _ := conv.ToBase(ctx, totals.Total, code)

	var created *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		number, numErr := s.nextInvoiceNumber(ctx, repo, time.Now().UTC())
		if numErr != nil {
			return numErr
		}

		invoice := &models.Invoice{
			InvoiceNumber: number,
			CustomerID:    input.CustomerID,
			AgentID:       input.AgentID,
			Direction:     input.Direction,
			Currency:      code,
			Amount:        totals.Total,
			AmountPaid:    decimal.Zero,
			AmountInBase:  amountInBase,
			Discount:      input.Discount,
			TaxRate:       input.TaxRate,
			Status:        enums.InvoiceStatusPending,
			DueDate:       input.DueDate,
			Notes:         input.Notes,
			CreatedBy:     actorRef(input.ActorUserID),
		}
		if createErr := repo.Create(ctx, invoice); createErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create invoice")
		}

		for i, item := range input.LineItems {
			row := lineItemModel(invoice.ID, item, amounts[i], code, i)
			if itemErr := repo.CreateLineItem(ctx, row); itemErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, itemErr, "create invoice line item")
			}
		}

		created = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update reconciles the resubmitted line-item set against the persisted one
// inside a single transaction: rows missing from the submission are deleted,
// known rows are rewritten, new rows are inserted, and the totals are
// recomputed from the final ordered set.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInvoiceInput) (*models.Invoice, error) {
	if len(input.LineItems) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item is required")
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	var updated *models.Invoice
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		invoice, findErr := repo.FindByID(ctx, id)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load invoice")
		}
		if invoice.Status == enums.InvoiceStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoices cannot be edited")
		}

		existing, listErr := repo.ListLineItems(ctx, id)
		if listErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, listErr, "load invoice line items")
		}

		submitted := make(map[uuid.UUID]bool, len(input.LineItems))
		for _, item := range input.LineItems {
			if item.ID != nil {
				submitted[*item.ID] = true
			}
		}
		var removed []uuid.UUID
		for _, row := range existing {
			if !submitted[row.ID] {
				removed = append(removed, row.ID)
			}
		}
		if delErr := repo.DeleteLineItems(ctx, id, removed); delErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, delErr, "delete removed line items")
		}

		amounts, subtotal := ComputeLineAmounts(lineInputs(input.LineItems))
		for i, item := range input.LineItems {
			row := lineItemModel(id, item, amounts[i], invoice.Currency, i)
			if item.ID != nil {
				row.ID = *item.ID
				if upErr := repo.UpdateLineItem(ctx, row); upErr != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, upErr, "update invoice line item")
				}
				continue
			}
			if createErr := repo.CreateLineItem(ctx, row); createErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, createErr, "create invoice line item")
			}
		}

		if input.Discount != nil {
			invoice.Discount = input.Discount
		}
		if input.TaxRate != nil {
			invoice.TaxRate = *input.TaxRate
		}
		if input.DueDate != nil {
			invoice.DueDate = input.DueDate
		}
		if input.Notes != nil {
			invoice.Notes = input.Notes
		}
		if input.CustomerID != nil {
			invoice.CustomerID = input.CustomerID
		}
		if input.AgentID != nil {
			invoice.AgentID = input.AgentID
		}

		totals := ComputeTotals(ctx, subtotal, invoice.Discount, invoice.TaxRate, invoice.Currency, conv)
		invoice.Amount = totals.Total
		invoice.AmountInBase, _ = conv.ToBase(ctx, totals.Total, invoice.Currency)

		invoice.LineItems = nil
		invoice.Payments = nil
		if saveErr := repo.Update(ctx, invoice); saveErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, saveErr, "update invoice")
		}

		updated = invoice
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*InvoiceDetail, error) {
	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}

	conv, err := s.rates.ConverterFor(ctx)
	if err != nil {
		return nil, err
	}

	_, subtotal := ComputeLineAmounts(LineInputsFromModels(invoice.LineItems))
	totals := ComputeTotals(ctx, subtotal, invoice.Discount, invoice.TaxRate, invoice.Currency, conv)

	return &InvoiceDetail{
		Invoice: *invoice,
		Totals:  totals,
		Balance: DeriveBalance(*invoice),
	}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*InvoiceList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, ListQuery{
		Limit:      params.Limit,
		Cursor:     cursor,
		Status:     filters.Status,
		Direction:  filters.Direction,
		CustomerID: filters.CustomerID,
		AgentID:    filters.AgentID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invoices")
	}
	return &InvoiceList{Invoices: rows, NextCursor: next}, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.InvoiceStatus, actor uuid.UUID) (*models.Invoice, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice status")
	}

	invoice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invoice")
	}
	if invoice.Status == enums.InvoiceStatusCancelled && status != enums.InvoiceStatusCancelled {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled invoices cannot change status")
	}

	invoice.Status = status
	invoice.LineItems = nil
	invoice.Payments = nil
	if err := s.repo.Update(ctx, invoice); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update invoice status")
	}

	if s.logg != nil {
		logCtx := s.logg.WithInvoiceID(ctx, invoice.ID.String())
		logCtx = s.logg.WithFields(logCtx, map[string]any{
			"status":   status.String(),
			"actor_id": actor.String(),
		})
		s.logg.Info(logCtx, "invoice.status_changed")
	}
	return invoice, nil
}

// nextInvoiceNumber issues AST-INV-<year>-<seq> numbers, restarting the
// sequence each calendar year. The count runs inside the caller's
// transaction; the unique index backstops a concurrent issue race.
func (s *service) nextInvoiceNumber(ctx context.Context, repo Repository, now time.Time) (string, error) {
	yearPrefix := fmt.Sprintf("%s-%d-", s.numberPrefix, now.Year())
	count, err := repo.CountByNumberPrefix(ctx, yearPrefix)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count invoices for numbering")
	}
	return fmt.Sprintf("%s%05d", yearPrefix, count+1), nil
}

func validateParties(direction enums.InvoiceDirection, customerID, agentID *uuid.UUID) error {
	if !direction.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid invoice direction")
	}
	if direction.IsAgent() {
		if agentID == nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "agent invoices require an agent id")
		}
		return nil
	}
	if customerID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer invoices require a customer id")
	}
	return nil
}

func lineInputs(items []LineItemInput) []LineInput {
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

func lineItemModel(invoiceID uuid.UUID, item LineItemInput, amount decimal.Decimal, code enums.Currency, position int) *models.InvoiceLineItem {
	return &models.InvoiceLineItem{
		InvoiceID:        invoiceID,
		Description:      strings.TrimSpace(item.Description),
		ItemType:         item.ItemType,
		UnitType:         item.UnitType,
		Quantity:         item.Quantity,
		UnitPrice:        item.UnitPrice,
		Amount:           amount,
		Currency:         code,
		WeightKg:         item.WeightKg,
		ProductServiceID: item.ProductServiceID,
		Position:         position,
	}
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
