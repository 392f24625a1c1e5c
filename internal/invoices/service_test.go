package invoices

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

type memoryInvoiceRepo struct {
	invoices map[uuid.UUID]*models.Invoice
	items    map[uuid.UUID]*models.InvoiceLineItem
}

func newMemoryInvoiceRepo() *memoryInvoiceRepo {
	return &memoryInvoiceRepo{
		invoices: map[uuid.UUID]*models.Invoice{},
		items:    map[uuid.UUID]*models.InvoiceLineItem{},
	}
}

func (m *memoryInvoiceRepo) WithTx(tx *gorm.DB) Repository { return m }

func (m *memoryInvoiceRepo) Create(_ context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.CreatedAt = time.Now()
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *memoryInvoiceRepo) Update(_ context.Context, invoice *models.Invoice) error {
	m.invoices[invoice.ID] = invoice
	return nil
}

func (m *memoryInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, ok := m.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *invoice
	items, _ := m.ListLineItems(context.Background(), id)
	clone.LineItems = items
	return &clone, nil
}

func (m *memoryInvoiceRepo) List(_ context.Context, params ListQuery) ([]models.Invoice, *pagination.Cursor, error) {
	var out []models.Invoice
	for _, invoice := range m.invoices {
		if params.Status != nil && invoice.Status != *params.Status {
			continue
		}
		out = append(out, *invoice)
	}
	return out, nil, nil
}

func (m *memoryInvoiceRepo) CountByNumberPrefix(_ context.Context, prefix string) (int64, error) {
	var count int64
	for _, invoice := range m.invoices {
		if strings.HasPrefix(invoice.InvoiceNumber, prefix) {
			count++
		}
	}
	return count, nil
}

func (m *memoryInvoiceRepo) CreateLineItem(_ context.Context, item *models.InvoiceLineItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items[item.ID] = item
	return nil
}

func (m *memoryInvoiceRepo) UpdateLineItem(_ context.Context, item *models.InvoiceLineItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *memoryInvoiceRepo) DeleteLineItems(_ context.Context, invoiceID uuid.UUID, ids []uuid.UUID) error {
	for _, id := range ids {
		if item, ok := m.items[id]; ok && item.InvoiceID == invoiceID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *memoryInvoiceRepo) ListLineItems(_ context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	var out []models.InvoiceLineItem
	for _, item := range m.items {
		if item.InvoiceID == invoiceID {
			out = append(out, *item)
		}
	}
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].Position < out[i].Position {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

func (m *memoryInvoiceRepo) ListDueBefore(_ context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range m.invoices {
		if invoice.Status == enums.InvoiceStatusPending && invoice.DueDate != nil && invoice.DueDate.Before(cutoff) {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

func (m *memoryInvoiceRepo) ListUnsettled(_ context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range m.invoices {
		if invoice.Status != enums.InvoiceStatusCancelled {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

type passTxRunner struct{}

func (passTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRates struct {
	rates []models.ExchangeRate
}

func (s stubRates) ConverterFor(ctx context.Context) (currency.Converter, error) {
	return currency.NewConverter(s.rates, nil), nil
}

func newTestService(t *testing.T, repo Repository, rates []models.ExchangeRate) Service {
	t.Helper()
	svc, err := NewService(repo, passTxRunner{}, stubRates{rates: rates}, "AST-INV", nil)
	require.NoError(t, err)
	return svc
}

func usdRate() []models.ExchangeRate {
	return []models.ExchangeRate{{CurrencyCode: "USD", RateToBase: decimal.NewFromInt(2500)}}
}

func TestServiceCreateComputesCascadedTotals(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()
	discount := "10%"

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		Currency:   enums.CurrencyTZS,
		Discount:   &discount,
		TaxRate:    decimal.NewFromInt(18),
		LineItems: []LineItemInput{
			{Description: "Freight", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
			{Description: "Handling", UnitType: enums.UnitTypePercent, UnitPrice: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)

	// subtotal 110, discount 11, after 99, tax 17.82, total 116.82
	require.True(t, invoice.Amount.Equal(decimal.RequireFromString("116.82")), "got %s", invoice.Amount)
	require.Equal(t, enums.InvoiceStatusPending, invoice.Status)

	items, err := repo.ListLineItems(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.True(t, items[1].Amount.Equal(decimal.NewFromInt(10)))
}

func TestServiceCreateNumbersSequentiallyPerYear(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()
	input := CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		LineItems:  []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	}

	first, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	year := time.Now().UTC().Year()
	require.Contains(t, first.InvoiceNumber, "AST-INV-")
	require.True(t, strings.HasSuffix(first.InvoiceNumber, "00001"), first.InvoiceNumber)
	require.True(t, strings.HasSuffix(second.InvoiceNumber, "00002"), second.InvoiceNumber)
	require.Contains(t, first.InvoiceNumber, time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).Format("2006"))
}

func TestServiceCreateRequiresParty(t *testing.T) {
	svc := newTestService(t, newMemoryInvoiceRepo(), nil)

	_, err := svc.Create(context.Background(), CreateInvoiceInput{
		Direction: enums.InvoiceDirectionToCustomer,
		LineItems: []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())

	_, err = svc.Create(context.Background(), CreateInvoiceInput{
		Direction: enums.InvoiceDirectionToAgent,
		LineItems: []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestServiceCreateConvertsToBase(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, usdRate())
	customerID := uuid.New()

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		Currency:   "USD",
		LineItems:  []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)
	require.True(t, invoice.AmountInBase.Equal(decimal.NewFromInt(250000)))
}

func TestServiceUpdateReconcilesLineItemSet(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		LineItems: []LineItemInput{
			{Description: "Keep", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)},
			{Description: "Drop", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(50)},
		},
	})
	require.NoError(t, err)

	items, err := repo.ListLineItems(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	keepID := items[0].ID

	updated, err := svc.Update(context.Background(), invoice.ID, UpdateInvoiceInput{
		LineItems: []LineItemInput{
			{ID: &keepID, Description: "Keep", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(100)},
			{Description: "New", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(25)},
		},
	})
	require.NoError(t, err)

	after, err := repo.ListLineItems(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, after, 2, "dropped row deleted, new row inserted")
	require.True(t, updated.Amount.Equal(decimal.NewFromInt(225)))
}

func TestServiceUpdateRejectsCancelledInvoice(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		LineItems:  []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)

	invoice.Status = enums.InvoiceStatusCancelled
	require.NoError(t, repo.Update(context.Background(), invoice))

	_, err = svc.Update(context.Background(), invoice.ID, UpdateInvoiceInput{
		LineItems: []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestServiceUpdateStatusGuardsCancelled(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		LineItems:  []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), invoice.ID, enums.InvoiceStatusCancelled, uuid.New())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), invoice.ID, enums.InvoiceStatusPending, uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())
}

func TestServiceGetDerivesBalance(t *testing.T) {
	repo := newMemoryInvoiceRepo()
	svc := newTestService(t, repo, nil)
	customerID := uuid.New()

	invoice, err := svc.Create(context.Background(), CreateInvoiceInput{
		CustomerID: &customerID,
		Direction:  enums.InvoiceDirectionToCustomer,
		LineItems:  []LineItemInput{{Description: "x", UnitType: enums.UnitTypeFixed, Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(100)}},
	})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.True(t, detail.Totals.Subtotal.Equal(decimal.NewFromInt(100)))
	require.True(t, detail.Balance.RemainingBalance.Equal(decimal.NewFromInt(100)))
	require.False(t, detail.Balance.IsPaid)
}
