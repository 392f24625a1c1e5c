package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	"github.com/astraline/astraline-backend/pkg/logger"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

type fakeInvoiceRepo struct {
	invoices map[uuid.UUID]*models.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: map[uuid.UUID]*models.Invoice{}}
}

func (f *fakeInvoiceRepo) WithTx(tx *gorm.DB) invoices.Repository { return f }

func (f *fakeInvoiceRepo) Create(_ context.Context, invoice *models.Invoice) error {
	f.invoices[invoice.ID] = invoice
	return nil
}

func (f *fakeInvoiceRepo) Update(_ context.Context, invoice *models.Invoice) error {
	stored := *invoice
	f.invoices[invoice.ID] = &stored
	return nil
}

func (f *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Invoice, error) {
	invoice, ok := f.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *invoice
	return &clone, nil
}

func (f *fakeInvoiceRepo) List(_ context.Context, _ invoices.ListQuery) ([]models.Invoice, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (f *fakeInvoiceRepo) CountByNumberPrefix(_ context.Context, _ string) (int64, error) {
	return 0, nil
}

func (f *fakeInvoiceRepo) CreateLineItem(_ context.Context, _ *models.InvoiceLineItem) error {
	return nil
}

func (f *fakeInvoiceRepo) UpdateLineItem(_ context.Context, _ *models.InvoiceLineItem) error {
	return nil
}

func (f *fakeInvoiceRepo) DeleteLineItems(_ context.Context, _ uuid.UUID, _ []uuid.UUID) error {
	return nil
}

func (f *fakeInvoiceRepo) ListLineItems(_ context.Context, _ uuid.UUID) ([]models.InvoiceLineItem, error) {
	return nil, nil
}

func (f *fakeInvoiceRepo) ListDueBefore(_ context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range f.invoices {
		if invoice.Status == enums.InvoiceStatusPending && invoice.DueDate != nil && invoice.DueDate.Before(cutoff) {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

func (f *fakeInvoiceRepo) ListUnsettled(_ context.Context) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range f.invoices {
		if invoice.Status != enums.InvoiceStatusCancelled {
			out = append(out, *invoice)
		}
	}
	return out, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func addInvoice(repo *fakeInvoiceRepo, status enums.InvoiceStatus, due *time.Time) *models.Invoice {
	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "AST-INV-2026-0000" + uuid.NewString()[:1],
		Direction:     enums.InvoiceDirectionToCustomer,
		Currency:      enums.CurrencyTZS,
		Amount:        decimal.NewFromInt(100),
		AmountPaid:    decimal.Zero,
		Status:        status,
		DueDate:       due,
	}
	repo.invoices[invoice.ID] = invoice
	return invoice
}

func TestOverdueInvoiceJobMarksPastDue(t *testing.T) {
	repo := newFakeInvoiceRepo()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	past := time.Now().UTC().Add(-72 * time.Hour)
	future := time.Now().UTC().Add(72 * time.Hour)
	stale := addInvoice(repo, enums.InvoiceStatusPending, &past)
	fresh := addInvoice(repo, enums.InvoiceStatusPending, &future)
	settled := addInvoice(repo, enums.InvoiceStatusPaid, &past)

	job, err := NewOverdueInvoiceJob(OverdueInvoiceJobParams{
		Logger:   logg,
		DB:       fakeTxRunner{},
		Invoices: repo,
		Grace:    24 * time.Hour,
	})
	require.NoError(t, err)
	require.Equal(t, "overdue-invoices", job.Name())

	require.NoError(t, job.Run(context.Background()))

	require.Equal(t, enums.InvoiceStatusOverdue, repo.invoices[stale.ID].Status)
	require.Equal(t, enums.InvoiceStatusPending, repo.invoices[fresh.ID].Status)
	require.Equal(t, enums.InvoiceStatusPaid, repo.invoices[settled.ID].Status)
}

func TestOverdueInvoiceJobHonorsGrace(t *testing.T) {
	repo := newFakeInvoiceRepo()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	// Due 12 hours ago with a 24 hour grace: not overdue yet.
	recent := time.Now().UTC().Add(-12 * time.Hour)
	invoice := addInvoice(repo, enums.InvoiceStatusPending, &recent)

	job, err := NewOverdueInvoiceJob(OverdueInvoiceJobParams{
		Logger:   logg,
		DB:       fakeTxRunner{},
		Invoices: repo,
		Grace:    24 * time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.Equal(t, enums.InvoiceStatusPending, repo.invoices[invoice.ID].Status)
}
