package cron

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	"github.com/astraline/astraline-backend/pkg/logger"
)

func TestReconcileAmountPaidJobRepairsStaleCache(t *testing.T) {
	repo := newFakeInvoiceRepo()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	stale := addInvoice(repo, enums.InvoiceStatusPending, nil)
	stale.AmountPaid = decimal.NewFromInt(10)
	stale.Payments = []models.Payment{
		{InvoiceID: stale.ID, Amount: decimal.NewFromInt(60), VerificationStatus: enums.VerificationStatusVerified, PaidAt: time.Now().UTC()},
		{InvoiceID: stale.ID, Amount: decimal.NewFromInt(40), VerificationStatus: enums.VerificationStatusPending, PaidAt: time.Now().UTC()},
	}

	accurate := addInvoice(repo, enums.InvoiceStatusPending, nil)
	accurate.AmountPaid = decimal.NewFromInt(25)
	accurate.Payments = []models.Payment{
		{InvoiceID: accurate.ID, Amount: decimal.NewFromInt(25), VerificationStatus: enums.VerificationStatusVerified, PaidAt: time.Now().UTC()},
	}

	job, err := NewReconcileAmountPaidJob(ReconcileAmountPaidJobParams{
		Logger:   logg,
		DB:       fakeTxRunner{},
		Invoices: repo,
	})
	require.NoError(t, err)
	require.Equal(t, "reconcile-amount-paid", job.Name())

	require.NoError(t, job.Run(context.Background()))

	// Only the verified 60 counts; the pending 40 does not.
	require.True(t, repo.invoices[stale.ID].AmountPaid.Equal(decimal.NewFromInt(60)))
	require.True(t, repo.invoices[accurate.ID].AmountPaid.Equal(decimal.NewFromInt(25)))
}

func TestReconcileAmountPaidJobKeepsLargerCache(t *testing.T) {
	repo := newFakeInvoiceRepo()
	logg := logger.New(logger.Options{ServiceName: "cron-test"})

	// Cache ahead of the rows: the defensive max keeps the cache value.
	ahead := addInvoice(repo, enums.InvoiceStatusPending, nil)
	ahead.AmountPaid = decimal.NewFromInt(80)
	ahead.Payments = []models.Payment{
		{InvoiceID: ahead.ID, Amount: decimal.NewFromInt(50), VerificationStatus: enums.VerificationStatusVerified, PaidAt: time.Now().UTC()},
	}

	job, err := NewReconcileAmountPaidJob(ReconcileAmountPaidJobParams{
		Logger:   logg,
		DB:       fakeTxRunner{},
		Invoices: repo,
	})
	require.NoError(t, err)

	require.NoError(t, job.Run(context.Background()))
	require.True(t, repo.invoices[ahead.ID].AmountPaid.Equal(decimal.NewFromInt(80)))
}
