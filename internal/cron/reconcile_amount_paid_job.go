package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/logger"
)

// ReconcileAmountPaidJobParams configure the amount_paid reconciliation sweep.
type ReconcileAmountPaidJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Invoices invoices.Repository
}

// NewReconcileAmountPaidJob builds the job that rewrites stale amount_paid
// caches from the verified payment rows. The cache is allowed to disagree
// transiently; this sweep is what eventually closes the gap.
func NewReconcileAmountPaidJob(params ReconcileAmountPaidJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	return &reconcileAmountPaidJob{
		logg:     params.Logger,
		db:       params.DB,
		invoices: params.Invoices,
		now:      time.Now,
	}, nil
}

type reconcileAmountPaidJob struct {
	logg     *logger.Logger
	db       txRunner
	invoices invoices.Repository
	now      func() time.Time
}

func (j *reconcileAmountPaidJob) Name() string { return "reconcile-amount-paid" }

func (j *reconcileAmountPaidJob) Run(ctx context.Context) error {
	candidates, err := j.invoices.ListUnsettled(ctx)
	if err != nil {
		return fmt.Errorf("query invoices for reconciliation: %w", err)
	}

	var errs []error
	repaired := 0
	for _, invoice := range candidates {
		expected := invoices.TotalPaid(invoice, invoice.Payments)
		if invoice.AmountPaid.Equal(expected) {
			continue
		}
		if err := j.repair(ctx, invoice.ID); err != nil {
			errs = append(errs, fmt.Errorf("reconcile invoice %s: %w", invoice.InvoiceNumber, err))
			continue
		}
		repaired++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"scanned":  len(candidates),
		"repaired": repaired,
	})
	j.logg.Info(logCtx, "amount_paid reconciliation sweep complete")
	return multierr.Combine(errs...)
}

func (j *reconcileAmountPaidJob) repair(ctx context.Context, invoiceID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.invoices.WithTx(tx)
		current, err := repo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		current.AmountPaid = invoices.TotalPaid(*current, current.Payments)
		current.LineItems = nil
		current.Payments = nil
		return repo.Update(ctx, current)
	})
}
