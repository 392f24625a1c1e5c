package cron

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/invoices"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	"github.com/astraline/astraline-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OverdueInvoiceJobParams configure the overdue invoice sweep.
type OverdueInvoiceJobParams struct {
	Logger   *logger.Logger
	DB       txRunner
	Invoices invoices.Repository
	Grace    time.Duration
}

// NewOverdueInvoiceJob builds the job that marks pending invoices overdue
// once their due date plus the configured grace has passed.
func NewOverdueInvoiceJob(params OverdueInvoiceJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Invoices == nil {
		return nil, fmt.Errorf("invoice repository required")
	}
	grace := params.Grace
	if grace < 0 {
		grace = 0
	}
	return &overdueInvoiceJob{
		logg:     params.Logger,
		db:       params.DB,
		invoices: params.Invoices,
		grace:    grace,
		now:      time.Now,
	}, nil
}

type overdueInvoiceJob struct {
	logg     *logger.Logger
	db       txRunner
	invoices invoices.Repository
	grace    time.Duration
	now      func() time.Time
}

func (j *overdueInvoiceJob) Name() string { return "overdue-invoices" }

func (j *overdueInvoiceJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.grace)
	due, err := j.invoices.ListDueBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query due invoices: %w", err)
	}

	count := 0
	for _, invoice := range due {
		if err := j.markOverdue(ctx, invoice); err != nil {
			return err
		}
		count++
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
	j.logg.Info(logCtx, "overdue invoice sweep complete")
	return nil
}

func (j *overdueInvoiceJob) markOverdue(ctx context.Context, invoice models.Invoice) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.invoices.WithTx(tx)
		current, err := repo.FindByID(ctx, invoice.ID)
		if err != nil {
			return err
		}
		// Re-check under the transaction: a payment may have landed since
		// the sweep query ran.
		if current.Status != enums.InvoiceStatusPending {
			return nil
		}
		current.Status = enums.InvoiceStatusOverdue
		current.LineItems = nil
		current.Payments = nil
		return repo.Update(ctx, current)
	})
}
