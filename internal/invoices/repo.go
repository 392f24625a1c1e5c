package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	"github.com/astraline/astraline-backend/pkg/pagination"
)

// Repository manages persistence for invoices and their line items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	Update(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	List(ctx context.Context, params ListQuery) ([]models.Invoice, *pagination.Cursor, error)
	CountByNumberPrefix(ctx context.Context, prefix string) (int64, error)
	CreateLineItem(ctx context.Context, item *models.InvoiceLineItem) error
	UpdateLineItem(ctx context.Context, item *models.InvoiceLineItem) error
	DeleteLineItems(ctx context.Context, invoiceID uuid.UUID, ids []uuid.UUID) error
	ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error)
	ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Invoice, error)
	ListUnsettled(ctx context.Context) ([]models.Invoice, error)
}

// ListQuery configures invoice list queries.
type ListQuery struct {
	Limit      int
	Cursor     *pagination.Cursor
	Status     *enums.InvoiceStatus
	Direction  *enums.InvoiceDirection
	CustomerID *uuid.UUID
	AgentID    *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) Update(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("LineItems", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC")
		}).
		First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) List(ctx context.Context, params ListQuery) ([]models.Invoice, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Invoice{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Direction != nil {
		query = query.Where("direction = ?", *params.Direction)
	}
	if params.CustomerID != nil {
		query = query.Where("customer_id = ?", *params.CustomerID)
	}
	if params.AgentID != nil {
		query = query.Where("agent_id = ?", *params.AgentID)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var invoices []models.Invoice
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&invoices).Error; err != nil {
		return nil, nil, err
	}

	if len(invoices) > limit {
		next := invoices[limit]
		invoices = invoices[:limit]
		return invoices, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return invoices, nil, nil
}

func (r *repository) CountByNumberPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("invoice_number LIKE ?", prefix+"%").
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CreateLineItem(ctx context.Context, item *models.InvoiceLineItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *repository) UpdateLineItem(ctx context.Context, item *models.InvoiceLineItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *repository) DeleteLineItems(ctx context.Context, invoiceID uuid.UUID, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("invoice_id = ? AND id IN ?", invoiceID, ids).
		Delete(&models.InvoiceLineItem{}).Error
}

func (r *repository) ListLineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	var items []models.InvoiceLineItem
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("position ASC, created_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) ListDueBefore(ctx context.Context, cutoff time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", enums.InvoiceStatusPending, cutoff).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ListUnsettled returns every non-cancelled invoice with its payments, for
// the reconciliation sweep over amount_paid caches.
func (r *repository) ListUnsettled(ctx context.Context) ([]models.Invoice, error) {
	var invoices []models.Invoice
	if err := r.db.WithContext(ctx).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("paid_at ASC, created_at ASC")
		}).
		Where("status <> ?", enums.InvoiceStatusCancelled).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}
