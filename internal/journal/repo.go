package journal

import (
	"context"

	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
)

// Repository manages persistence for journal entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.JournalEntry) error
	ListByReference(ctx context.Context, reference string) ([]models.JournalEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a journal repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.JournalEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListByReference(ctx context.Context, reference string) ([]models.JournalEntry, error) {
	var entries []models.JournalEntry
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
