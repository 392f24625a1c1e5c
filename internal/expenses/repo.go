package expenses

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

// Repository manages persistence for expenses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, expense *models.Expense) error
	Update(ctx context.Context, expense *models.Expense) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error)
	List(ctx context.Context, status *enums.ExpenseStatus) ([]models.Expense, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an expense repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Create(expense).Error
}

func (r *repository) Update(ctx context.Context, expense *models.Expense) error {
	return r.db.WithContext(ctx).Save(expense).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

func (r *repository) List(ctx context.Context, status *enums.ExpenseStatus) ([]models.Expense, error) {
	query := r.db.WithContext(ctx).Model(&models.Expense{}).Order("incurred_at DESC, created_at DESC")
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}
