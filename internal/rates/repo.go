package rates

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
)

// Repository manages persistence for exchange rate rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rate *models.ExchangeRate) error
	Update(ctx context.Context, rate *models.ExchangeRate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ExchangeRate, error)
	FindByCurrency(ctx context.Context, code enums.Currency) (*models.ExchangeRate, error)
	List(ctx context.Context) ([]models.ExchangeRate, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an exchange rate repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, rate *models.ExchangeRate) error {
	return r.db.WithContext(ctx).Create(rate).Error
}

func (r *repository) Update(ctx context.Context, rate *models.ExchangeRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ExchangeRate{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	if err := r.db.WithContext(ctx).First(&rate, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) FindByCurrency(ctx context.Context, code enums.Currency) (*models.ExchangeRate, error) {
	var rate models.ExchangeRate
	if err := r.db.WithContext(ctx).First(&rate, "currency_code = ?", code).Error; err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *repository) List(ctx context.Context) ([]models.ExchangeRate, error) {
	var rates []models.ExchangeRate
	if err := r.db.WithContext(ctx).
		Order("currency_code ASC").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}
