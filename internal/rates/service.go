package rates

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/astraline/astraline-backend/internal/currency"
	"github.com/astraline/astraline-backend/pkg/db/models"
	"github.com/astraline/astraline-backend/pkg/enums"
	pkgerrors "github.com/astraline/astraline-backend/pkg/errors"
	"github.com/astraline/astraline-backend/pkg/logger"
)

// Service exposes exchange rate management and converter snapshots.
type Service interface {
	List(ctx context.Context) ([]models.ExchangeRate, error)
	Create(ctx context.Context, input UpsertRateInput) (*models.ExchangeRate, error)
	Update(ctx context.Context, id uuid.UUID, input UpsertRateInput) (*models.ExchangeRate, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ConverterFor(ctx context.Context) (currency.Converter, error)
}

// UpsertRateInput carries the admin-editable fields of a rate row.
type UpsertRateInput struct {
	CurrencyCode string
	CurrencyName string
	RateToBase   decimal.Decimal
	ActorUserID  uuid.UUID
}

type service struct {
	repo Repository
	logg *logger.Logger
}

// NewService builds the exchange rate service.
func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, errors.New("rates: repository is required")
	}
	return &service{repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context) ([]models.ExchangeRate, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list exchange rates")
	}
	return rows, nil
}

func (s *service) Create(ctx context.Context, input UpsertRateInput) (*models.ExchangeRate, error) {
	code, err := validateRateInput(input)
	if err != nil {
		return nil, err
	}
	if existing, findErr := s.repo.FindByCurrency(ctx, code); findErr == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "exchange rate already exists for currency")
	} else if findErr != nil && !errors.Is(findErr, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "check existing rate")
	}

	rate := &models.ExchangeRate{
		CurrencyCode: code,
		CurrencyName: strings.TrimSpace(input.CurrencyName),
		RateToBase:   input.RateToBase,
		UpdatedBy:    actorRef(input.ActorUserID),
	}
	if err := s.repo.Create(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create exchange rate")
	}
	return rate, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpsertRateInput) (*models.ExchangeRate, error) {
	code, err := validateRateInput(input)
	if err != nil {
		return nil, err
	}
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "exchange rate not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange rate")
	}

	rate.CurrencyCode = code
	if name := strings.TrimSpace(input.CurrencyName); name != "" {
		rate.CurrencyName = name
	}
	rate.RateToBase = input.RateToBase
	rate.UpdatedBy = actorRef(input.ActorUserID)
	if err := s.repo.Update(ctx, rate); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update exchange rate")
	}
	return rate, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	rate, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "exchange rate not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange rate")
	}
	if rate.CurrencyCode.IsBase() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "base currency cannot be deleted")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete exchange rate")
	}
	return nil
}

// ConverterFor loads the full rate table and returns a conversion snapshot.
func (s *service) ConverterFor(ctx context.Context) (currency.Converter, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return currency.Converter{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load exchange rates")
	}
	return currency.NewConverter(rows, s.logg), nil
}

func validateRateInput(input UpsertRateInput) (enums.Currency, error) {
	code := enums.NormalizeCurrency(input.CurrencyCode)
	if code.IsZero() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "currency code is required")
	}
	if code.IsBase() {
		// The base currency carries an implicit rate of 1 and never has a row.
		return "", pkgerrors.New(pkgerrors.CodeValidation, "base currency rate is fixed at 1")
	}
	if !input.RateToBase.IsPositive() {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "rate to base must be positive")
	}
	return code, nil
}

func actorRef(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
