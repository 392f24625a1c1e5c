package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// ExchangeRate maps a currency code to its rate against the base unit (TZS).
// The base currency itself never has a row; it carries an implicit rate of 1.
type ExchangeRate struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CurrencyCode enums.Currency  `gorm:"column:currency_code;type:text;not null;uniqueIndex"`
	CurrencyName string          `gorm:"column:currency_name;type:text;not null"`
	RateToBase   decimal.Decimal `gorm:"column:rate_to_base;type:decimal(18,6);not null"`
	UpdatedBy    *uuid.UUID      `gorm:"column:updated_by;type:uuid"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
