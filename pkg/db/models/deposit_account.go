package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// DepositAccount is a bank or mobile-money account payments can land in.
type DepositAccount struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string         `gorm:"column:name;type:text;not null"`
	AccountNumber *string        `gorm:"column:account_number;type:text"`
	Provider      *string        `gorm:"column:provider;type:text"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'TZS'"`
	Active        bool           `gorm:"column:active;not null;default:true"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
