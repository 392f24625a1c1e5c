package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// Expense is a cost entry awaiting admin approval. Approval, like payment
// verification, is a one-way decision.
type Expense struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Description string              `gorm:"column:description;type:text;not null"`
	Category    *string             `gorm:"column:category;type:text"`
	Amount      decimal.Decimal     `gorm:"column:amount;type:decimal(18,4);not null"`
	Currency    enums.Currency      `gorm:"column:currency;type:text;not null;default:'TZS'"`
	IncurredAt  time.Time           `gorm:"column:incurred_at;not null"`
	ReceiptRef  *string             `gorm:"column:receipt_ref;type:text"`
	SubmittedBy *uuid.UUID          `gorm:"column:submitted_by;type:uuid"`
	Status      enums.ExpenseStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	DecidedBy   *uuid.UUID          `gorm:"column:decided_by;type:uuid"`
	DecidedAt   *time.Time          `gorm:"column:decided_at"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
