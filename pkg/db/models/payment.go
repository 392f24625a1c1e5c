package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// Payment is one settlement entry against an invoice. The amount is always
// stored in the invoice's currency; callers convert beforehand using the live
// rate pair. Once verified or rejected the row is immutable.
type Payment struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID          uuid.UUID                `gorm:"column:invoice_id;type:uuid;not null;index"`
	Amount             decimal.Decimal          `gorm:"column:amount;type:decimal(18,4);not null"`
	Currency           enums.Currency           `gorm:"column:currency;type:text;not null"`
	Method             enums.PaymentMethod      `gorm:"column:method;type:text;not null;default:'bank_transfer'"`
	DepositAccountID   *uuid.UUID               `gorm:"column:deposit_account_id;type:uuid"`
	PaidAt             time.Time                `gorm:"column:paid_at;not null"`
	Reference          *string                  `gorm:"column:reference;type:text"`
	Notes              *string                  `gorm:"column:notes;type:text"`
	RecordedBy         *uuid.UUID               `gorm:"column:recorded_by;type:uuid"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:text;not null;default:'pending'"`
	VerifiedAt         *time.Time               `gorm:"column:verified_at"`
	VerifiedBy         *uuid.UUID               `gorm:"column:verified_by;type:uuid"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
