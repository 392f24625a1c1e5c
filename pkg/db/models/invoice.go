package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// Invoice is a billing document addressed to a customer or an external agent.
// Amount is the computed total; AmountPaid is a denormalized cache of the sum
// of verified payments and may lag behind the live payment rows, so readers
// reconcile the two instead of trusting either alone.
type Invoice struct {
	ID            uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNumber string                 `gorm:"column:invoice_number;type:text;not null;uniqueIndex"`
	CustomerID    *uuid.UUID             `gorm:"column:customer_id;type:uuid;index"`
	AgentID       *uuid.UUID             `gorm:"column:agent_id;type:uuid;index"`
	Direction     enums.InvoiceDirection `gorm:"column:direction;type:text;not null;default:'to_customer'"`
	Currency      enums.Currency         `gorm:"column:currency;type:text;not null;default:'TZS'"`
	Amount        decimal.Decimal        `gorm:"column:amount;type:decimal(18,4);not null"`
	AmountPaid    decimal.Decimal        `gorm:"column:amount_paid;type:decimal(18,4);not null;default:0"`
	AmountInBase  decimal.Decimal        `gorm:"column:amount_in_base;type:decimal(18,4);not null;default:0"`
	Discount      *string                `gorm:"column:discount;type:text"`
	TaxRate       decimal.Decimal        `gorm:"column:tax_rate;type:decimal(10,4);not null;default:0"`
	Status        enums.InvoiceStatus    `gorm:"column:status;type:text;not null;default:'pending'"`
	DueDate       *time.Time             `gorm:"column:due_date"`
	Notes         *string                `gorm:"column:notes"`
	CreatedBy     *uuid.UUID             `gorm:"column:created_by;type:uuid"`
	LineItems     []InvoiceLineItem      `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	Payments      []Payment              `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
