package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// InvoiceLineItem is one priced row of an invoice. Position mirrors the order
// the client submitted; percent-type items depend on the rows above them, so
// reordering changes the persisted amounts.
type InvoiceLineItem struct {
	ID               uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceID        uuid.UUID        `gorm:"column:invoice_id;type:uuid;not null;index"`
	Description      string           `gorm:"column:description;type:text;not null"`
	ItemType         *string          `gorm:"column:item_type;type:text"`
	UnitType         enums.UnitType   `gorm:"column:unit_type;type:text;not null;default:'fixed'"`
	Quantity         decimal.Decimal  `gorm:"column:quantity;type:decimal(18,4);not null;default:1"`
	UnitPrice        decimal.Decimal  `gorm:"column:unit_price;type:decimal(18,4);not null;default:0"`
	Amount           decimal.Decimal  `gorm:"column:amount;type:decimal(18,4);not null;default:0"`
	Currency         enums.Currency   `gorm:"column:currency;type:text;not null;default:'TZS'"`
	WeightKg         *decimal.Decimal `gorm:"column:weight_kg;type:decimal(18,4)"`
	ProductServiceID *uuid.UUID       `gorm:"column:product_service_id;type:uuid"`
	Position         int              `gorm:"column:position;not null;default:0"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
