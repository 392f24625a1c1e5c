package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// ShippingCharge is one configurable surcharge applied by the shipping
// calculator, in display order, on top of the weight-based base figure.
type ShippingCharge struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label        string           `gorm:"column:label;type:text;not null"`
	ChargeType   enums.ChargeType `gorm:"column:charge_type;type:text;not null;default:'fixed'"`
	Value        decimal.Decimal  `gorm:"column:value;type:decimal(18,4);not null"`
	AppliesTo    string           `gorm:"column:applies_to;type:text;not null;default:'shipping_base'"`
	Active       bool             `gorm:"column:active;not null;default:true"`
	DisplayOrder int              `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// VehicleDutyRate is one schedule row of the vehicle duty estimator.
// Percentage rows apply to the CIF value; fixed rows are flat levies.
type VehicleDutyRate struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label        string           `gorm:"column:label;type:text;not null"`
	ChargeType   enums.ChargeType `gorm:"column:charge_type;type:text;not null;default:'percentage'"`
	Value        decimal.Decimal  `gorm:"column:value;type:decimal(18,4);not null"`
	AppliesTo    string           `gorm:"column:applies_to;type:text;not null;default:'cif_value'"`
	Active       bool             `gorm:"column:active;not null;default:true"`
	DisplayOrder int              `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// ShopForMeCharge is one fee row of the shop-for-me quote calculator.
type ShopForMeCharge struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Label        string           `gorm:"column:label;type:text;not null"`
	ChargeType   enums.ChargeType `gorm:"column:charge_type;type:text;not null;default:'percentage'"`
	Value        decimal.Decimal  `gorm:"column:value;type:decimal(18,4);not null"`
	AppliesTo    string           `gorm:"column:applies_to;type:text;not null;default:'goods_cost'"`
	Active       bool             `gorm:"column:active;not null;default:true"`
	DisplayOrder int              `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
