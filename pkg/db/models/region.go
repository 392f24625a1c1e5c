package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// Region is a shipping origin/destination grouping with its own per-kg rates.
type Region struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;type:text;not null;uniqueIndex"`
	Countries    pq.StringArray  `gorm:"column:countries;type:text[]"`
	Active       bool            `gorm:"column:active;not null;default:true"`
	DisplayOrder int             `gorm:"column:display_order;not null;default:0"`
	Pricing      []RegionPricing `gorm:"foreignKey:RegionID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// RegionPricing is one rate row for a region (e.g. air vs sea per-kg rates).
type RegionPricing struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	RegionID     uuid.UUID       `gorm:"column:region_id;type:uuid;not null;index"`
	ServiceType  string          `gorm:"column:service_type;type:text;not null"`
	RatePerKg    decimal.Decimal `gorm:"column:rate_per_kg;type:decimal(18,4);not null"`
	MinimumKg    decimal.Decimal `gorm:"column:minimum_kg;type:decimal(18,4);not null;default:0"`
	Currency     enums.Currency  `gorm:"column:currency;type:text;not null;default:'TZS'"`
	Active       bool            `gorm:"column:active;not null;default:true"`
	DisplayOrder int             `gorm:"column:display_order;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
