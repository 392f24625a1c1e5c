package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// Agent is an external partner in the forwarding network. Settlement figures
// for the agent are reported in its configured currency.
type Agent struct {
	ID                 uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string         `gorm:"column:name;type:text;not null"`
	Email              *string        `gorm:"column:email;type:text"`
	Phone              *string        `gorm:"column:phone;type:text"`
	Country            *string        `gorm:"column:country;type:text"`
	SettlementCurrency enums.Currency `gorm:"column:settlement_currency;type:text;not null;default:'TZS'"`
	Routes             pq.StringArray `gorm:"column:routes;type:text[]"`
	Active             bool           `gorm:"column:active;not null;default:true"`
	UserID             *uuid.UUID     `gorm:"column:user_id;type:uuid"`
	CreatedAt          time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
