package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// JournalEntry is a lightweight double-entry record written as a side effect
// of payment verification and expense approval. The helper checks that lines
// balance but makes no further accounting guarantees.
type JournalEntry struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Reference string         `gorm:"column:reference;type:text;not null;index"`
	Memo      *string        `gorm:"column:memo;type:text"`
	Currency  enums.Currency `gorm:"column:currency;type:text;not null;default:'TZS'"`
	EntryDate time.Time      `gorm:"column:entry_date;not null"`
	PostedBy  *uuid.UUID     `gorm:"column:posted_by;type:uuid"`
	Lines     []JournalLine  `gorm:"foreignKey:EntryID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
}

// JournalLine is one leg of a journal entry.
type JournalLine struct {
	ID      uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EntryID uuid.UUID       `gorm:"column:entry_id;type:uuid;not null;index"`
	Account string          `gorm:"column:account;type:text;not null"`
	Debit   decimal.Decimal `gorm:"column:debit;type:decimal(18,4);not null;default:0"`
	Credit  decimal.Decimal `gorm:"column:credit;type:decimal(18,4);not null;default:0"`
}
