package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/astraline/astraline-backend/pkg/enums"
)

// User is a dashboard account. Agents link to their Agent row so their API
// access is scoped to their own invoices and settlement figures.
type User struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string         `gorm:"column:email;type:text;not null;uniqueIndex"`
	FullName     string         `gorm:"column:full_name;type:text;not null"`
	PasswordHash string         `gorm:"column:password_hash;type:text;not null"`
	Role         enums.UserRole `gorm:"column:role;type:text;not null;default:'staff'"`
	AgentID      *uuid.UUID     `gorm:"column:agent_id;type:uuid"`
	Active       bool           `gorm:"column:active;not null;default:true"`
	LastLoginAt  *time.Time     `gorm:"column:last_login_at"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
