package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/strataform/strataform-backend/pkg/enums"
)

// AdminUser is a back-office identity. Beyond the bearer JWT, every privileged
// request must present two opaque tokens whose hashes live on this row; both
// are regenerated on each successful login, so one admin session exists at a
// time per account.
type AdminUser struct {
	ID                 uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Username           string          `gorm:"column:username;type:text;not null;uniqueIndex"`
	Email              string          `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash       string          `gorm:"column:password_hash;not null"`
	Role               enums.AdminRole `gorm:"column:role;type:text;not null;default:'viewer'"`
	IsActive           bool            `gorm:"column:is_active;not null;default:true"`
	FailedLoginCount   int             `gorm:"column:failed_login_count;not null;default:0"`
	LockedUntil        *time.Time      `gorm:"column:locked_until"`
	SessionTokenHash   *string         `gorm:"column:session_token_hash"`
	AdminTokenHash     *string         `gorm:"column:admin_token_hash"`
	LastLoginAt        *time.Time      `gorm:"column:last_login_at"`
	CreatedAt          time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// IsLockedAt reports whether the lockout window is still in force.
func (a AdminUser) IsLockedAt(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}
