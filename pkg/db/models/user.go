package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// User is the profile row for an identity. Profiles are never hard-deleted.
type User struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Email       string     `gorm:"type:text;not null"`
	Role        enums.Role `gorm:"column:role;type:text;not null"`
	IsActive    bool       `gorm:"column:is_active;not null"`
	DisplayName string     `gorm:"column:display_name;type:text;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}
