package users

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// ProfileDTO is the transport shape of a profile.
type ProfileDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Role        enums.Role `json:"role"`
	IsActive    bool       `json:"is_active"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// CreateProfileDTO holds the data required by the repo to persist a profile.
type CreateProfileDTO struct {
	ID          uuid.UUID
	Email       string
	Role        enums.Role
	DisplayName string
	LastLoginAt *time.Time
}

func FromModel(u *models.User) *ProfileDTO {
	if u == nil {
		return nil
	}
	return &ProfileDTO{
		ID:          u.ID,
		Email:       u.Email,
		Role:        u.Role,
		IsActive:    u.IsActive,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func FromModels(rows []models.User) []ProfileDTO {
	out := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}

func (c CreateProfileDTO) ToModel() *models.User {
	role := c.Role
	if !role.IsValid() {
		role = enums.RoleUser
	}
	return &models.User{
		ID:          c.ID,
		Email:       c.Email,
		Role:        role,
		IsActive:    true,
		DisplayName: c.DisplayName,
		LastLoginAt: c.LastLoginAt,
	}
}

// DisplayNameFromEmail returns the local part of email, or email itself when
// it has no '@'.
func DisplayNameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if at := strings.IndexByte(email, '@'); at > 0 {
		return email[:at]
	}
	return email
}
