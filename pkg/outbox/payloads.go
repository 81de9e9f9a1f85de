package outbox

import (
	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// UserRoleChanged records an administrator changing a user's role.
type UserRoleChanged struct {
	UserID       uuid.UUID  `json:"user_id"`
	PreviousRole enums.Role `json:"previous_role"`
	Role         enums.Role `json:"role"`
}

// UserActivationChanged records an administrator enabling or disabling a user.
type UserActivationChanged struct {
	UserID   uuid.UUID `json:"user_id"`
	IsActive bool      `json:"is_active"`
}
