// Package access holds the role model and the admin authorization gate.
package access

import (
	"strings"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// DetermineInitialRole returns RoleAdmin when email is in the allowlist,
// compared case-insensitively, and RoleUser otherwise.
func DetermineInitialRole(email string, allowlist []string) enums.Role {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return enums.RoleUser
	}
	for _, candidate := range allowlist {
		if strings.ToLower(strings.TrimSpace(candidate)) == normalized {
			return enums.RoleAdmin
		}
	}
	return enums.RoleUser
}
