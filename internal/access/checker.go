package access

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

// ErrAdminRequired is the message surfaced when the admin gate refuses a call.
const ErrAdminRequired = "admin access required"

type profileReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Checker evaluates admin privileges against the current profile row.
// Nothing is cached: each call re-reads the profile so role changes apply
// to the very next privileged request.
type Checker struct {
	profiles profileReader
	logg     *logger.Logger
}

// NewChecker builds a Checker.
func NewChecker(profiles profileReader, logg *logger.Logger) (*Checker, error) {
	if profiles == nil {
		return nil, errors.New("profile reader required")
	}
	if logg == nil {
		return nil, errors.New("logger required")
	}
	return &Checker{profiles: profiles, logg: logg}, nil
}

// IsAdmin reports whether userID currently holds the admin role. A missing
// profile or a lookup failure yields false; failures are logged only.
func (c *Checker) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	profile, err := c.profiles.FindByID(ctx, userID)
	if err != nil {
		if !db.IsNotFound(err) {
			logCtx := c.logg.WithUserID(ctx, userID.String())
			c.logg.Error(logCtx, "access.is_admin.lookup_failed", err)
		}
		return false
	}
	return profile != nil && profile.Role == enums.RoleAdmin
}

// RequireAdmin returns a forbidden error unless userID is an admin right now.
func (c *Checker) RequireAdmin(ctx context.Context, userID uuid.UUID) error {
	if !c.IsAdmin(ctx, userID) {
		return pkgerrors.New(pkgerrors.CodeForbidden, ErrAdminRequired)
	}
	return nil
}
