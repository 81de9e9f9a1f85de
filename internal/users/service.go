package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/internal/access"
	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
)

type profileRepository interface {
	Create(ctx context.Context, dto CreateProfileDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Service manages the profile lifecycle that follows a successful sign-in.
type Service interface {
	EnsureProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error)
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type ServiceParams struct {
	Repo           profileRepository
	AdminAllowlist []string
	Now            func() time.Time
}

type service struct {
	repo      profileRepository
	allowlist []string
	now       func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("profile repository required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:      params.Repo,
		allowlist: append([]string(nil), params.AdminAllowlist...),
		now:       now,
	}, nil
}

// EnsureProfile creates the profile on first sign-in and refreshes the
// last-login timestamp on later ones.
func (s *service) EnsureProfile(ctx context.Context, id uuid.UUID, email string) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	now := s.now().UTC()

	existing, err := s.repo.FindByID(ctx, id)
	switch {
	case err == nil:
		if err := s.repo.UpdateLastLogin(ctx, id, now); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
		}
		existing.LastLoginAt = &now
		return existing, nil
	case !db.IsNotFound(err):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}

	created, err := s.repo.Create(ctx, CreateProfileDTO{
		ID:          id,
		Email:       email,
		Role:        access.DetermineInitialRole(email, s.allowlist),
		DisplayName: DisplayNameFromEmail(email),
		LastLoginAt: &now,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			// a concurrent sign-in created it first
			return s.repo.FindByID(ctx, id)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load profile")
	}
	return profile, nil
}
