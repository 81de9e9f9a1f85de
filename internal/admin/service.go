package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/internal/users"
	"github.com/jobtracker/jobtracker-backend/pkg/config"
	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
	"github.com/jobtracker/jobtracker-backend/pkg/outbox"
)

const (
	errInvalidRole      = "invalid role specified"
	errUserNotFound     = "user not found"
	errSelfDeactivation = "cannot deactivate your own account"
	errActiveRequired   = "is_active is required"
)

type adminGuard interface {
	RequireAdmin(ctx context.Context, userID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the user-management operations reserved for admins.
type Service interface {
	ListAllUsers(ctx context.Context, requester uuid.UUID) ([]users.ProfileDTO, error)
	GetStatistics(ctx context.Context, requester uuid.UUID) (*Statistics, error)
	UpdateUserRole(ctx context.Context, requester, target uuid.UUID, role string) (*users.ProfileDTO, error)
	// SetActive checks the admin gate before rejecting a nil flag.
	SetActive(ctx context.Context, requester, target uuid.UUID, active *bool) (*users.ProfileDTO, error)
}

type ServiceParams struct {
	DB                    txRunner
	Users                 *users.Repository
	Access                adminGuard
	Outbox                outbox.Emitter
	AllowSelfDeactivation bool
	Logger                *logger.Logger
}

type service struct {
	db        txRunner
	users     *users.Repository
	access    adminGuard
	outbox    outbox.Emitter
	allowSelf bool
	logg      *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, errors.New("db client required")
	}
	if params.Users == nil {
		return nil, errors.New("users repository required")
	}
	if params.Access == nil {
		return nil, errors.New("access checker required")
	}
	if params.Outbox == nil {
		return nil, errors.New("outbox emitter required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	return &service{
		db:        params.DB,
		users:     params.Users,
		access:    params.Access,
		outbox:    params.Outbox,
		allowSelf: params.AllowSelfDeactivation,
		logg:      params.Logger,
	}, nil
}

func (s *service) ListAllUsers(ctx context.Context, requester uuid.UUID) ([]users.ProfileDTO, error) {
	if err := s.access.RequireAdmin(ctx, requester); err != nil {
		return nil, err
	}
	rows, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return users.FromModels(rows), nil
}

func (s *service) GetStatistics(ctx context.Context, requester uuid.UUID) (*Statistics, error) {
	if err := s.access.RequireAdmin(ctx, requester); err != nil {
		return nil, err
	}
	rows, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return summarize(rows), nil
}

// summarize expects rows ordered newest first.
func summarize(rows []models.User) *Statistics {
	stats := &Statistics{TotalUsers: len(rows)}
	for _, row := range rows {
		if row.IsActive {
			stats.ActiveUsers++
		}
		switch row.Role {
		case enums.RoleAdmin:
			stats.AdminUsers++
		case enums.RoleModerator:
			stats.ModeratorUsers++
		case enums.RoleUser:
			stats.RegularUsers++
		}
	}
	recent := rows
	if len(recent) > recentUsersLimit {
		recent = recent[:recentUsersLimit]
	}
	stats.RecentUsers = users.FromModels(recent)
	return stats
}

func (s *service) UpdateUserRole(ctx context.Context, requester, target uuid.UUID, role string) (*users.ProfileDTO, error) {
	if err := s.access.RequireAdmin(ctx, requester); err != nil {
		return nil, err
	}
	newRole, err := enums.ParseRole(strings.TrimSpace(role))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, errInvalidRole)
	}

	var updated *models.User
	err = s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		current, err := s.loadTarget(ctx, repo, target)
		if err != nil {
			return err
		}
		if _, err := repo.UpdateRole(ctx, target, newRole); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update role")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserRoleChanged,
			AggregateType: enums.AggregateUser,
			AggregateID:   target,
			Actor:         &outbox.ActorRef{UserID: requester, Role: enums.RoleAdmin},
			Data:          outbox.UserRoleChanged{UserID: target, PreviousRole: current.Role, Role: newRole},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit role change")
		}
		current.Role = newRole
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"target_user_id": target.String(),
		"role":           newRole,
	})
	s.logg.Info(logCtx, "user role updated")
	return users.FromModel(updated), nil
}

func (s *service) SetActive(ctx context.Context, requester, target uuid.UUID, flag *bool) (*users.ProfileDTO, error) {
	if err := s.access.RequireAdmin(ctx, requester); err != nil {
		return nil, err
	}
	if flag == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, errActiveRequired)
	}
	active := *flag
	if requester == target && !active && !s.allowSelf {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, errSelfDeactivation).
			WithDetails(map[string]string{"setting": config.EnvAdminSelfDeactivation})
	}

	var updated *models.User
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.users.WithTx(tx)
		current, err := s.loadTarget(ctx, repo, target)
		if err != nil {
			return err
		}
		if _, err := repo.SetActive(ctx, target, active); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update active flag")
		}
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventUserActivationChanged,
			AggregateType: enums.AggregateUser,
			AggregateID:   target,
			Actor:         &outbox.ActorRef{UserID: requester, Role: enums.RoleAdmin},
			Data:          outbox.UserActivationChanged{UserID: target, IsActive: active},
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "emit activation change")
		}
		current.IsActive = active
		updated = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"target_user_id": target.String(),
		"is_active":      active,
	})
	s.logg.Info(logCtx, "user activation updated")
	return users.FromModel(updated), nil
}

func (s *service) loadTarget(ctx context.Context, repo *users.Repository, id uuid.UUID) (*models.User, error) {
	current, err := repo.FindByID(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, errUserNotFound)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return current, nil
}
