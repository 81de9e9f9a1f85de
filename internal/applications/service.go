package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jobtracker/jobtracker-backend/pkg/db"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
)

const notFoundMessage = "application not found"

// Service is the owner-scoped record store used by the HTTP layer.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Application, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateInput) (*Application, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
	Get(ctx context.Context, ownerID, id uuid.UUID) (*Application, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]Application, error)
	Subscribe(ctx context.Context, ownerID uuid.UUID) (*Subscription, error)
	Summary(ctx context.Context, ownerID uuid.UUID) (Summary, error)
}

type repository interface {
	Create(ctx context.Context, app *models.JobApplication) error
	FindForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.JobApplication, error)
	Save(ctx context.Context, app *models.JobApplication) error
	DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (bool, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.JobApplication, error)
}

type notifier interface {
	Notify(ctx context.Context, ownerID uuid.UUID)
	Subscribe(ctx context.Context, ownerID uuid.UUID) (*Subscription, error)
}

type ServiceParams struct {
	Repo repository
	Feed notifier
	Now  func() time.Time
}

type service struct {
	repo repository
	feed notifier
	now  func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, errors.New("applications repository required")
	}
	if params.Feed == nil {
		return nil, errors.New("feed required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{repo: params.Repo, feed: params.Feed, now: now}, nil
}

// Loader adapts a repository into the feed's snapshot loader.
func Loader(repo repository) SnapshotLoader {
	return func(ctx context.Context, ownerID uuid.UUID) ([]Application, error) {
		rows, err := repo.ListForOwner(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		return FromModels(rows), nil
	}
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateInput) (*Application, error) {
	company, err := requireText("company", input.Company)
	if err != nil {
		return nil, err
	}
	position, err := requireText("position", input.Position)
	if err != nil {
		return nil, err
	}
	status := enums.ApplicationStatusApplied
	if strings.TrimSpace(input.Status) != "" {
		if status, err = parseStatus(input.Status); err != nil {
			return nil, err
		}
	}
	now := s.now().UTC()
	date := toDate(now)
	if strings.TrimSpace(input.ApplicationDate) != "" {
		if date, err = parseDate(input.ApplicationDate); err != nil {
			return nil, err
		}
	}

	model := &models.JobApplication{
		UserID:          ownerID,
		Company:         company,
		Position:        position,
		Location:        strings.TrimSpace(input.Location),
		Salary:          strings.TrimSpace(input.Salary),
		Status:          status,
		ApplicationDate: date,
		JobURL:          strings.TrimSpace(input.JobURL),
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create application")
	}
	s.feed.Notify(context.WithoutCancel(ctx), ownerID)

	out := FromModel(model)
	return &out, nil
}

func (s *service) Update(ctx context.Context, ownerID, id uuid.UUID, input UpdateInput) (*Application, error) {
	model, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Company != nil {
		if model.Company, err = requireText("company", *input.Company); err != nil {
			return nil, err
		}
	}
	if input.Position != nil {
		if model.Position, err = requireText("position", *input.Position); err != nil {
			return nil, err
		}
	}
	if input.Status != nil {
		if model.Status, err = parseStatus(*input.Status); err != nil {
			return nil, err
		}
	}
	if input.ApplicationDate != nil {
		if model.ApplicationDate, err = parseDate(*input.ApplicationDate); err != nil {
			return nil, err
		}
	}
	if input.Location != nil {
		model.Location = strings.TrimSpace(*input.Location)
	}
	if input.Salary != nil {
		model.Salary = strings.TrimSpace(*input.Salary)
	}
	if input.JobURL != nil {
		model.JobURL = strings.TrimSpace(*input.JobURL)
	}
	if input.Notes != nil {
		model.Notes = *input.Notes
	}
	model.UserID = ownerID
	model.UpdatedAt = s.now().UTC()

	if err := s.repo.Save(ctx, model); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update application")
	}
	s.feed.Notify(context.WithoutCancel(ctx), ownerID)

	out := FromModel(model)
	return &out, nil
}

func (s *service) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	deleted, err := s.repo.DeleteForOwner(ctx, ownerID, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete application")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	s.feed.Notify(context.WithoutCancel(ctx), ownerID)
	return nil
}

func (s *service) Get(ctx context.Context, ownerID, id uuid.UUID) (*Application, error) {
	model, err := s.find(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	out := FromModel(model)
	return &out, nil
}

func (s *service) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]Application, error) {
	rows, err := s.repo.ListForOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list applications")
	}
	return FromModels(rows), nil
}

func (s *service) Subscribe(ctx context.Context, ownerID uuid.UUID) (*Subscription, error) {
	sub, err := s.feed.Subscribe(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "subscribe applications")
	}
	return sub, nil
}

func (s *service) Summary(ctx context.Context, ownerID uuid.UUID) (Summary, error) {
	apps, err := s.ListForOwner(ctx, ownerID)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(apps), nil
}

func (s *service) find(ctx context.Context, ownerID, id uuid.UUID) (*models.JobApplication, error) {
	model, err := s.repo.FindForOwner(ctx, ownerID, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load application")
	}
	return model, nil
}

func requireText(field, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", field).
			WithDetails(map[string]string{"field": field})
	}
	return trimmed, nil
}

func parseStatus(value string) (enums.ApplicationStatus, error) {
	status, err := enums.ParseApplicationStatus(value)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status").
			WithDetails(map[string]any{"allowed": enums.ApplicationStatuses()})
	}
	return status, nil
}

func parseDate(value string) (datatypes.Date, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return datatypes.Date{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "application_date must be YYYY-MM-DD")
	}
	return toDate(parsed), nil
}
