package applications

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
)

// Repository persists job applications. Every read and write is scoped by owner.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, app *models.JobApplication) error {
	return r.db.WithContext(ctx).Create(app).Error
}

// FindForOwner returns gorm.ErrRecordNotFound when the row is missing or
// belongs to a different owner.
func (r *Repository) FindForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.JobApplication, error) {
	var app models.JobApplication
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&app).Error
	if err != nil {
		return nil, err
	}
	return &app, nil
}

// Save writes every column of app, keeping the owner filter on the update.
func (r *Repository) Save(ctx context.Context, app *models.JobApplication) error {
	return r.db.WithContext(ctx).
		Model(app).
		Where("user_id = ?", app.UserID).
		Select("company", "position", "location", "salary", "status", "application_date", "job_url", "notes", "updated_at").
		Updates(app).Error
}

// DeleteForOwner reports whether a row was removed.
func (r *Repository) DeleteForOwner(ctx context.Context, ownerID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		Delete(&models.JobApplication{})
	return res.RowsAffected > 0, res.Error
}

// ListForOwner returns the owner's rows, newest first.
func (r *Repository) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]models.JobApplication, error) {
	var rows []models.JobApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
