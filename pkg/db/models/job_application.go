package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// JobApplication is a single tracked application owned by one user.
type JobApplication struct {
	ID              uuid.UUID               `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID               `gorm:"column:user_id;type:uuid;not null;index:idx_job_applications_user_created,priority:1"`
	Company         string                  `gorm:"type:text;not null"`
	Position        string                  `gorm:"type:text;not null"`
	Location        string                  `gorm:"type:text;not null;default:''"`
	Salary          string                  `gorm:"type:text;not null;default:''"`
	Status          enums.ApplicationStatus `gorm:"type:text;not null"`
	ApplicationDate datatypes.Date          `gorm:"column:application_date;not null"`
	JobURL          string                  `gorm:"column:job_url;type:text;not null;default:''"`
	Notes           string                  `gorm:"type:text;not null;default:''"`
	CreatedAt       time.Time               `gorm:"column:created_at;autoCreateTime;index:idx_job_applications_user_created,priority:2"`
	UpdatedAt       time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

func (a *JobApplication) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
