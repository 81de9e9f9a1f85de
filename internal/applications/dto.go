package applications

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
)

// DateLayout is the wire format of application dates.
const DateLayout = "2006-01-02"

// Application is the transport shape of a job application record.
type Application struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Company         string                  `json:"company"`
	Position        string                  `json:"position"`
	Location        string                  `json:"location"`
	Salary          string                  `json:"salary"`
	Status          enums.ApplicationStatus `json:"status"`
	ApplicationDate string                  `json:"application_date"`
	JobURL          string                  `json:"job_url"`
	Notes           string                  `json:"notes"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// CreateInput is the payload accepted when creating a record.
type CreateInput struct {
	Company         string `json:"company" validate:"required"`
	Position        string `json:"position" validate:"required"`
	Location        string `json:"location"`
	Salary          string `json:"salary"`
	Status          string `json:"status"`
	ApplicationDate string `json:"application_date"`
	JobURL          string `json:"job_url" validate:"omitempty,url"`
	Notes           string `json:"notes"`
}

// UpdateInput merges only the fields that are present.
type UpdateInput struct {
	Company         *string `json:"company"`
	Position        *string `json:"position"`
	Location        *string `json:"location"`
	Salary          *string `json:"salary"`
	Status          *string `json:"status"`
	ApplicationDate *string `json:"application_date"`
	JobURL          *string `json:"job_url" validate:"omitempty,url"`
	Notes           *string `json:"notes"`
}

func FromModel(m *models.JobApplication) Application {
	return Application{
		ID:              m.ID,
		UserID:          m.UserID,
		Company:         m.Company,
		Position:        m.Position,
		Location:        m.Location,
		Salary:          m.Salary,
		Status:          m.Status,
		ApplicationDate: time.Time(m.ApplicationDate).Format(DateLayout),
		JobURL:          m.JobURL,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func FromModels(rows []models.JobApplication) []Application {
	out := make([]Application, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}

func toDate(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}
