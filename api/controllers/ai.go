package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/api/responses"
	"github.com/jobtracker/jobtracker-backend/api/validators"
	"github.com/jobtracker/jobtracker-backend/internal/ai"
	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

const careerApplicationLimit = 10

// Analyzer is the structured surface of the AI formatter.
type Analyzer interface {
	AnalyzeResume(ctx context.Context, in ai.ResumeInput) (*ai.Result, error)
	AnalyzeJobDescription(ctx context.Context, in ai.JobDescriptionInput) (*ai.Result, error)
	CareerInsights(ctx context.Context, in ai.CareerInput) (*ai.Result, error)
	InterviewQuestions(ctx context.Context, in ai.InterviewInput) (*ai.Result, error)
}

type profileGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type applicationLister interface {
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]applications.Application, error)
}

func AIResumeAnalysis(analyzer Analyzer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ai.ResumeInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := analyzer.AnalyzeResume(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AIJobAnalysis(analyzer Analyzer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ai.JobDescriptionInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := analyzer.AnalyzeJobDescription(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AICareerInsights takes no body: the caller's profile and latest
// applications are loaded server side.
func AICareerInsights(analyzer Analyzer, profiles profileGetter, apps applicationLister, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		profile, err := profiles.Get(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, err := apps.ListForOwner(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := analyzer.CareerInsights(r.Context(), ai.CareerInput{
			Profile: ai.CareerProfile{
				DisplayName: profile.DisplayName,
				Email:       profile.Email,
				Role:        string(profile.Role),
			},
			Applications: applications.MostRecentByApplicationDate(records, careerApplicationLimit),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func AIInterviewQuestions(analyzer Analyzer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in ai.InterviewInput
		if err := validators.DecodeJSONBody(r, &in); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := analyzer.InterviewQuestions(r.Context(), in)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
