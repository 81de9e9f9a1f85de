package controllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/internal/ai"
	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	"github.com/jobtracker/jobtracker-backend/pkg/enums"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
)

type stubAnalyzer struct {
	result     *ai.Result
	err        error
	resume     ai.ResumeInput
	career     ai.CareerInput
	interviews int
}

func (s *stubAnalyzer) AnalyzeResume(ctx context.Context, in ai.ResumeInput) (*ai.Result, error) {
	s.resume = in
	return s.result, s.err
}

func (s *stubAnalyzer) AnalyzeJobDescription(ctx context.Context, in ai.JobDescriptionInput) (*ai.Result, error) {
	return s.result, s.err
}

func (s *stubAnalyzer) CareerInsights(ctx context.Context, in ai.CareerInput) (*ai.Result, error) {
	s.career = in
	return s.result, s.err
}

func (s *stubAnalyzer) InterviewQuestions(ctx context.Context, in ai.InterviewInput) (*ai.Result, error) {
	s.interviews++
	return s.result, s.err
}

type stubProfiles struct {
	user *models.User
	err  error
}

func (s stubProfiles) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.user, s.err
}

type stubLister struct {
	apps []applications.Application
}

func (s stubLister) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]applications.Application, error) {
	return s.apps, nil
}

func TestAIResumeAnalysisTextMode(t *testing.T) {
	analyzer := &stubAnalyzer{result: &ai.Result{Type: "text_analysis", Content: "Hello, good luck!"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/resume-analysis",
		strings.NewReader(`{"resume_text":"Ten years of Go","target_role":"Staff Engineer"}`))
	rec := httptest.NewRecorder()

	AIResumeAnalysis(analyzer, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	var result ai.Result
	decodeEnvelope(t, rec, &result)
	if result.Type != "text_analysis" || result.Content != "Hello, good luck!" {
		t.Fatalf("unexpected result %+v", result)
	}
	if analyzer.resume.TargetRole != "Staff Engineer" {
		t.Fatalf("expected target role forwarded, got %q", analyzer.resume.TargetRole)
	}
}

func TestAIResumeAnalysisRequiresText(t *testing.T) {
	analyzer := &stubAnalyzer{}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/resume-analysis", strings.NewReader(`{"target_role":"x"}`))
	rec := httptest.NewRecorder()

	AIResumeAnalysis(analyzer, testLogger()).ServeHTTP(rec, req)

	expectErrorCode(t, rec, http.StatusBadRequest, string(pkgerrors.CodeValidation))
}

func TestAIJobAnalysisRemoteFailure(t *testing.T) {
	analyzer := &stubAnalyzer{err: pkgerrors.New(pkgerrors.CodeDependency, "AI request failed: job_analysis: boom")}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/job-analysis", strings.NewReader(`{"job_description":"Build things"}`))
	rec := httptest.NewRecorder()

	AIJobAnalysis(analyzer, testLogger()).ServeHTTP(rec, req)

	expectErrorCode(t, rec, http.StatusServiceUnavailable, string(pkgerrors.CodeDependency))
	if !strings.Contains(rec.Body.String(), "AI request failed") {
		t.Fatalf("expected failure message in body, got %s", rec.Body.String())
	}
}

func TestAICareerInsightsLoadsLatestApplications(t *testing.T) {
	userID := uuid.New()
	var apps []applications.Application
	for day := 1; day <= 12; day++ {
		apps = append(apps, applications.Application{
			Company:         fmt.Sprintf("Company %02d", day),
			Position:        "Engineer",
			Status:          enums.ApplicationStatusApplied,
			ApplicationDate: fmt.Sprintf("2026-01-%02d", day),
		})
	}
	analyzer := &stubAnalyzer{result: &ai.Result{Type: ai.ResultTypeStructured}}
	profiles := stubProfiles{user: &models.User{ID: userID, Email: "me@example.com", DisplayName: "me", Role: enums.RoleUser}}
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/ai/career-insights", nil), userID)
	rec := httptest.NewRecorder()

	AICareerInsights(analyzer, profiles, stubLister{apps: apps}, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", rec.Code, rec.Body.String())
	}
	if analyzer.career.Profile.Email != "me@example.com" || analyzer.career.Profile.Role != "user" {
		t.Fatalf("unexpected profile %+v", analyzer.career.Profile)
	}
	if len(analyzer.career.Applications) != careerApplicationLimit {
		t.Fatalf("expected %d applications got %d", careerApplicationLimit, len(analyzer.career.Applications))
	}
	if analyzer.career.Applications[0].Company != "Company 12" {
		t.Fatalf("expected newest first, got %s", analyzer.career.Applications[0].Company)
	}
}

func TestAICareerInsightsMissingProfile(t *testing.T) {
	analyzer := &stubAnalyzer{}
	profiles := stubProfiles{err: pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")}
	req := asUser(httptest.NewRequest(http.MethodPost, "/api/v1/ai/career-insights", nil), uuid.New())
	rec := httptest.NewRecorder()

	AICareerInsights(analyzer, profiles, stubLister{}, testLogger()).ServeHTTP(rec, req)

	expectErrorCode(t, rec, http.StatusNotFound, string(pkgerrors.CodeNotFound))
}

func TestAIInterviewQuestions(t *testing.T) {
	analyzer := &stubAnalyzer{result: &ai.Result{Type: ai.ResultTypeStructured, Sections: map[string]any{"technical": []any{"q1"}}}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/interview-questions", strings.NewReader(`{"job_description":"Go developer"}`))
	rec := httptest.NewRecorder()

	AIInterviewQuestions(analyzer, testLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || analyzer.interviews != 1 {
		t.Fatalf("expected one call and 200, got %d calls status %d", analyzer.interviews, rec.Code)
	}
}
