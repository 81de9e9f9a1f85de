// Package ai builds completion requests for the career tools and interprets
// the replies.
package ai

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/jobtracker/jobtracker-backend/internal/applications"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
	"github.com/jobtracker/jobtracker-backend/pkg/metrics"
)

const (
	opResume    = "resume_analysis"
	opJob       = "job_analysis"
	opCareer    = "career_insights"
	opInterview = "interview_questions"
	opChat      = "chat"

	// DefaultModel is used when no model is configured.
	DefaultModel = "gpt-4"

	careerApplicationLimit = 10
)

//go:embed prompts/*.tmpl
var promptFS embed.FS

var prompts = template.Must(template.ParseFS(promptFS, "prompts/*.tmpl"))

type aiObserver interface {
	Observe(operation, outcome string, elapsed time.Duration)
}

// FormatterParams configures a Formatter. Timeout of zero leaves the
// caller's context as the only bound.
type FormatterParams struct {
	Completer Completer
	Model     string
	Timeout   time.Duration
	Logger    *logger.Logger
	Metrics   aiObserver
}

// Formatter is the single entry point for AI requests.
type Formatter struct {
	completer Completer
	model     string
	timeout   time.Duration
	logg      *logger.Logger
	metrics   aiObserver
}

func NewFormatter(params FormatterParams) (*Formatter, error) {
	if params.Completer == nil {
		return nil, errors.New("completer required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger required")
	}
	model := strings.TrimSpace(params.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Formatter{
		completer: params.Completer,
		model:     model,
		timeout:   params.Timeout,
		logg:      params.Logger,
		metrics:   params.Metrics,
	}, nil
}

// ResumeInput is the resume analysis request.
type ResumeInput struct {
	ResumeText string `json:"resume_text" validate:"required"`
	TargetRole string `json:"target_role"`
}

// JobDescriptionInput is the job posting analysis request.
type JobDescriptionInput struct {
	JobDescription string `json:"job_description" validate:"required"`
}

// InterviewInput is the interview preparation request.
type InterviewInput struct {
	JobDescription string `json:"job_description" validate:"required"`
	ResumeText     string `json:"resume_text"`
}

// CareerProfile is the part of the profile shared with the model.
type CareerProfile struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// CareerInput carries the profile and the applications, newest first.
type CareerInput struct {
	Profile      CareerProfile
	Applications []applications.Application
}

// AnalyzeResume requests structured resume feedback.
func (f *Formatter) AnalyzeResume(ctx context.Context, in ResumeInput) (*Result, error) {
	if strings.TrimSpace(in.ResumeText) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "resume text is required")
	}
	req, err := f.request("resume", in, 0.7, 200)
	if err != nil {
		return nil, err
	}
	return f.structured(ctx, resumeSchema, req)
}

// AnalyzeJobDescription requests a breakdown of a job posting.
func (f *Formatter) AnalyzeJobDescription(ctx context.Context, in JobDescriptionInput) (*Result, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job description is required")
	}
	req, err := f.request("job", in, 0.7, 200)
	if err != nil {
		return nil, err
	}
	return f.structured(ctx, jobSchema, req)
}

// CareerInsights requests strategy advice from the profile and up to ten of
// the most recent applications.
func (f *Formatter) CareerInsights(ctx context.Context, in CareerInput) (*Result, error) {
	apps := in.Applications
	if len(apps) > careerApplicationLimit {
		apps = apps[:careerApplicationLimit]
	}
	profileJSON, err := json.MarshalIndent(in.Profile, "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode profile")
	}
	appsJSON, err := json.MarshalIndent(careerApplications(apps), "", "  ")
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode applications")
	}
	data := struct {
		ProfileJSON      string
		ApplicationsJSON string
	}{string(profileJSON), string(appsJSON)}

	req, err := f.request("career", data, 0.8, 250)
	if err != nil {
		return nil, err
	}
	return f.structured(ctx, careerSchema, req)
}

// InterviewQuestions requests likely interview questions grouped by category.
func (f *Formatter) InterviewQuestions(ctx context.Context, in InterviewInput) (*Result, error) {
	if strings.TrimSpace(in.JobDescription) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "job description is required")
	}
	req, err := f.request("interview", in, 0.7, 200)
	if err != nil {
		return nil, err
	}
	return f.structured(ctx, interviewSchema, req)
}

// Chat sends the full conversation after a system message embedding
// chatContext as JSON and returns the reply text.
func (f *Formatter) Chat(ctx context.Context, chatContext any, history []Message) (string, error) {
	contextJSON, err := json.MarshalIndent(chatContext, "", "  ")
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode chat context")
	}
	system, err := render("chat_system", struct{ ContextJSON string }{string(contextJSON)})
	if err != nil {
		return "", err
	}
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: system})
	messages = append(messages, history...)

	req := CompletionRequest{Model: f.model, Messages: messages, Temperature: 0.8, MaxTokens: 100}
	start := time.Now()
	text, err := f.complete(ctx, opChat, req)
	if err != nil {
		f.observe(opChat, metrics.OutcomeError, start)
		return "", err
	}
	f.observe(opChat, metrics.OutcomeText, start)
	return text, nil
}

func (f *Formatter) request(prefix string, data any, temperature float64, maxTokens int) (CompletionRequest, error) {
	system, err := render(prefix+"_system", data)
	if err != nil {
		return CompletionRequest{}, err
	}
	user, err := render(prefix+"_user", data)
	if err != nil {
		return CompletionRequest{}, err
	}
	return CompletionRequest{
		Model: f.model,
		Messages: []Message{
			{Role: RoleSystem, Content: system},
			{Role: RoleUser, Content: user},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

func (f *Formatter) structured(ctx context.Context, s schema, req CompletionRequest) (*Result, error) {
	start := time.Now()
	text, err := f.complete(ctx, s.operation, req)
	if err != nil {
		f.observe(s.operation, metrics.OutcomeError, start)
		return nil, err
	}

	result, err := interpret(s, text)
	if err != nil {
		f.observe(s.operation, metrics.OutcomeError, start)
		var shapeErr *UnrecognizedShapeError
		if errors.As(err, &shapeErr) {
			logCtx := f.logg.WithFields(ctx, map[string]any{"operation": s.operation, "keys": shapeErr.Keys})
			f.logg.Warn(logCtx, "ai.unrecognized_shape")
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unrecognized response shape")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "interpret response")
	}

	outcome := metrics.OutcomeStructured
	if result.Type != ResultTypeStructured {
		outcome = metrics.OutcomeText
	}
	f.observe(s.operation, outcome, start)
	return result, nil
}

func (f *Formatter) complete(ctx context.Context, operation string, req CompletionRequest) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	text, err := f.completer.Complete(ctx, req)
	if err != nil {
		logCtx := f.logg.WithOperation(ctx, operation)
		f.logg.Error(logCtx, "ai.request_failed", err)
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("AI request failed: %s: %v", operation, err))
	}
	return text, nil
}

func (f *Formatter) observe(operation, outcome string, start time.Time) {
	if f.metrics == nil {
		return
	}
	f.metrics.Observe(operation, outcome, time.Since(start))
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := prompts.ExecuteTemplate(&buf, name, data); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render prompt "+name)
	}
	return strings.TrimSpace(buf.String()), nil
}

type careerApplication struct {
	Company         string `json:"company"`
	Position        string `json:"position"`
	Location        string `json:"location,omitempty"`
	Status          string `json:"status"`
	ApplicationDate string `json:"application_date"`
}

func careerApplications(apps []applications.Application) []careerApplication {
	out := make([]careerApplication, 0, len(apps))
	for _, app := range apps {
		out = append(out, careerApplication{
			Company:         app.Company,
			Position:        app.Position,
			Location:        app.Location,
			Status:          string(app.Status),
			ApplicationDate: app.ApplicationDate,
		})
	}
	return out
}
