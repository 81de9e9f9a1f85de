// Package assistant runs the conversational career assistant. Conversations
// are never stored: the client sends the prior turns with every message.
package assistant

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobtracker/jobtracker-backend/internal/ai"
	"github.com/jobtracker/jobtracker-backend/internal/applications"
	"github.com/jobtracker/jobtracker-backend/pkg/db/models"
	pkgerrors "github.com/jobtracker/jobtracker-backend/pkg/errors"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

// ApologyMessage replaces the assistant reply when the completion fails.
const ApologyMessage = "I apologize, but I encountered an error. Please try again or rephrase your question."

const contextApplicationLimit = 10

// Turn is one immutable conversation entry.
type Turn struct {
	ID        string    `json:"id"`
	Role      ai.Role   `json:"role" validate:"required,oneof=user assistant"`
	Content   string    `json:"content" validate:"required"`
	Timestamp time.Time `json:"timestamp"`
}

// Exchange is the conversation after one Ask: the history, the new user
// turn and the reply.
type Exchange struct {
	Turns  []Turn `json:"turns"`
	Reply  Turn   `json:"reply"`
	Failed bool   `json:"failed"`
}

type Service interface {
	Ask(ctx context.Context, userID uuid.UUID, history []Turn, message string) (*Exchange, error)
}

type profileGetter interface {
	Get(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type applicationLister interface {
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]applications.Application, error)
}

type chatter interface {
	Chat(ctx context.Context, chatContext any, history []ai.Message) (string, error)
}

type ServiceParams struct {
	Profiles     profileGetter
	Applications applicationLister
	Chat         chatter
	Logger       *logger.Logger
	Now          func() time.Time
}

type service struct {
	profiles profileGetter
	apps     applicationLister
	chat     chatter
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(params ServiceParams) (Service, error) {
	switch {
	case params.Profiles == nil:
		return nil, errors.New("profile service required")
	case params.Applications == nil:
		return nil, errors.New("applications service required")
	case params.Chat == nil:
		return nil, errors.New("chat client required")
	case params.Logger == nil:
		return nil, errors.New("logger required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		profiles: params.Profiles,
		apps:     params.Applications,
		chat:     params.Chat,
		logg:     params.Logger,
		now:      now,
	}, nil
}

// chatContext is what the model sees about the user.
type chatContext struct {
	User               contextUser          `json:"user"`
	RecentApplications []contextApplication `json:"recent_applications"`
	TotalApplications  int                  `json:"total_applications"`
	SuccessRate        int                  `json:"success_rate"`
	StatusCounts       map[string]int       `json:"status_counts"`
}

type contextUser struct {
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

type contextApplication struct {
	Company         string `json:"company"`
	Position        string `json:"position"`
	Status          string `json:"status"`
	ApplicationDate string `json:"application_date"`
}

func (s *service) Ask(ctx context.Context, userID uuid.UUID, history []Turn, message string) (*Exchange, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	for _, turn := range history {
		if turn.Role != ai.RoleUser && turn.Role != ai.RoleAssistant {
			return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid turn role %q", turn.Role)
		}
	}

	cc, err := s.buildContext(ctx, userID)
	if err != nil {
		return nil, err
	}

	turns := make([]Turn, 0, len(history)+2)
	turns = append(turns, history...)
	turns = append(turns, s.turn(ai.RoleUser, message))

	messages := make([]ai.Message, 0, len(turns))
	for _, turn := range turns {
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.Content})
	}

	exchange := &Exchange{}
	reply, err := s.chat.Chat(ctx, cc, messages)
	if err != nil {
		logCtx := s.logg.WithUserID(ctx, userID.String())
		s.logg.Error(logCtx, "assistant.chat_failed", err)
		exchange.Failed = true
		reply = ApologyMessage
	}
	exchange.Reply = s.turn(ai.RoleAssistant, reply)
	exchange.Turns = append(turns, exchange.Reply)
	return exchange, nil
}

func (s *service) turn(role ai.Role, content string) Turn {
	at := s.now().UTC()
	return Turn{ID: newTurnID(at), Role: role, Content: content, Timestamp: at}
}

func (s *service) buildContext(ctx context.Context, userID uuid.UUID) (chatContext, error) {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return chatContext{}, err
	}
	apps, err := s.apps.ListForOwner(ctx, userID)
	if err != nil {
		return chatContext{}, err
	}
	summary := applications.Summarize(apps)

	recent := applications.MostRecentByApplicationDate(apps, contextApplicationLimit)
	cc := chatContext{
		User: contextUser{
			DisplayName: profile.DisplayName,
			Email:       profile.Email,
			Role:        string(profile.Role),
		},
		RecentApplications: make([]contextApplication, 0, len(recent)),
		TotalApplications:  summary.Total,
		SuccessRate:        summary.SuccessRate,
		StatusCounts:       make(map[string]int, len(summary.ByStatus)),
	}
	for _, app := range recent {
		cc.RecentApplications = append(cc.RecentApplications, contextApplication{
			Company:         app.Company,
			Position:        app.Position,
			Status:          string(app.Status),
			ApplicationDate: app.ApplicationDate,
		})
	}
	for status, count := range summary.ByStatus {
		cc.StatusCounts[string(status)] = count
	}
	return cc, nil
}
