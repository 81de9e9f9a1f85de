package controllers

import (
	"net/http"

	"github.com/jobtracker/jobtracker-backend/api/responses"
	"github.com/jobtracker/jobtracker-backend/api/validators"
	"github.com/jobtracker/jobtracker-backend/internal/assistant"
	"github.com/jobtracker/jobtracker-backend/pkg/logger"
)

type assistantRequest struct {
	Message string           `json:"message" validate:"required"`
	History []assistant.Turn `json:"history" validate:"omitempty,dive"`
}

// AssistantMessage answers one message. The client owns the conversation and
// resends the prior turns each time; a failed completion still returns 200
// with the apology turn and failed set.
func AssistantMessage(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUser(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var req assistantRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		exchange, err := svc.Ask(r.Context(), userID, req.History, req.Message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, exchange)
	}
}
