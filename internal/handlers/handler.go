package handlers

import (
	"github.com/AnshRaj112/pulse-backend/internal/services"
)

// Handler holds the services the HTTP layer calls into.
type Handler struct {
	submissions *services.SubmissionService
	surveys     *services.SurveyService
	sessions    services.SessionValidator
	live        *services.LiveFeed
}

func New(submissions *services.SubmissionService, surveys *services.SurveyService, sessions services.SessionValidator, live *services.LiveFeed) *Handler {
	return &Handler{
		submissions: submissions,
		surveys:     surveys,
		sessions:    sessions,
		live:        live,
	}
}
