package routes

import (
	"net/http"

	"github.com/AnshRaj112/pulse-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the API. responseLimit guards the public response endpoints.
func SetupRoutes(r chi.Router, h *handlers.Handler, responseLimit func(http.Handler) http.Handler) {
	// Public respondent routes
	r.Get("/api/s/{linkId}", h.GetPublicSurvey)
	r.With(responseLimit).Post("/api/responses", h.CreateResponse)
	r.With(responseLimit).Patch("/api/responses", h.UpdateResponse)

	// Owner routes (session required)
	r.Route("/api/surveys/{id}", func(r chi.Router) {
		r.Get("/responses", h.ListResponses)
		r.Delete("/responses/{responseId}", h.DeleteResponse)
		r.Get("/results", h.GetResults)
		r.Get("/scanner-events", h.ListScannerEvents)
	})

	// Live results
	r.Get("/ws/surveys/{id}/live", h.LiveResults)
}
