package handlers

import (
	"net/http"
	"strconv"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/services"
	"github.com/go-chi/chi/v5"
)

// PublicSurvey is what the respondent form needs to render.
type PublicSurvey struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	RequireName bool   `json:"require_name"`
	IsActive    bool   `json:"is_active"`
}

// GetPublicSurvey handles GET /api/s/{linkId}.
func (h *Handler) GetPublicSurvey(w http.ResponseWriter, r *http.Request) {
	survey, err := h.surveys.PublicSurvey(r.Context(), chi.URLParam(r, "linkId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{
		"success": true,
		"survey": PublicSurvey{
			ID:          survey.ID.String(),
			Title:       survey.Title,
			RequireName: survey.RequireName,
			IsActive:    survey.IsActive,
		},
	})
}

// ListResponses handles GET /api/surveys/{id}/responses. Suspected bots are hidden
// unless include_bots=true.
func (h *Handler) ListResponses(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	includeBots, _ := strconv.ParseBool(r.URL.Query().Get("include_bots"))
	responses, err := h.surveys.ListResponses(r.Context(), userID, chi.URLParam(r, "id"), includeBots)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Success   bool                `json:"success"`
		Responses []models.Submission `json:"responses"`
		Total     int                 `json:"total"`
	}{true, responses, len(responses)})
}

// DeleteResponse handles DELETE /api/surveys/{id}/responses/{responseId}.
func (h *Handler) DeleteResponse(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = h.surveys.DeleteResponse(r.Context(), userID, chi.URLParam(r, "id"), chi.URLParam(r, "responseId"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]any{"success": true, "message": "Response deleted"})
}

// GetResults handles GET /api/surveys/{id}/results.
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	results, err := h.surveys.Results(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Success bool              `json:"success"`
		Results *services.Results `json:"results"`
	}{true, results})
}

// ListScannerEvents handles GET /api/surveys/{id}/scanner-events?limit=N.
func (h *Handler) ListScannerEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	limit, _ := strconv.ParseInt(r.URL.Query().Get("limit"), 10, 64)
	events, err := h.surveys.ScannerEvents(r.Context(), userID, chi.URLParam(r, "id"), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, struct {
		Success bool                  `json:"success"`
		Events  []models.ScannerEvent `json:"events"`
	}{true, events})
}
