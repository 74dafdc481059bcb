package handlers

import (
	"net/http"

	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/services"
	"github.com/AnshRaj112/pulse-backend/pkg/clientip"
)

// CreateResponseRequest is the body of POST /api/responses.
type CreateResponseRequest struct {
	SurveyID       string  `json:"survey_id"`
	AnswerValue    string  `json:"answer_value"`
	FreeResponse   *string `json:"free_response"`
	RespondentName *string `json:"respondent_name"`
	HashMD5        *string `json:"hash_md5"`
}

// UpdateResponseRequest is the body of PATCH /api/responses.
type UpdateResponseRequest struct {
	ResponseID     string  `json:"response_id"`
	FreeResponse   *string `json:"free_response"`
	RespondentName *string `json:"respondent_name"`
}

// ResponseView is all a respondent gets back. Tracking data and earlier comments
// stay on the server.
type ResponseView struct {
	ID          string `json:"id"`
	AnswerValue string `json:"answer_value"`
	HasDetails  *bool  `json:"has_details,omitempty"`
}

type ResponseEnvelope struct {
	Success  bool         `json:"success"`
	Response ResponseView `json:"response"`
}

func createdView(s *models.Submission) ResponseView {
	hasDetails := s.HasDetails()
	return ResponseView{ID: s.ID.String(), AnswerValue: s.AnswerValue, HasDetails: &hasDetails}
}

// CreateResponse records a click-through. 201 for a new response, 200 when an
// earlier one from the same respondent is returned.
func (h *Handler) CreateResponse(w http.ResponseWriter, r *http.Request) {
	var req CreateResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.submissions.Create(r.Context(), services.CreateInput{
		SurveyID:       req.SurveyID,
		AnswerValue:    req.AnswerValue,
		FreeResponse:   req.FreeResponse,
		RespondentName: req.RespondentName,
		HashMD5:        req.HashMD5,
		IPAddress:      clientip.FromRequest(r),
		UserAgent:      clientip.UserAgent(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.FromContext(r.Context()).Info("response recorded",
		"survey_id", result.Submission.SurveyID,
		"response_id", result.Submission.ID,
		"outcome", result.Outcome,
		"suspected_bot", result.Submission.IsSuspectedBot,
	)

	writeJSON(w, r, result.Status(), ResponseEnvelope{Success: true, Response: createdView(result.Submission)})
}

// UpdateResponse attaches a comment and/or name to an existing response.
func (h *Handler) UpdateResponse(w http.ResponseWriter, r *http.Request) {
	var req UpdateResponseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := h.submissions.UpdateDetails(r.Context(), services.UpdateInput{
		ResponseID:     req.ResponseID,
		FreeResponse:   req.FreeResponse,
		RespondentName: req.RespondentName,
		IPAddress:      clientip.FromRequest(r),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ResponseEnvelope{
		Success:  true,
		Response: ResponseView{ID: updated.ID.String(), AnswerValue: updated.AnswerValue},
	})
}
