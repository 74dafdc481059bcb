package handlers

import (
	"net/http"
	"strings"

	"github.com/AnshRaj112/pulse-backend/internal/apperr"
	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/go-chi/render"
	"github.com/google/uuid"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeError maps err to its status and client message. Internal causes are logged, never sent.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = apperr.Internal(err)
	}

	log := logger.FromContext(r.Context())
	if e.Status() >= http.StatusInternalServerError {
		log.Error("request failed", "code", e.Code(), "error", e.Debug())
	} else {
		log.Debug("request rejected", "code", e.Code(), "message", e.Error())
	}

	writeJSON(w, r, e.Status(), ErrorResponse{Success: false, Message: e.Error(), Code: e.Code()})
}

func decodeJSON(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return apperr.Validation(apperr.CodeInvalidBody, "Invalid request body").WithDebug(err)
	}
	return nil
}

func extractBearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireUser resolves the session owner from the Authorization header, or from the
// token query parameter for browser WebSocket clients.
func (h *Handler) requireUser(r *http.Request) (uuid.UUID, error) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = strings.TrimSpace(r.URL.Query().Get("token"))
	}
	if token == "" {
		return uuid.Nil, apperr.Unauthorized("Unauthorized")
	}

	userID, ok, err := h.sessions.ValidateSession(r.Context(), token)
	if err != nil {
		return uuid.Nil, apperr.Internal(err)
	}
	if !ok {
		return uuid.Nil, apperr.Unauthorized("Invalid or expired session")
	}
	return userID, nil
}
