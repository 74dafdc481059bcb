package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

const (
	livePongWait   = 90 * time.Second
	livePingPeriod = 30 * time.Second
	liveWriteWait  = 5 * time.Second
)

var liveUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Origin is enforced by CORS at the HTTP layer; the session token authorizes the socket.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// LiveResults streams response events for an owned survey over WebSocket.
// Authentication: Authorization: Bearer <token> or ?token=<token>.
func (h *Handler) LiveResults(w http.ResponseWriter, r *http.Request) {
	userID, err := h.requireUser(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	survey, err := h.surveys.OwnedSurvey(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	conn, err := liveUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	surveyID := survey.ID.String()
	log := logger.FromContext(r.Context()).With("survey_id", surveyID)

	// Backfill before subscribing so history arrives first.
	recent, err := h.live.Recent(r.Context(), surveyID)
	if err != nil {
		log.Debug("live backfill failed", "error", err)
	}
	for _, event := range recent {
		_ = conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
		if err := conn.WriteJSON(event); err != nil {
			return
		}
	}
	_ = conn.SetWriteDeadline(time.Time{})

	unsubscribe := h.live.Subscribe(surveyID, conn)
	defer unsubscribe()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go keepAlive(ctx, conn)

	// Clients only send pongs; the read loop exists to notice disconnects.
	conn.SetReadLimit(1024)
	_ = conn.SetReadDeadline(time.Now().Add(livePongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(livePongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(livePingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteWait)); err != nil {
				return
			}
		}
	}
}
