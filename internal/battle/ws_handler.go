package battle

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	httperrors "github.com/nbkbattle/nbk-battle/pkg/http/errors"
	"github.com/nbkbattle/nbk-battle/pkg/http/ws"
)

// WSHandler streams live session events to spectator screens.
type WSHandler struct {
	service *Service
	hub     *ws.Hub
	logger  zerolog.Logger
}

// NewWSHandler creates the spectator WebSocket handler.
func NewWSHandler(service *Service, hub *ws.Hub, logger zerolog.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		hub:     hub,
		logger:  logger.With().Str("component", "battle_ws").Logger(),
	}
}

// HandleWebSocket handles GET /ws/sessions?session_id=<uuid>. The client gets
// a full session_state snapshot on connect, then live events as they happen.
func (h *WSHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID, err := uuid.Parse(r.URL.Query().Get("session_id"))
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidSessionID, "session_id must be a UUID", "session_id")
		return
	}

	snap, err := h.service.Snapshot(r.Context(), sessionID)
	if err != nil {
		httperrors.RespondNotFound(w, httperrors.ErrCodeSessionNotFound, "Session not found")
		return
	}

	conn, err := ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	c := ws.NewConnection(conn, h.logger)
	connID := h.hub.Register(c)
	h.hub.Watch(sessionID, connID)
	go c.WritePump()

	if msg, err := ws.NewMessage(ws.TypeSessionState, snap); err == nil {
		if err := c.Send(msg); err != nil {
			h.logger.Warn().Err(err).Msg("send initial state failed")
		}
	}

	h.logger.Info().
		Str("session_id", sessionID.String()).
		Str("conn_id", connID.String()).
		Msg("spectator connected")

	// Blocks until the client disconnects. Spectators only send pings.
	c.ReadPump(func(msg ws.Message) error {
		if msg.Type == ws.TypePing {
			return c.Send(ws.Message{Type: ws.TypePong})
		}
		return nil
	})

	h.hub.Unregister(connID)
	h.logger.Info().
		Str("session_id", sessionID.String()).
		Str("conn_id", connID.String()).
		Msg("spectator disconnected")
}
