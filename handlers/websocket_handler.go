package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Dosada05/tournament-bracket/realtime"
	"github.com/Dosada05/tournament-bracket/services"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	hub            *realtime.Hub
	sessionService services.SessionService
	upgrader       websocket.Upgrader
	logger         *slog.Logger
}

// NewWebSocketHandler accepts connections from allowedOrigins; "*" allows any
// origin.
func NewWebSocketHandler(hub *realtime.Hub, ss services.SessionService, allowedOrigins []string, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:            hub,
		sessionService: ss,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		if origin == "*" {
			return func(*http.Request) bool { return true }
		}
		set[origin] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

// ServeWs joins the caller to the session's room. The first message is a
// BRACKET_SNAPSHOT with the current session view.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	view, err := h.sessionService.Get(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("websocket upgrade failed", slog.Int("session_id", sessionID), slog.Any("error", err))
		return
	}

	room := realtime.SessionRoom(sessionID)
	client := realtime.NewClient(h.hub, conn, room)

	snapshot, err := json.Marshal(realtime.Message{Type: realtime.EventBracketSnapshot, Payload: view, RoomID: room})
	if err == nil {
		client.Send <- snapshot
	}

	if !h.hub.Join(client) {
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	go client.WritePump()
	go client.ReadPump()

	h.logger.Info("websocket client joined", slog.String("room", room))
}
