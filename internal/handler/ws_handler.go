package handler

import (
	"net/http"

	"notebook-console/internal/middleware"
	"notebook-console/internal/websocket"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

type WebSocketHandler struct {
	manager  *websocket.Manager
	upgrader ws.Upgrader
}

func NewWebSocketHandler(manager *websocket.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	s := middleware.GetSession(r)
	if s == nil {
		http.Error(w, "missing session", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to upgrade websocket connection")
		return
	}

	client := websocket.NewClient(uuid.New().String(), s.ID, conn, h.manager)

	select {
	case h.manager.Register <- client:
	case <-h.manager.Done():
		conn.Close()
		return
	}

	go client.WritePump()
	go client.ReadPump()
}

// WebSocketMessageHandler answers the messages browsers send; only pings
// are expected.
type WebSocketMessageHandler struct {
	logger zerolog.Logger
}

func NewWebSocketMessageHandler(logger zerolog.Logger) *WebSocketMessageHandler {
	return &WebSocketMessageHandler{logger: logger}
}

func (h *WebSocketMessageHandler) HandleWebSocketMessage(client *websocket.Client, msg *websocket.Message) error {
	switch msg.Type {
	case websocket.TypePing:
		return h.handlePing(client)

	default:
		h.logger.Debug().Str("type", string(msg.Type)).Msg("unknown message type")
	}

	return nil
}

func (h *WebSocketMessageHandler) handlePing(client *websocket.Client) error {
	pongMsg, err := websocket.NewMessage(websocket.TypePong, nil)
	if err != nil {
		return err
	}

	return client.Manager.SendToClient(client.ID, pongMsg)
}
