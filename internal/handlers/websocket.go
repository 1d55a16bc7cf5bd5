package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorilla "github.com/gorilla/websocket"

	"github.com/parley-chat/parley/internal/permissions"
	"github.com/parley-chat/parley/internal/websocket"
)

var upgrader = gorilla.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS закрывается на уровне reverse proxy
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WebSocketHandler struct {
	hub   *websocket.Hub
	perms permissions.Service
}

func NewWebSocketHandler(hub *websocket.Hub, perms permissions.Service) *WebSocketHandler {
	return &WebSocketHandler{hub: hub, perms: perms}
}

// Connect апгрейдит соединение и запускает насосы клиента
func (h *WebSocketHandler) Connect(c *gin.Context) {
	userID := actorID(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump(&subscribeAuthorizer{perms: h.perms})
}

// subscribeAuthorizer пускает в канал только участников его комнаты
type subscribeAuthorizer struct {
	perms permissions.Service
}

func (a *subscribeAuthorizer) CanSubscribe(userID, channelID uuid.UUID) bool {
	ok, err := a.perms.IsInRoomByChannel(context.Background(), channelID, userID, "")
	if err != nil {
		return false
	}
	return ok
}
