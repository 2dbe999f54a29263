package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gorilla "github.com/gorilla/websocket"

	"github.com/gocomet/fleet-rides/pkg/logger"
	"github.com/gocomet/fleet-rides/pkg/websocket"
)

// HandleWebSocket handles GET /v1/ws. Browsers cannot set headers on the
// upgrade request, so the bearer token travels as a query parameter.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	principal, err := h.Auth.ParseToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHENTICATED", "message": err.Error()})
		return
	}

	upgrader := gorilla.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true // Allow all origins in development
		},
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.Logger.Error("Failed to upgrade to WebSocket", logger.Err(err))
		return
	}

	client := websocket.NewClient(h.Hub, conn, principal.ID.String(), string(principal.Role), h.Logger)
	h.Hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
