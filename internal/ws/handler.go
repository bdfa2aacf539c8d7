package ws

import (
	"net/http"

	"number_rush/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// HandleWS upgrades /ws?device=<id> and starts a game session on it.
func HandleWS(hub *Hub, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		client := NewClient(c.Query("device"), conn, hub)
		go client.Run()
	}
}
