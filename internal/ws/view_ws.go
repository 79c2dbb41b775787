package ws

import (
	"encoding/json"
	"net/http"
	"time"

	"ajnabi/config"
	"ajnabi/internal/auth"
	"ajnabi/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// UpgradeViewWS upgrades the connection and streams the view projection.
// Auth is a query-param token since browsers cannot set headers on ws dials.
func UpgradeViewWS(cfg *config.JWTConfig, hub *ViewHub, manager *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		token := c.Query("token")
		if token == "" {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"token required"}`))
			return
		}
		claims, err := auth.ParseAccessToken(cfg, token)
		if err != nil {
			conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
			return
		}
		client := &Client{
			AccountID: claims.AccountID,
			Send:      make(chan []byte, 256),
		}
		hub.Register(client)
		defer client.Close()

		// Initial frame so the client can render without waiting for an event.
		if v, err := manager.View(claims.AccountID); err == nil {
			if data, err := json.Marshal(map[string]interface{}{"type": "view", "view": v}); err == nil {
				client.Send <- data
			}
		}
		go writePump(client, conn)
		readPump(conn)
	}
}

func writePump(c *Client, conn *websocket.Conn) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.Send:
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func readPump(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
