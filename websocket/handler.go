package websocket

import (
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/thecoder877/Vrticko/utils"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Origin is enforced at the CORS layer; the socket itself
		// authenticates with a JWT
		return true
	},
}

// authMessage is the first frame a client must send after upgrading
type authMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// ServeWS upgrades the request and authenticates the feed connection.
// The browser cannot set an Authorization header on a WebSocket, so the
// token arrives as the first message instead.
func ServeWS(hub *Hub, jwtSecret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("❌ WebSocket upgrade failed: %v", err)
			return
		}

		conn.SetReadDeadline(time.Now().Add(10 * time.Second))

		var auth authMessage
		if err := conn.ReadJSON(&auth); err != nil || auth.Type != "auth" {
			conn.WriteJSON(map[string]string{"type": "error", "message": "authentication required"})
			conn.Close()
			return
		}

		claims, err := utils.ValidateToken(auth.Token, jwtSecret)
		if err != nil {
			log.Printf("❌ WebSocket auth rejected: %v", err)
			conn.WriteJSON(map[string]string{"type": "error", "message": "invalid token"})
			conn.Close()
			return
		}

		conn.SetReadDeadline(time.Time{})

		client := &Client{
			hub:    hub,
			conn:   conn,
			send:   make(chan interface{}, 64),
			UserID: claims.UserID,
			ConnID: uuid.NewString(),
		}

		if err := conn.WriteJSON(map[string]string{"type": "connected"}); err != nil {
			conn.Close()
			return
		}

		hub.register <- client

		go client.writePump()
		go client.readPump()
	}
}
