package websocket

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 1024

	// Budget for answering an unread_count query
	queryTimeout = 5 * time.Second
)

// Client is a single feed connection
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan interface{}
	UserID string
	ConnID string
}

// clientMessage is what the browser sends over the feed socket
type clientMessage struct {
	Type string `json:"type"`
}

// unreadCountReply answers an unread_count query
type unreadCountReply struct {
	Type  string `json:"type"`
	Count int64  `json:"count"`
}

// readPump reads messages from the connection. The only query a client
// can make is "unread_count", answered with a fresh count so the badge
// never drifts from the database.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("⚠️ Feed read error user=%s: %v", c.UserID, err)
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "unread_count":
			ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
			count, err := c.hub.unread.CountUnread(ctx, c.UserID)
			cancel()
			if err != nil {
				log.Printf("❌ Unread count query failed user=%s: %v", c.UserID, err)
				continue
			}
			select {
			case c.send <- unreadCountReply{Type: "unread_count", Count: count}:
			default:
			}
		case "ping":
			select {
			case c.send <- map[string]string{"type": "pong"}:
			default:
			}
		}
	}
}

// writePump writes messages from the hub to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
