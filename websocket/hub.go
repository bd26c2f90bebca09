package websocket

import (
	"context"
	"log"
	"sync"

	"github.com/thecoder877/Vrticko/models"
)

// UnreadCounter recomputes authoritative unread counts. Implemented by
// database.RecipientRepository. Declared here to avoid a dependency cycle.
type UnreadCounter interface {
	CountUnread(ctx context.Context, userID string) (int64, error)
}

// feedMessage targets one user's connections with a payload
type feedMessage struct {
	UserID  string
	Payload interface{}
}

// Hub tracks active feed connections and routes change signals to them.
// A user may hold several connections (tabs, devices); each gets every
// event scoped to that user, in enqueue order.
type Hub struct {
	// Connections per user, keyed by connection ID
	connections map[string]map[string]*Client

	mu sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *feedMessage

	unread UnreadCounter
}

// NewHub creates a new feed hub
func NewHub(unread UnreadCounter) *Hub {
	return &Hub{
		connections: make(map[string]map[string]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		broadcast:   make(chan *feedMessage, 256),
		unread:      unread,
	}
}

// Run drives the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.connections[client.UserID] == nil {
				h.connections[client.UserID] = make(map[string]*Client)
			}
			h.connections[client.UserID][client.ConnID] = client
			total := len(h.connections[client.UserID])
			h.mu.Unlock()
			log.Printf("🔌 Feed client connected: user=%s conn=%s (connections: %d)", client.UserID, client.ConnID, total)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.connections[client.UserID]; ok {
				if _, ok := conns[client.ConnID]; ok {
					delete(conns, client.ConnID)
					close(client.send)
					if len(conns) == 0 {
						delete(h.connections, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			log.Printf("👋 Feed client disconnected: user=%s conn=%s", client.UserID, client.ConnID)

		case message := <-h.broadcast:
			// Full lock: the slow-consumer path mutates the connection map
			h.mu.Lock()
			conns := h.connections[message.UserID]
			for connID, client := range conns {
				select {
				case client.send <- message.Payload:
				default:
					// Slow consumer; drop the connection rather than block
					// the feed for everyone else
					log.Printf("❌ Send buffer full for user=%s conn=%s, dropping connection", message.UserID, connID)
					close(client.send)
					delete(conns, connID)
				}
			}
			if len(conns) == 0 {
				delete(h.connections, message.UserID)
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastRecipientEvent queues a recipient-record change signal for
// every connection of the event's user. Events for one user are delivered
// in enqueue order; there is no cross-user ordering.
func (h *Hub) BroadcastRecipientEvent(event models.FeedEvent) {
	h.broadcast <- &feedMessage{UserID: event.UserID, Payload: event}
}

// IsUserOnline reports whether a user holds at least one feed connection
func (h *Hub) IsUserOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.connections[userID]) > 0
}

// ConnectionCount returns the number of open connections across all users
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown closes every connection
func (h *Hub) Shutdown() {
	h.mu.Lock()
	for userID, conns := range h.connections {
		for connID, client := range conns {
			close(client.send)
			client.conn.Close()
			log.Printf("🔌 Closed feed connection user=%s conn=%s", userID, connID)
		}
	}
	h.connections = make(map[string]map[string]*Client)
	h.mu.Unlock()

	log.Println("✓ Feed hub stopped")
}
