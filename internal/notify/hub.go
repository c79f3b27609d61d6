// Package notify pushes freshly created notifications to connected
// recipients over WebSocket. Delivery is best effort; the persisted
// notification row is the source of truth.
package notify

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

const maxConnsPerUser = 10

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub tracks WebSocket connections per user.
type Hub struct {
	mu          sync.Mutex
	connections map[int64]map[*websocket.Conn]bool
	logger      *logging.Logger
}

func NewHub(logger *logging.Logger) *Hub {
	return &Hub{
		connections: make(map[int64]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// HandleConnection upgrades the request and keeps the connection registered
// until the peer closes it.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request, userID int64) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	h.add(userID, conn)

	go func() {
		defer func() {
			h.remove(userID, conn)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return nil
}

func (h *Hub) add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.connections[userID]; !ok {
		h.connections[userID] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[userID]) >= maxConnsPerUser {
		h.logger.Warnf("Max connections reached for user %d", userID)
		conn.Close()
		return
	}
	h.connections[userID][conn] = true
	h.logger.Infof("Added WebSocket connection for user %d (total: %d)", userID, len(h.connections[userID]))
}

func (h *Hub) remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.connections[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
	}
}

// Push sends a notification to every open connection of the recipient.
// Dead connections are dropped.
func (h *Hub) Push(recipientID int64, n models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.connections[recipientID] {
		if err := conn.WriteJSON(n); err != nil {
			h.logger.Warnf("WebSocket push to user %d failed: %v", recipientID, err)
			conn.Close()
			delete(h.connections[recipientID], conn)
		}
	}
}
