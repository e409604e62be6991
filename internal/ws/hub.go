package ws

import (
	"sync"

	"github.com/gorilla/websocket"

	"alerting-platform/internal/logging"
)

const maxConnsPerUser = 10

// Hub tracks open websocket connections per user so in-app deliveries can
// be pushed in realtime. Push is best effort: a closed socket is dropped,
// never retried.
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

func (h *Hub) Add(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.connections[userID]; !exists {
		h.connections[userID] = make(map[*websocket.Conn]bool)
	}
	if len(h.connections[userID]) >= maxConnsPerUser {
		h.logger.Warnf("max websocket connections reached for user %d", userID)
		return
	}
	h.connections[userID][conn] = true
	h.logger.Infof("added websocket connection for user %d (total: %d)", userID, len(h.connections[userID]))
}

func (h *Hub) Remove(userID int64, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, exists := h.connections[userID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.connections, userID)
		}
	}
}

// Push writes the payload to every open connection of the user.
func (h *Hub) Push(userID int64, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, exists := h.connections[userID]
	if !exists {
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warnf("failed to push to user %d, dropping connection: %v", userID, err)
			conn.Close()
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(h.connections, userID)
	}
}
