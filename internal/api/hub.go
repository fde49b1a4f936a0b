package api

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/julianstephens/feedlog/internal/logger"
	"github.com/julianstephens/feedlog/internal/metrics"
)

const writeWait = 10 * time.Second

type wsClient struct {
	conn *websocket.Conn
	// gorilla/websocket allows one concurrent writer per connection
	writeMu sync.Mutex
}

func (c *wsClient) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// Hub fans live summary updates out to every connected stream client.
type Hub struct {
	mu      sync.RWMutex
	clients map[*wsClient]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*wsClient]struct{})}
}

func (h *Hub) Register(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.SetStreamClients(n)
}

func (h *Hub) Unregister(c *wsClient) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		_ = c.conn.Close()
		metrics.SetStreamClients(n)
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends payload as JSON to every client, dropping clients whose
// write fails.
func (h *Hub) Broadcast(payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to encode stream message", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			logger.Debug("Dropping stream client", "error", err)
			h.Unregister(c)
		}
	}
}

func (h *Hub) sendTo(c *wsClient, payload any) {
	msg, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := c.write(websocket.TextMessage, msg); err != nil {
		h.Unregister(c)
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		h.Unregister(c)
	}
}
