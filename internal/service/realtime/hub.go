// Package realtime pushes inventory change events to connected websocket clients.
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mamadbah2/stocktake/internal/domain/models"
)

const writeWait = 5 * time.Second

// Client is one open websocket connection.
type Client struct {
	Session models.Session
	Conn    *websocket.Conn

	writeMu sync.Mutex
}

func (c *Client) write(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.Conn.WriteMessage(messageType, data)
}

// Ping sends a keepalive frame.
func (c *Client) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// Message is what clients receive after each mutation.
type Message struct {
	Event models.ChangeEvent `json:"event"`
	Count int                `json:"count"`
}

// Hub tracks open clients and fans change events out to them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *zap.Logger
}

// NewHub returns an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{clients: make(map[*Client]struct{}), logger: logger}
}

// Register adds c to the broadcast set.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("client connected", zap.String("uid", c.Session.UserID))
}

// Unregister removes c and closes its connection.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		_ = c.Conn.Close()
		h.logger.Debug("client disconnected", zap.String("uid", c.Session.UserID))
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// InventoryChanged broadcasts ev. Clients whose write fails are dropped.
func (h *Hub) InventoryChanged(ev models.ChangeEvent, items []models.Item) {
	msg, err := json.Marshal(Message{Event: ev, Count: len(items)})
	if err != nil {
		h.logger.Error("encode change event", zap.Error(err))
		return
	}

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if err := c.write(websocket.TextMessage, msg); err != nil {
			h.logger.Debug("dropping client after failed write", zap.Error(err))
			h.Unregister(c)
		}
	}
}
