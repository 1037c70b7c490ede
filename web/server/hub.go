package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-satellite-raytracer/internal/logging"
)

const (
	writeWait      = 5 * time.Second
	clientSendSize = 8

	// maxCommandSize bounds a single incoming websocket message
	maxCommandSize = 4096
)

// client is one websocket viewer. Only its writer goroutine touches conn for writing.
type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks connected viewers and fans messages out to them
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}

	logger   logging.Logger
	onChange func(n int)
}

// NewHub creates an empty hub. onChange, if set, receives the client count
// after every connect and disconnect.
func NewHub(logger logging.Logger, onChange func(n int)) *Hub {
	if logger == nil {
		logger = logging.Noop()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		logger:   logger,
		onChange: onChange,
	}
}

// Count returns the number of connected viewers
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info(context.Background(), "viewer connected", logging.String("client_id", c.id), logging.Int("clients", n))
	if h.onChange != nil {
		h.onChange(n)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	close(c.send)
	n := len(h.clients)
	h.mu.Unlock()

	h.logger.Info(context.Background(), "viewer disconnected", logging.String("client_id", c.id), logging.Int("clients", n))
	if h.onChange != nil {
		h.onChange(n)
	}
}

// Broadcast queues msg for every viewer. Viewers whose queue is full skip
// the message rather than stall the frame loop.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

// BroadcastJSON marshals v and broadcasts it
func (h *Hub) BroadcastJSON(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.Broadcast(data)
	return nil
}

// sendTo queues msg for a single viewer unless it has disconnected
func (h *Hub) sendTo(c *client, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		h.logger.Error(context.Background(), "encoding message", logging.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// writeLoop drains the client's queue onto its connection
func (c *client) writeLoop() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
}
