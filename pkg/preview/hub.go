package preview

import (
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types exchanged over the preview socket.
const (
	TypeHello = "hello"
	TypeSlide = "slide"
	TypeError = "error"
	TypePrev  = "prev"
	TypeNext  = "next"
	TypeSel   = "select"
	TypeEnter = "enter"
	TypeLeave = "leave"
)

// sendBuffer is the number of queued messages a client may fall behind by
// before it is dropped.
const sendBuffer = 64

// Message is the preview socket wire format in both directions.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session,omitempty"`
	Slider  string `json:"slider,omitempty"`
	Index   int    `json:"index"`
	Error   string `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan Message
}

// Hub fans carousel changes out to every connected browser.
type Hub struct {
	mu      sync.Mutex
	clients map[string]*client
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) (h *Hub) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	h = &Hub{
		clients: make(map[string]*client),
		logger:  logger,
	}
	return h
}

// Publish broadcasts a slide change. It never blocks; a client whose queue is
// full is disconnected.
func (h *Hub) Publish(sliderID string, index int) {
	h.broadcast(Message{Type: TypeSlide, Slider: sliderID, Index: index})
}

func (h *Hub) broadcast(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping slow preview client", "session", id)
			h.drop(c)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() (n int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	n = len(h.clients)
	return n
}

// register adds conn under a fresh session id and starts its writer.
func (h *Hub) register(conn *websocket.Conn) (c *client, done <-chan struct{}) {
	c = &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan Message, sendBuffer),
	}

	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for msg := range c.send {
			err := conn.WriteJSON(msg)
			if err != nil {
				h.logger.Debug("preview write failed", "session", c.id, "error", err)
				_ = conn.Close()
				return
			}
		}
	}()

	h.logger.Debug("preview client connected", "session", c.id)
	done = finished
	return c, done
}

// unregister removes the client and stops its writer. Safe to call twice.
func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
		h.logger.Debug("preview client disconnected", "session", c.id)
	}
}

// queue sends msg to a single client unless it is gone.
func (h *Hub) queue(c *client, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}

	select {
	case c.send <- msg:
	default:
		h.logger.Warn("dropping slow preview client", "session", c.id)
		h.drop(c)
	}
}

// drop disconnects a client that fell behind. Closing the connection ends its
// read loop so the handler can clean up. Callers hold h.mu.
func (h *Hub) drop(c *client) {
	delete(h.clients, c.id)
	close(c.send)
	_ = c.conn.Close()
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.clients {
		h.drop(c)
	}
}
