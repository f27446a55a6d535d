// Package live pushes the record list to websocket clients: the current
// list on connect, then a fresh snapshot after every mutation.
package live

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/aanand-mishra/student-records/internal/records"
	"github.com/aanand-mishra/student-records/internal/types"
)

// WebSocket configuration constants.
const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// MessageTypeSnapshot is the only message type the hub sends.
const MessageTypeSnapshot = "snapshot"

// Message is one frame sent to clients.
type Message struct {
	Type      string          `json:"type"`
	Students  []types.Student `json:"students"`
	Timestamp time.Time       `json:"timestamp"`
}

// Source is the part of the record store the hub watches.
type Source interface {
	List() []types.Student
	Subscribe(records.Listener)
}

type client struct {
	conn *websocket.Conn
	send chan Message
	once sync.Once
	done chan struct{}
}

func (c *client) stop() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans snapshots out to connected clients.
type Hub struct {
	upgrader websocket.Upgrader
	logger   *zap.Logger

	mu      sync.Mutex
	last    []types.Student
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub seeded with the current list and subscribed to
// every later change.
func NewHub(src Source, logger *zap.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(_ *http.Request) bool {
				return true
			},
		},
		logger:  logger,
		last:    src.List(),
		clients: make(map[*client]struct{}),
	}
	src.Subscribe(h.Publish)
	return h
}

// Publish queues a snapshot for every client. It never blocks: a client
// whose buffer is full is disconnected.
func (h *Hub) Publish(students []types.Student) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.last = students
	msg := snapshot(students)

	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("websocket client too slow, dropping",
				zap.String("remote_addr", c.conn.RemoteAddr().String()))
			delete(h.clients, c)
			c.stop()
		}
	}
}

// ServeHTTP upgrades the connection and registers the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade connection", zap.Error(err))
		return
	}

	c := &client{
		conn: conn,
		send: make(chan Message, sendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	// Queued under the lock so no Publish can slip in ahead of it.
	c.send <- snapshot(h.last)
	h.mu.Unlock()

	h.logger.Info("websocket client connected",
		zap.String("remote_addr", conn.RemoteAddr().String()))

	go h.writePump(c)
	go h.readPump(c)
}

// readPump drains incoming frames so pongs and close frames are seen.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.stop()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read error", zap.Error(err))
			}
			return
		}
	}
}

// writePump owns all writes to the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case msg := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				h.logger.Debug("failed to send snapshot", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.logger.Info("websocket client disconnected",
			zap.String("remote_addr", c.conn.RemoteAddr().String()))
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.stop()
	}
	h.logger.Info("all websocket connections closed")
}

func snapshot(students []types.Student) Message {
	if students == nil {
		students = []types.Student{}
	}
	return Message{
		Type:      MessageTypeSnapshot,
		Students:  students,
		Timestamp: time.Now().UTC(),
	}
}
