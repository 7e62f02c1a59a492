package stream

import (
	"coin-dashboard-service/internal/application/dto"
	"coin-dashboard-service/internal/domain/entities"
	"coin-dashboard-service/internal/domain/interfaces"
	"coin-dashboard-service/internal/infrastructure/logging"
	"coin-dashboard-service/internal/infrastructure/metrics"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	WriteWait    = 10 * time.Second
	PongWait     = 60 * time.Second
	PingInterval = (PongWait * 9) / 10

	// SendBuffer is how many pending messages a slow subscriber may accumulate before it is dropped
	SendBuffer = 64

	// SnapshotFamily tags the first message a subscriber receives
	SnapshotFamily entities.Family = "snapshot"
)

// Hub fans out every published family state to the connected websocket subscribers.
// Publish never blocks: a subscriber whose buffer is full is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	now      func() time.Time

	mu      sync.Mutex
	clients map[*subscriber]struct{}
	closed  bool
}

type subscriber struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() { close(s.send) })
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Dashboard clients are served from other origins during development
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		now:     time.Now,
		clients: make(map[*subscriber]struct{}),
	}
}

var _ interfaces.StatePublisher = (*Hub)(nil)

// Publish implements interfaces.StatePublisher
func (h *Hub) Publish(family entities.Family, state any) {
	payload, err := h.encode(family, state)
	if err != nil {
		logging.Error(context.Background(), "Failed to encode stream message", logging.Fields{
			"family": string(family),
			"error":  err.Error(),
		})
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}

	for c := range h.clients {
		h.sendLocked(c, family, payload)
	}
}

// Subscribers returns the number of connected clients
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Handler upgrades the request and streams states until the client goes away.
// snapshot, when not nil, is sent first so a new client starts from the full state.
func (h *Hub) Handler(snapshot func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade ya escribió la respuesta de error
			logging.Warn(ctx, "Websocket upgrade failed", logging.Fields{"error": err.Error()})
			return
		}

		c := &subscriber{conn: conn, send: make(chan []byte, SendBuffer)}
		if !h.register(c) {
			_ = conn.Close()
			return
		}

		// el snapshot se toma ya registrado: lo publicado mientras tanto
		// llega antes y el snapshot, más nuevo, lo cubre
		if snapshot != nil {
			if payload, err := h.encode(SnapshotFamily, snapshot()); err == nil {
				h.deliver(c, payload)
			}
		}

		logging.Info(ctx, "Stream subscriber connected", logging.Fields{
			"remote_addr": conn.RemoteAddr().String(),
			"subscribers": h.Subscribers(),
		})

		go h.writePump(c)
		h.readPump(c)

		logging.Info(ctx, "Stream subscriber disconnected", logging.Fields{
			"remote_addr": conn.RemoteAddr().String(),
		})
	}
}

// Close disconnects every subscriber; later Publish calls are no-ops
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) encode(family entities.Family, state any) ([]byte, error) {
	return json.Marshal(dto.StreamMessage{
		Family:    family,
		State:     state,
		Timestamp: h.now().UTC(),
	})
}

func (h *Hub) register(c *subscriber) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	metrics.UpdateStreamSubscribers(len(h.clients))
	return true
}

// deliver encola payload para c si sigue conectado
func (h *Hub) deliver(c *subscriber, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		h.sendLocked(c, SnapshotFamily, payload)
	}
}

func (h *Hub) sendLocked(c *subscriber, family entities.Family, payload []byte) {
	select {
	case c.send <- payload:
	default:
		logging.Warn(context.Background(), "Dropping slow stream subscriber", logging.Fields{
			"family":  string(family),
			"pending": len(c.send),
		})
		h.removeLocked(c)
	}
}

func (h *Hub) unregister(c *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *subscriber) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	c.close()
	metrics.UpdateStreamSubscribers(len(h.clients))
}

// readPump descarta lo que mande el cliente; sólo sirve para detectar el cierre y los pongs
func (h *Hub) readPump(c *subscriber) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *subscriber) {
	ticker := time.NewTicker(PingInterval)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
