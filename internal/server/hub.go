package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scrumhq/scrum/internal/events"
)

// wsSendBufferSize is the per-client bounded queue. A client slower than
// the event rate has its oldest queued frame dropped rather than
// blocking the hub's dispatch loop.
const wsSendBufferSize = 256

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// client is one WebSocket-connected event subscriber.
type client struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// enqueue drops the oldest queued frame to make room rather than
// blocking, so a slow subscriber never backs up the broadcaster.
func (c *client) enqueue(frame []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- frame:
		return
	default:
	}
	select {
	case <-c.send:
	default:
	}
	select {
	case c.send <- frame:
	default:
	}
}

func (c *client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub fans out bus events to every connected WebSocket client. It
// subscribes to the event bus once and broadcasts after commit only —
// the facade publishes events strictly after its store transaction
// succeeds, so the hub never sees a pre-commit event.
type Hub struct {
	bus *events.Bus

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a Hub bound to bus and starts its dispatch loop.
func NewHub(bus *events.Bus) *Hub {
	h := &Hub{bus: bus, clients: map[*client]struct{}{}}
	go h.run()
	return h
}

func (h *Hub) run() {
	ch := h.bus.Subscribe("all", nil)
	for ev := range ch {
		frame, err := json.Marshal(ev)
		if err != nil {
			log.Printf("[SERVER] marshal event for ws: %v", err)
			continue
		}
		h.mu.RLock()
		for c := range h.clients {
			c.enqueue(frame)
		}
		h.mu.RUnlock()
	}
}

// ServeWS upgrades the request to a WebSocket connection and registers
// it as an event subscriber. No replay is offered on reconnect;
// subscribers are expected to refresh via REST.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[SERVER] ws upgrade: %v", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, wsSendBufferSize)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	h.readPump(c)
}

// readPump discards inbound frames (the channel is publish-only) and
// exists solely to detect client disconnects.
func (h *Hub) readPump(c *client) {
	defer h.drop(c)
	c.conn.SetReadLimit(512)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	c.conn.Close()
}
