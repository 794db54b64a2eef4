package stream

import (
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// DefaultMaxClients caps concurrent spectators
	DefaultMaxClients = 32
	// sendBuffer is how many frames a client may lag behind before frames are dropped
	sendBuffer = 4
	writeWait  = 2 * time.Second
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// offer queues a frame without blocking, reporting whether it was accepted
func (c *client) offer(frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *client) writePump() {
	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.BinaryMessage, message); err != nil {
			log.Printf("stream: write failed: %v", err)
			c.conn.Close()
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Hub fans frames out to every connected websocket client
type Hub struct {
	upgrader   websocket.Upgrader
	maxClients int

	mu       sync.Mutex
	clients  map[*websocket.Conn]*client
	upgrades int // Slots reserved by handshakes still in progress
	dropped  atomic.Uint64
}

// NewHub creates a hub accepting at most maxClients connections
func NewHub(maxClients int) *Hub {
	if maxClients < 1 {
		maxClients = DefaultMaxClients
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		maxClients: maxClients,
		clients:    make(map[*websocket.Conn]*client),
	}
}

// ServeHTTP upgrades the request and streams frames until the client goes away
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.reserve() {
		http.Error(w, "too many spectators", http.StatusServiceUnavailable)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.mu.Lock()
		h.upgrades--
		h.mu.Unlock()
		log.Printf("stream: upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.upgrades--
	h.clients[conn] = c
	h.mu.Unlock()
	log.Printf("stream: client %s connected", conn.RemoteAddr())

	go c.writePump()
	defer h.unregister(conn)

	// Spectators send nothing; reading detects the disconnect
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// reserve claims a client slot for a handshake, counting handshakes still in progress
func (h *Hub) reserve() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.clients)+h.upgrades >= h.maxClients {
		return false
	}
	h.upgrades++
	return true
}

func (h *Hub) unregister(conn *websocket.Conn) {
	h.mu.Lock()
	c, ok := h.clients[conn]
	if ok {
		delete(h.clients, conn)
		close(c.send)
	}
	h.mu.Unlock()
	if ok {
		log.Printf("stream: client %s disconnected", conn.RemoteAddr())
	}
}

// Broadcast queues frame for every client. Clients that are behind miss it.
// The frame must not be modified afterwards.
func (h *Hub) Broadcast(frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		if !c.offer(frame) {
			h.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped returns how many frames were skipped for slow clients
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close()
	}
}
