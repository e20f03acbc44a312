// Package ws fans display snapshots out to connected viewers over
// WebSocket. Viewers are receive-only; inbound frames are drained
// and discarded.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/wardsight/wardsight/pkg/logger"
	"github.com/wardsight/wardsight/pkg/metrics"
)

// Default hub configuration constants.
const (
	defaultSendBuffer   = 8
	defaultWriteTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // viewers connect from ward displays on other origins
	},
}

// Client represents a single connected viewer.
type Client struct {
	id   string
	send chan []byte
	conn *websocket.Conn
}

// Hub tracks connected viewers and broadcasts snapshots to all of
// them. All operations are thread-safe via sync.RWMutex.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}

	sendBuffer   int
	writeTimeout time.Duration

	logger logger.Logger
}

// NewHub creates a hub ready to manage viewer connections.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:      make(map[*Client]struct{}),
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
		logger:       logger.Get().Named("ws"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleConnect upgrades an HTTP connection, registers the viewer,
// and starts its read/write pumps.
func (h *Hub) HandleConnect(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(r.Context(), "websocket upgrade failed", logger.Error(err))
		return
	}

	client := &Client{
		id:   uuid.NewString(),
		send: make(chan []byte, h.sendBuffer),
		conn: conn,
	}
	h.register(client)
	h.logger.Debug(r.Context(), "viewer connected", logger.String("client_id", client.id))

	go h.writePump(client)
	go h.readPump(client)
}

// Broadcast sends one snapshot payload to every connected viewer.
// A viewer whose send buffer is full is dropped rather than allowed
// to stall the broadcast. Sends happen under the read lock so a
// concurrent unregister can never close a channel mid-send; slow
// viewers are collected and dropped after the lock is released.
func (h *Hub) Broadcast(payload []byte) {
	var slow []*Client

	h.mu.RLock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range slow {
		metrics.RecordViewerSendFailure()
		h.logger.Warn(context.Background(), "viewer too slow, dropping",
			logger.String("client_id", client.id))
		h.unregister(client)
	}
}

// ClientCount returns the number of connected viewers.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every viewer.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.Unlock()

	for _, client := range clients {
		h.unregister(client)
	}
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	metrics.UpdateConnectedViewers(count)
}

// unregister is idempotent; both pumps and Broadcast may race to
// drop the same client.
func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	count := len(h.clients)
	close(client.send)
	h.mu.Unlock()

	metrics.UpdateConnectedViewers(count)
}

// readPump drains inbound frames until the connection drops.
func (h *Hub) readPump(client *Client) {
	defer func() {
		h.unregister(client)
		client.conn.Close()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump writes snapshots from the send channel to the viewer.
func (h *Hub) writePump(client *Client) {
	defer client.conn.Close()

	for payload := range client.send {
		_ = client.conn.SetWriteDeadline(time.Now().Add(h.writeTimeout))
		if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.unregister(client)
			return
		}
	}
}
