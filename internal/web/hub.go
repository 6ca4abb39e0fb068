package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jherrick/sattrack/internal/feed"
	"github.com/jherrick/sattrack/internal/metrics"
	"github.com/jherrick/sattrack/internal/store"
	"github.com/jherrick/sattrack/internal/telemetry"
)

const (
	// writeWait is the deadline for a single frame write to a browser.
	writeWait = 10 * time.Second

	// sendBufferSize is the per-client outbound queue. A client that
	// falls this far behind is dropped.
	sendBufferSize = 64
)

// envelope is the JSON frame pushed to browsers.
type envelope struct {
	Type      string               `json:"type"` // "position" or "status"
	Satellite *telemetry.Satellite `json:"satellite,omitempty"`
	Status    *feed.StatusSnapshot `json:"status,omitempty"`
}

// hubClient is one connected browser.
type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub relays store updates and feed status changes to browser clients.
type Hub struct {
	store  *store.Store
	feed   Feed
	logger *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

// NewHub creates a relay hub over the given store and feed.
func NewHub(st *store.Store, f Feed, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		store:  st,
		feed:   f,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*hubClient]struct{}),
	}
}

// Run pumps notifications to connected browsers until ctx is cancelled
// or the feed's status channel closes.
func (h *Hub) Run(ctx context.Context) {
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return

		case sat, ok := <-h.store.Updates():
			if !ok {
				return
			}
			h.broadcast(envelope{Type: "position", Satellite: &sat})

		case snap, ok := <-h.feed.StatusUpdates():
			if !ok {
				return
			}
			h.broadcast(envelope{Type: "status", Status: &snap})
		}
	}
}

// ServeWS upgrades a browser connection and registers it with the hub.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("view upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	client := &hubClient{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	metrics.ViewClients.Inc()

	h.logger.Debug("view client connected", "remote", r.RemoteAddr)

	// Seed the new client synchronously so the full store reaches the
	// page regardless of its size. Live updates queue in the send buffer
	// meanwhile; the pump takes over the connection once the seed is
	// written.
	if err := h.seed(conn); err != nil {
		h.logger.Debug("view seed failed", "error", err, "remote", r.RemoteAddr)
		h.drop(client)
		conn.Close()
		return
	}

	go client.writePump()

	// Read loop: the page sends nothing; reading only detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.drop(client)
	h.logger.Debug("view client disconnected", "remote", r.RemoteAddr)
}

// seed writes the current feed status and every known position directly
// on the connection.
func (h *Hub) seed(conn *websocket.Conn) error {
	snap := h.feed.Status()
	if err := writeEnvelope(conn, envelope{Type: "status", Status: &snap}); err != nil {
		return err
	}

	for _, sat := range h.store.Snapshot() {
		s := sat
		if err := writeEnvelope(conn, envelope{Type: "position", Satellite: &s}); err != nil {
			return err
		}
	}
	return nil
}

func writeEnvelope(conn *websocket.Conn, env envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// broadcast fans one envelope out to every connected client. Sends and
// channel closes are both serialized under the hub mutex, so a queued
// send can never hit a closed channel.
func (h *Hub) broadcast(env envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshal view envelope", "error", err)
		return
	}

	var slow []*hubClient
	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.logger.Warn("view client too slow, dropping")
		h.drop(c)
	}
}

// drop unregisters a client. Removal from the map and closing send
// happen under the same lock, so whichever goroutine removes the client
// is the only one that closes its channel.
func (h *Hub) drop(client *hubClient) {
	h.mu.Lock()
	_, present := h.clients[client]
	if present {
		delete(h.clients, client)
		close(client.send)
	}
	h.mu.Unlock()

	if present {
		metrics.ViewClients.Dec()
	}
}

// closeAll drops every client, used at shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*hubClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.drop(c)
	}
}

// writePump writes queued frames until the send channel closes.
func (c *hubClient) writePump() {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}

	c.conn.SetWriteDeadline(time.Now().Add(time.Second))
	c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
}
