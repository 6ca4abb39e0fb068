package feed

import (
	"errors"
	"time"
)

// Errors
var (
	ErrStaleConnection = errors.New("connection stale (no traffic)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw frame bytes with receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Status is the connection state surfaced to the view.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusStopped      Status = "stopped"
)

// StatusSnapshot is the read-only view of feed state for the view layer.
type StatusSnapshot struct {
	Status           Status    `json:"status"`
	StatusText       string    `json:"status_text"`
	MessagesReceived int64     `json:"messages_received"`
	LastMessageAt    time.Time `json:"last_message_at"`
	PositionsApplied int64     `json:"positions_applied"`
	Reconnects       int64     `json:"reconnects"`
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Feed URL (e.g., ws://localhost:8000/ws/satellites/live/)
	HandshakeTimeout time.Duration // Dial handshake deadline
	StaleTimeout     time.Duration // Max silence before the connection is declared dead (0 disables)
	BufferSize       int           // Message channel buffer size
}

// ManagerConfig configures the Connection Manager.
type ManagerConfig struct {
	URL              string
	ReconnectDelay   time.Duration // Fixed wait between attempts, no backoff
	HandshakeTimeout time.Duration
	StaleTimeout     time.Duration
	BufferSize       int
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		URL:              "ws://localhost:8000/ws/satellites/live/",
		ReconnectDelay:   3 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		StaleTimeout:     90 * time.Second,
		BufferSize:       1024,
	}
}
