package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// wsURL converts an httptest server URL to a ws:// URL.
func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		handler(conn)
	}))
}

func testClientConfig(url string) ClientConfig {
	return ClientConfig{
		URL:              url,
		HandshakeTimeout: 2 * time.Second,
		BufferSize:       16,
	}
}

func TestClient_ConnectAndReceive(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"name":"ISS","norad":25544}`))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
	defer server.Close()

	c := NewClient(testClientConfig(wsURL(server)), nil)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	if !c.IsConnected() {
		t.Error("IsConnected() = false after Connect")
	}

	select {
	case msg := <-c.Messages():
		if !strings.Contains(string(msg.Data), "25544") {
			t.Errorf("unexpected frame: %s", msg.Data)
		}
		if msg.ReceivedAt.IsZero() {
			t.Error("expected non-zero ReceivedAt")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for frame")
	}
}

func TestClient_DialFailure(t *testing.T) {
	c := NewClient(testClientConfig("ws://127.0.0.1:1/nope"), nil)

	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("expected dial error")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after failed dial")
	}
}

func TestClient_ServerCloseSurfacesError(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Close immediately.
	})
	defer server.Close()

	c := NewClient(testClientConfig(wsURL(server)), nil)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer c.Close()

	select {
	case err := <-c.Errors():
		if err == nil {
			t.Error("expected non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connection error")
	}

	if c.IsConnected() {
		t.Error("IsConnected() = true after server close")
	}
}

func TestClient_CloseSuppressesErrors(t *testing.T) {
	served := make(chan struct{})
	server := mockWSServer(t, func(conn *websocket.Conn) {
		<-served
	})
	defer server.Close()
	defer close(served)

	c := NewClient(testClientConfig(wsURL(server)), nil)

	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if err := c.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	// The read loop will now fail on the closed connection; that error
	// must not surface after Close.
	time.Sleep(100 * time.Millisecond)

	select {
	case err := <-c.Errors():
		t.Errorf("got error after Close: %v", err)
	default:
	}

	if c.IsConnected() {
		t.Error("IsConnected() = true after Close")
	}
}

func TestClient_ConnectAfterClose(t *testing.T) {
	c := NewClient(testClientConfig("ws://localhost:0"), nil)

	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := c.Connect(context.Background()); err != ErrAlreadyClosed {
		t.Errorf("Connect after Close = %v, want ErrAlreadyClosed", err)
	}
}

func TestClient_DoubleCloseIsNoop(t *testing.T) {
	c := NewClient(testClientConfig("ws://localhost:0"), nil)

	if err := c.Close(); err != nil {
		t.Fatalf("first Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}
