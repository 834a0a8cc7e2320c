package realtime

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server, user string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnected(t *testing.T, h *Hub, user string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Connected(user) != n {
		if time.Now().After(deadline) {
			t.Fatalf("user %s has %d connections, want %d", user, h.Connected(user), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func newServer(h *Hub) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.Serve(w, r, r.URL.Query().Get("user"))
	}))
}

func TestHubPublishReachesOnlyTargets(t *testing.T) {
	h := NewHub()
	srv := newServer(h)
	defer srv.Close()

	alice := dial(t, srv, "alice")
	bob := dial(t, srv, "bob")
	waitConnected(t, h, "alice", 1)
	waitConnected(t, h, "bob", 1)

	sent := h.Publish([]string{"alice", "nobody"}, Message{Type: "notification", RoomID: "r1", Payload: map[string]string{"body": "hi"}})
	if sent != 1 {
		t.Fatalf("Publish reached %d sockets, want 1", sent)
	}

	_ = alice.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := alice.ReadMessage()
	if err != nil {
		t.Fatalf("alice read: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got.Type != "notification" || got.RoomID != "r1" {
		t.Errorf("message = %+v", got)
	}

	_ = bob.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	if _, _, err := bob.ReadMessage(); err == nil {
		t.Error("bob received a message meant for alice")
	}
}

func TestHubCloseDisconnects(t *testing.T) {
	h := NewHub()
	srv := newServer(h)
	defer srv.Close()

	conn := dial(t, srv, "carol")
	waitConnected(t, h, "carol", 1)

	h.Close()
	if h.Connected("carol") != 0 {
		t.Error("client still registered after Close")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
		t.Errorf("expected close frame, got %v", err)
	}

	// new connections are turned away once closed
	late := dial(t, srv, "dave")
	_ = late.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := late.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}
}
