package tracker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestWebsocketSourceReceivesEvents(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/ws/") {
			t.Errorf("path = %q, want /ws/:clientId", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		conn.WriteJSON(StatusEvent{DocumentId: "doc-1", Status: "analyzing", Progress: 40})
		conn.WriteJSON(StatusEvent{DocumentId: "doc-1", Status: "completed", Progress: 100})

		// Keep the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	source, err := NewWebsocketSource(srv.URL, "client-abc")
	if err != nil {
		t.Fatalf("NewWebsocketSource: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go source.Run(ctx)

	var got []StatusEvent
	for len(got) < 2 {
		select {
		case <-ctx.Done():
			t.Fatalf("timed out, got %d events", len(got))
		case event := <-source.Events():
			got = append(got, event)
		}
	}

	if got[0].Status != "analyzing" || got[0].Progress != 40 {
		t.Errorf("first event = %+v", got[0])
	}
	if got[1].Status != "completed" || got[1].Progress != 100 {
		t.Errorf("second event = %+v", got[1])
	}
}

func TestWebsocketSourceStopsOnContextCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	source, err := NewWebsocketSource(srv.URL, "client-abc")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- source.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestNewWebsocketSourceURLDerivation(t *testing.T) {
	tests := []struct {
		serverURL string
		clientID  string
		want      string
	}{
		{"http://localhost:3000", "c1", "ws://localhost:3000/ws/c1"},
		{"https://api.example.com", "c2", "wss://api.example.com/ws/c2"},
		{"http://localhost:3000/", "c3", "ws://localhost:3000/ws/c3"},
	}

	for _, tt := range tests {
		source, err := NewWebsocketSource(tt.serverURL, tt.clientID)
		if err != nil {
			t.Errorf("NewWebsocketSource(%q): %v", tt.serverURL, err)
			continue
		}
		if source.url != tt.want {
			t.Errorf("url = %q, want %q", source.url, tt.want)
		}
	}
}
