package tracker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// WebsocketSource follows the server's /ws/:clientId status channel.
// Lost connections are redialed with capped exponential backoff; the
// backoff resets after every successful dial.
type WebsocketSource struct {
	url    string
	dialer *websocket.Dialer
	events chan StatusEvent
}

var _ StatusSource = &WebsocketSource{}

func NewWebsocketSource(serverURL, clientID string) (*WebsocketSource, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/" + clientID

	return &WebsocketSource{
		url:    u.String(),
		dialer: websocket.DefaultDialer,
		events: make(chan StatusEvent, 16),
	}, nil
}

func (s *WebsocketSource) Events() <-chan StatusEvent {
	return s.events
}

func (s *WebsocketSource) Run(ctx context.Context) error {
	defer close(s.events)

	backoff := initialBackoff
	for {
		conn, _, err := s.dialer.DialContext(ctx, s.url, nil)
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}
		backoff = initialBackoff

		err = s.readLoop(ctx, conn)
		conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_ = err // read errors trigger a redial
	}
}

func (s *WebsocketSource) readLoop(ctx context.Context, conn *websocket.Conn) error {
	// Unblock ReadJSON when the context is cancelled.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var event StatusEvent
		if err := conn.ReadJSON(&event); err != nil {
			return err
		}
		if event.DocumentId == "" {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case s.events <- event:
		}
	}
}
