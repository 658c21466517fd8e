package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"doc-intelligence-be/internal/dto"
	"doc-intelligence-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// Hub tracks connected status subscribers and fans status events out to
// them. With Redis configured it also relays events across instances so
// a subscriber connected to one replica still sees events produced on
// another.
type Hub struct {
	// Registered clients map: clientID -> list of connections (multi-tab)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance fan-out. Nil means single instance.
	rdb *redis.Client

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ClientID] = append(h.clients[client.ClientID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"client_id": client.ClientID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.ClientID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.ClientID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.ClientID]) == 0 {
					delete(h.clients, client.ClientID)
					h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"client_id": client.ClientID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast pushes a status event to every connected subscriber.
// Subscribers filter by document_id on their side.
func (h *Hub) Broadcast(event dto.StatusEvent) {
	data, _ := json.Marshal(event)

	h.mu.RLock()
	for _, clients := range h.clients {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				close(client.Send)
				h.unregister <- client
			}
		}
	}
	h.mu.RUnlock()

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_client_id": "*",
			"message":          data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

// Send pushes a status event to the connections of a single clientID.
func (h *Hub) Send(clientID string, event dto.StatusEvent) {
	data, _ := json.Marshal(event)

	h.mu.RLock()
	clients, localFound := h.clients[clientID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"client_id": clientID})
				close(client.Send)
				h.unregister <- client
			}
		}
	}

	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_client_id": clientID,
			"message":          data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// Every instance subscribes to "cluster_events" and delivers to the
	// clients it holds locally. target_client_id "*" means broadcast.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetClientID string          `json:"target_client_id"`
			Message        json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		if payload.TargetClientID == "*" {
			h.mu.RLock()
			for _, clients := range h.clients {
				for _, client := range clients {
					select {
					case client.Send <- payload.Message:
					default:
						close(client.Send)
						h.unregister <- client
					}
				}
			}
			h.mu.RUnlock()
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetClientID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					close(client.Send)
					h.unregister <- client
				}
			}
		}
	}
}
