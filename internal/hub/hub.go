package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"gamestore/backend/internal/logging"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is a buffered channel the SSE handler drains.
type Client chan []byte

// Hub fans events out to the clients subscribed to a topic.
type Hub struct {
	topics map[string]map[Client]struct{}
	mu     sync.RWMutex
}

// GlobalHub is the process-wide hub used by the HTTP handlers.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[Client]struct{}),
	}
}

// GameTopic names the topic carrying events about one game.
func GameTopic(gameID uint) string {
	return fmt.Sprintf("game:%d", gameID)
}

// Subscribe registers a new client on topic.
func (h *Hub) Subscribe(topic string, buffer int) Client {
	client := make(Client, buffer)

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.topics[topic]; !ok {
		h.topics[topic] = make(map[Client]struct{})
	}
	h.topics[topic][client] = struct{}{}
	return client
}

// Unsubscribe removes a client and closes its channel.
func (h *Hub) Unsubscribe(topic string, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.topics[topic]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client)
	if len(clients) == 0 {
		delete(h.topics, topic)
	}
}

// Subscribers returns the number of clients on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// Broadcast sends an event to every client on topic. Slow clients whose
// buffer is full miss the event rather than block the publisher.
func (h *Hub) Broadcast(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.topics[topic]
	if !ok {
		return
	}
	message, err := json.Marshal(event)
	if err != nil {
		logging.Error().Err(err).Str("topic", topic).Msg("encode hub event")
		return
	}
	for client := range clients {
		select {
		case client <- message:
		default:
		}
	}
}
