package services

import (
	"log"
	"sync"
)

// SSEEvent is one server-sent event delivered to a connected client
type SSEEvent struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// SSEClient is one open event-stream connection
type SSEClient struct {
	ID      string
	Channel string
	Events  chan SSEEvent
}

// SSEHub is the in-process realtime channel. It implements Publisher;
// delivery is best-effort, a slow client's full buffer drops the event
// rather than blocking the sender.
type SSEHub struct {
	mu      sync.RWMutex
	clients map[string]*SSEClient
}

// NewSSEHub creates a new SSE hub
func NewSSEHub() *SSEHub {
	return &SSEHub{
		clients: make(map[string]*SSEClient),
	}
}

// Register adds a connected client
func (h *SSEHub) Register(client *SSEClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	log.Printf("sse client registered: %s (channel=%s) total=%d", client.ID, client.Channel, len(h.clients))
}

// Unregister removes a client and closes its event channel
func (h *SSEHub) Unregister(clientID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		log.Printf("sse client unregistered: %s total=%d", clientID, len(h.clients))
	}
}

// Publish sends an event to every client subscribed to the channel
func (h *SSEHub) Publish(channel, event string, payload interface{}) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.Channel != channel {
			continue
		}
		select {
		case client.Events <- SSEEvent{Event: event, Data: payload}:
		default:
			log.Printf("sse channel full for client %s, dropping event %s", client.ID, event)
		}
	}
	return nil
}

// ClientCount returns the number of connected clients
func (h *SSEHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
