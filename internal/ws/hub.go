package ws

import (
	"context"
	"log/slog"
	"sync"
)

// Hub fans chart events out to every connected console. All consoles share
// one view of the tape chart, so there is a single broadcast group rather
// than per-topic subscriptions.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	logger     *slog.Logger
}

// NewHub creates a hub. Run must be started before clients connect.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		logger:     logger.With("component", "ws.Hub"),
	}
}

// Run processes registrations and broadcasts until the context is cancelled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client registered", "total", total)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.logger.Debug("client unregistered", "total", total)

		case message := <-h.broadcast:
			h.mu.RLock()
			recipients := make([]*Client, 0, len(h.clients))
			for client := range h.clients {
				recipients = append(recipients, client)
			}
			h.mu.RUnlock()

			for _, client := range recipients {
				select {
				case client.send <- message:
				default:
					// A console that cannot keep up is disconnected rather
					// than allowed to block the others.
					h.mu.Lock()
					if _, ok := h.clients[client]; ok {
						delete(h.clients, client)
						close(client.send)
					}
					h.mu.Unlock()
				}
			}
		}
	}
}

// Register adds a client to the broadcast group.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the broadcast group.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Broadcast queues a raw message for every connected client.
func (h *Hub) Broadcast(message []byte) {
	select {
	case h.broadcast <- message:
	default:
		h.logger.Warn("broadcast queue full, dropping message")
	}
}

// ClientCount returns the number of connected consoles.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
