package ws

import (
	"sync"

	"groupchat-service/internal/observability"
)

const wsKind = "chat"

// Hub routes payloads to the connections subscribed to a chat room. Room sets are
// fixed when a client registers; they only decide where broadcasts go, never who
// is allowed to act.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[int]map[*Client]struct{}
	clients map[*Client][]int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:   make(map[int]map[*Client]struct{}),
		clients: make(map[*Client][]int),
	}
}

// Register subscribes client to chatIDs. Registering an already known client is a no-op.
func (h *Hub) Register(client *Client, chatIDs []int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		return
	}
	rooms := make([]int, 0, len(chatIDs))
	for _, chatID := range chatIDs {
		if _, ok := h.rooms[chatID]; !ok {
			h.rooms[chatID] = make(map[*Client]struct{})
		}
		if _, dup := h.rooms[chatID][client]; dup {
			continue
		}
		h.rooms[chatID][client] = struct{}{}
		rooms = append(rooms, chatID)
	}
	h.clients[client] = rooms
}

// Unregister drops every subscription of client and closes its outbound queue.
// Safe to call more than once.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	rooms, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		for _, chatID := range rooms {
			conns := h.rooms[chatID]
			delete(conns, client)
			if len(conns) == 0 {
				delete(h.rooms, chatID)
			}
		}
	}
	h.mu.Unlock()
	client.close()
}

// Broadcast queues payload for every client in the chat room except the sender.
// Delivery is at most once: a client whose queue is full misses the payload.
// It returns the number of clients the payload was queued for.
func (h *Hub) Broadcast(chatID int, payload []byte, except *Client) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for client := range h.rooms[chatID] {
		if client == except {
			continue
		}
		if client.enqueue(payload) {
			delivered++
			continue
		}
		observability.IncWSDropped()
	}
	observability.ObserveBroadcast(delivered)
	return delivered
}

// Rooms returns the chat ids client was subscribed to at registration.
func (h *Hub) Rooms(client *Client) []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]int(nil), h.clients[client]...)
}

// RoomSize reports how many clients are subscribed to chatID.
func (h *Hub) RoomSize(chatID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}

// Stats reports the number of registered connections and non-empty rooms.
func (h *Hub) Stats() (connections int, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients), len(h.rooms)
}
