package ws

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub fans location events out to subscribers. Each ambulance has a room;
// a client receives an event only for ambulances it subscribed to. The hub
// is constructed once and injected wherever broadcasts originate.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*client]struct{}
}

// client wraps a connection with a write lock; gorilla connections do not
// allow concurrent writers.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(message []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, message)
}

// NewHub creates a new Hub with no rooms.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*client]struct{})}
}

// subscribe adds the client to the ambulance's room, creating it on first
// subscriber.
func (h *Hub) subscribe(ambulanceID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[ambulanceID]
	if !ok {
		room = make(map[*client]struct{})
		h.rooms[ambulanceID] = room
	}
	room[c] = struct{}{}
}

// unsubscribe removes the client from the ambulance's room, dropping the
// room once empty.
func (h *Hub) unsubscribe(ambulanceID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[ambulanceID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, ambulanceID)
	}
}

// drop removes the client from every room it joined.
func (h *Hub) drop(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ambulanceID, room := range h.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(h.rooms, ambulanceID)
		}
	}
}

// Broadcast sends the message to every subscriber of the ambulance's room.
// Write failures are ignored; the failing client's read loop will observe
// the broken connection and clean up.
func (h *Hub) Broadcast(ambulanceID string, message []byte) {
	h.mu.RLock()
	clients := make([]*client, 0, len(h.rooms[ambulanceID]))
	for c := range h.rooms[ambulanceID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.write(message)
	}
}

// Subscribers reports the current subscriber count for an ambulance.
func (h *Hub) Subscribers(ambulanceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[ambulanceID])
}
