// Package realtime keeps websocket connections of signed-in users and pushes
// room notifications to them as they are sent.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
)

// Message is the envelope written to every socket.
type Message struct {
	Type    string      `json:"type"`
	RoomID  string      `json:"roomId,omitempty"`
	Payload interface{} `json:"payload"`
}

// Hub maps user ids to their open connections. A user may hold several.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[string]map[*Client]struct{})}
}

func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	set, ok := h.clients[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clients, c.userID)
	}
}

// Connected reports how many sockets userID currently holds.
func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// Len returns the number of open sockets across all users.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Publish writes msg to every connection of the given users and returns the
// number of sockets reached. Slow clients whose buffer is full are dropped.
func (h *Hub) Publish(userIDs []string, msg Message) int {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Msg("realtime: marshal message")
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	sent := 0
	for _, id := range userIDs {
		for c := range h.clients[id] {
			select {
			case c.send <- data:
				sent++
			default:
				log.Warn().Str("user", id).Msg("realtime: send buffer full, dropping client")
				h.removeLocked(c)
			}
		}
	}
	return sent
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, set := range h.clients {
		for c := range set {
			h.removeLocked(c)
		}
	}
}
