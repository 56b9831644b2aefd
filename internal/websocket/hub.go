package websocket

import (
	"log"
	"sync"
)

// Hub keeps track of the live map sessions so they can be closed together.
type Hub struct {
	mu       sync.RWMutex
	sessions map[*Session]bool
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[*Session]bool)}
}

// Register adds a session to the hub.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s] = true
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("WebSocket client connected (total: %d)", n)
}

// Unregister removes a session from the hub.
func (h *Hub) Unregister(s *Session) {
	h.mu.Lock()
	delete(h.sessions, s)
	n := len(h.sessions)
	h.mu.Unlock()
	log.Printf("WebSocket client disconnected (total: %d)", n)
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// CloseAll ends every registered session.
func (h *Hub) CloseAll() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.sessions {
		s.Close()
	}
}
