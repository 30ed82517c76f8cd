package ws

import "sync"

// Hub tracks the live voice stream per table. A table gets at most one
// stream: a second connection is refused while the first is up, so two
// devices cannot both speak for the same table.
type Hub struct {
	mu      sync.Mutex
	streams map[string]*conn
}

// NewHub creates an empty registry.
func NewHub() *Hub {
	return &Hub{streams: make(map[string]*conn)}
}

// attach claims the table's voice slot. It reports false when another
// connection already holds it.
func (h *Hub) attach(tableID string, c *conn) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, taken := h.streams[tableID]; taken {
		return false
	}
	h.streams[tableID] = c
	return true
}

// detach releases the slot if this connection still holds it.
func (h *Hub) detach(tableID string, c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.streams[tableID] == c {
		delete(h.streams, tableID)
	}
}

// Active reports whether the table has a live voice stream.
func (h *Hub) Active(tableID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.streams[tableID]
	return ok
}
