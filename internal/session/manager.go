package session

import (
	"sync"

	"github.com/boston-kebab/kiosk/internal/menu"
)

// Manager hands out one session per table id. Sessions live for the
// process lifetime; nothing is persisted.
type Manager struct {
	mu       sync.Mutex
	catalog  *menu.Catalog
	sessions map[string]*Session
}

// NewManager creates a manager over the shared catalog.
func NewManager(catalog *menu.Catalog) *Manager {
	return &Manager{
		catalog:  catalog,
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for the table if one exists.
func (m *Manager) Get(tableID string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[tableID]
	return s, ok
}

// GetOrCreate returns the table's session, creating it on first use.
func (m *Manager) GetOrCreate(tableID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[tableID]; ok {
		return s
	}
	s := New(tableID, m.catalog)
	m.sessions[tableID] = s
	return s
}
