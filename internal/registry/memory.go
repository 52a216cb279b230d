package registry

import "sync"

// InMemoryRegistry is the single-process registry. State is rebuilt from
// zero on restart: every user appears offline until they reconnect.
type InMemoryRegistry struct {
	mu    sync.RWMutex
	users map[string]string // userID -> connID
}

func NewInMemoryRegistry() *InMemoryRegistry {
	return &InMemoryRegistry{
		users: make(map[string]string),
	}
}

func (r *InMemoryRegistry) Register(userID, connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[userID] = connID
}

func (r *InMemoryRegistry) Lookup(userID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	connID, ok := r.users[userID]
	return connID, ok
}

func (r *InMemoryRegistry) Unregister(userID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.users[userID]
	if !ok || current != connID {
		return false
	}
	delete(r.users, userID)
	return true
}

func (r *InMemoryRegistry) Snapshot() map[string]string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]string, len(r.users))
	for userID, connID := range r.users {
		out[userID] = connID
	}
	return out
}
