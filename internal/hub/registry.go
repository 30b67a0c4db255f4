// internal/hub/registry.go
package hub

import "sync"

// Registry is the set of open connections.
type Registry struct {
	mu    sync.RWMutex
	conns map[Conn]struct{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[Conn]struct{}),
	}
}

// Add registers conn. It reports false if conn was already registered.
func (r *Registry) Add(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; ok {
		return false
	}
	r.conns[conn] = struct{}{}
	return true
}

// Remove deregisters conn. It reports false if conn was not registered.
func (r *Registry) Remove(conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.conns[conn]; !ok {
		return false
	}
	delete(r.conns, conn)
	return true
}

// Contains reports whether conn is registered.
func (r *Registry) Contains(conn Conn) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.conns[conn]
	return ok
}

// Len returns the number of registered connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}

// ForEach calls fn for every connection registered when the call began.
// The lock is not held while fn runs, so fn may add or remove connections.
func (r *Registry) ForEach(fn func(Conn)) {
	for _, conn := range r.snapshot() {
		fn(conn)
	}
}

func (r *Registry) snapshot() []Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := make([]Conn, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	return conns
}
