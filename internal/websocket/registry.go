package websocket

import "sync"

// Registry is the process-local map of live connections, keyed by client id.
// It is constructed once by the composition root and passed by handle into
// every component that needs it; there is no package-level instance.
//
// Invariant: an entry is present exactly while its owning connection's
// pumps are running. The teardown path removes it exactly once.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]*Client)}
}

// Insert adds a client. Ids are uuid-generated, so a collision with an
// existing entry is not expected.
func (r *Registry) Insert(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
}

// Remove deletes an entry if present. Removing an absent id is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, id)
}

func (r *Registry) Get(id string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[id]
	return c, ok
}

// SnapshotMatching returns every client for which pred holds, gathered
// under a single read lock so concurrent inserts and removes cannot be
// observed half-applied.
func (r *Registry) SnapshotMatching(pred func(*Client) bool) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		if pred(c) {
			matched = append(matched, c)
		}
	}
	return matched
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}
