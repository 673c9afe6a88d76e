package chart

import "sync"

// Registry is the ordered list of update callbacks a chart replays after
// its scales change. It never deduplicates: registering the same function
// twice runs it twice. It is safe for concurrent use, but callbacks run on
// the goroutine calling Replay.
type Registry struct {
	mu      sync.RWMutex
	entries []registryEntry
	next    int
}

type registryEntry struct {
	id int
	fn func()
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends fn and returns a handle for Unregister. Handles are
// positive and never reused by one registry.
func (r *Registry) Register(fn func()) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	r.entries = append(r.entries, registryEntry{id: r.next, fn: fn})
	return r.next
}

// Unregister removes the callback with handle id. Unknown handles are
// ignored.
func (r *Registry) Unregister(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return
		}
	}
}

// Clear removes every callback.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

// Len returns the number of registered callbacks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Replay runs the callbacks in registration order. Callbacks registered
// during a replay run on the next one; callbacks unregistered during a
// replay are skipped if they have not run yet.
func (r *Registry) Replay() int {
	r.mu.RLock()
	snapshot := append([]registryEntry(nil), r.entries...)
	r.mu.RUnlock()

	ran := 0
	for _, e := range snapshot {
		if !r.has(e.id) {
			continue
		}
		e.fn()
		ran++
	}
	return ran
}

func (r *Registry) has(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.id == id {
			return true
		}
	}
	return false
}
