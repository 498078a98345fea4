package fmu

import (
	"sync"
)

// registry is the FMU's owned collection of live components, keyed by the
// native handle. Instantiate and free are its only writers; the mutex
// guards the collection itself, not the native calls, which the caller
// serializes per the single-threaded contract.
type registry struct {
	mu         sync.Mutex
	components map[uintptr]*Component
}

func newRegistry() *registry {
	return &registry{components: map[uintptr]*Component{}}
}

// insert registers a component unless its handle is already live, in which
// case the existing component is returned. Re-entrant instantiation from
// the native side can hand back a handle we already track.
func (r *registry) insert(c *Component) (*Component, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.components[c.handle]; ok {
		return existing, false
	}
	r.components[c.handle] = c
	return c, true
}

// remove drops a component by handle and reports whether it was live.
func (r *registry) remove(handle uintptr) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.components[handle]; !ok {
		return false
	}
	delete(r.components, handle)
	return true
}

func (r *registry) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.components)
}

// snapshot returns the live components so the unload path can free them
// without holding the lock across native calls.
func (r *registry) snapshot() []*Component {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Component, 0, len(r.components))
	for _, c := range r.components {
		out = append(out, c)
	}
	return out
}
