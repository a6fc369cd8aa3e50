package core

import (
	"sort"
	"sync"
	"sync/atomic"
)

// registry tracks threads that have not finished yet and remembers the ones
// that have.
type registry struct {
	mu      sync.RWMutex
	threads map[string]*Thread
	history *exitHistory

	spawned  atomic.Int64
	exited   atomic.Int64
	aborted  atomic.Int64
	rejected atomic.Int64
}

func newRegistry(historyCapacity int) *registry {
	return &registry{
		threads: make(map[string]*Thread),
		history: newExitHistory(historyCapacity),
	}
}

func (r *registry) add(t *Thread) {
	t.seq = r.spawned.Add(1)
	r.mu.Lock()
	r.threads[t.id] = t
	r.mu.Unlock()
}

func (r *registry) remove(t *Thread, record ThreadExitRecord) {
	r.mu.Lock()
	delete(r.threads, t.id)
	r.mu.Unlock()

	r.history.Add(record)
	if record.Status == StatusAborted {
		r.aborted.Add(1)
	}
	r.exited.Add(1)
}

func (r *registry) lookup(id string) (*Thread, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.threads[id]
	return t, ok
}

// list returns unfinished threads in spawn order.
func (r *registry) list() []*Thread {
	r.mu.RLock()
	out := make([]*Thread, 0, len(r.threads))
	for _, t := range r.threads {
		out = append(out, t)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].seq < out[j].seq
	})
	return out
}
