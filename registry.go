package lightnet

import (
	"context"
	"sync"
)

// taskRegistry is the serialized owner of the pipeline's mutable state:
// the in-flight cancel handles keyed by task ID and the retry counters
// keyed by endpoint fingerprint. All access goes through its mutex; the
// lock is never held across network I/O.
type taskRegistry struct {
	mu       sync.Mutex
	inflight map[TaskID]context.CancelFunc
	retries  map[string]int
}

func newTaskRegistry() *taskRegistry {
	return &taskRegistry{
		inflight: make(map[TaskID]context.CancelFunc),
		retries:  make(map[string]int),
	}
}

// register stores the cancel handle for a task. At most one handle exists
// per task ID; re-registering (a retry attempt under the same ID)
// replaces the previous handle.
func (r *taskRegistry) register(id TaskID, cancel context.CancelFunc) {
	r.mu.Lock()
	r.inflight[id] = cancel
	r.mu.Unlock()
}

// unregister removes a task's handle regardless of outcome.
func (r *taskRegistry) unregister(id TaskID) {
	r.mu.Lock()
	delete(r.inflight, id)
	r.mu.Unlock()
}

// cancel cancels and removes the handle registered under id. Calling it
// for an absent id is a no-op, which makes it idempotent.
func (r *taskRegistry) cancel(id TaskID) {
	r.mu.Lock()
	cancel, ok := r.inflight[id]
	delete(r.inflight, id)
	r.mu.Unlock()

	if ok {
		cancel()
	}
}

// cancelAll cancels every in-flight handle and wipes all retry counters,
// including counters for endpoints with no cancelled request.
func (r *taskRegistry) cancelAll() {
	r.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(r.inflight))
	for _, c := range r.inflight {
		cancels = append(cancels, c)
	}
	r.inflight = make(map[TaskID]context.CancelFunc)
	r.retries = make(map[string]int)
	r.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

func (r *taskRegistry) retryCount(fingerprint string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retries[fingerprint]
}

func (r *taskRegistry) incrementRetries(fingerprint string) {
	r.mu.Lock()
	r.retries[fingerprint]++
	r.mu.Unlock()
}

// clearRetries removes the counter on any terminal outcome so stale
// attempts never leak into unrelated calls sharing the fingerprint.
func (r *taskRegistry) clearRetries(fingerprint string) {
	r.mu.Lock()
	delete(r.retries, fingerprint)
	r.mu.Unlock()
}

func (r *taskRegistry) inflightCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.inflight)
}
