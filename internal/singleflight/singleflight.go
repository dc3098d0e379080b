// Package singleflight coalesces concurrent calls for the same key into
// one execution. It backs the client's single-flight token refresh: the
// first 401 becomes the owner and runs the refresh, overlapping 401s join
// the in-flight call and share its outcome.
package singleflight

import (
	"context"
	"sync"
)

// Group manages in-flight calls keyed by string. A key is "refreshing"
// while present in the map and "idle" otherwise; completion removes it,
// so late arrivals start a fresh call instead of reusing a stale result.
type Group struct {
	mu sync.Mutex
	m  map[string]*call
}

type call struct {
	done chan struct{}
	val  any
	err  error
}

// New creates an empty Group.
func New() *Group {
	return &Group{m: make(map[string]*call)}
}

// Do executes fn under key, ensuring only one execution is in flight per
// key at a time. Joiners block until the owner finishes or their context
// is done, and receive the owner's result. shared reports whether the
// caller joined an existing call rather than owning it.
func (g *Group) Do(ctx context.Context, key string, fn func() (any, error)) (v any, err error, shared bool) {
	g.mu.Lock()
	if c, ok := g.m[key]; ok {
		g.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			return nil, ctx.Err(), true
		}
	}

	c := &call{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	c.val, c.err = fn()

	g.mu.Lock()
	if g.m[key] == c {
		delete(g.m, key)
	}
	g.mu.Unlock()
	close(c.done)

	return c.val, c.err, false
}

// InFlight reports whether a call for key is currently executing.
func (g *Group) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.m[key]
	return ok
}

// Forget drops the in-flight record for key, letting the next caller own
// a new call even if a previous one has not finished.
func (g *Group) Forget(key string) {
	g.mu.Lock()
	delete(g.m, key)
	g.mu.Unlock()
}
