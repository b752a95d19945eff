package domain

import (
	"sync"
	"time"
)

// IDGenerator hands out ids for locally created quotes.
//
// Ids are seeded from the wall clock in milliseconds but are strictly
// increasing, so two quotes added within the same millisecond never share an
// id. Observe raises the floor so a generated id never collides with one
// already in the store.
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator. A nil clock defaults to time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}

	return &IDGenerator{now: now}
}

// Observe records an id already in use; subsequent ids are greater than it.
func (g *IDGenerator) Observe(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id > g.last {
		g.last = id
	}
}

// Next returns a fresh id.
func (g *IDGenerator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	candidate := g.now().UnixMilli()
	if candidate <= g.last {
		candidate = g.last + 1
	}

	g.last = candidate

	return candidate
}
