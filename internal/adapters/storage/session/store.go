// Package session keeps per-session values in a ristretto cache.
package session

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/ristretto"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

const (
	defaultNumCounters = 1e4 // admission counters, ~10x the expected item count
	defaultMaxCost     = 1 << 20
	defaultBufferItems = 64
)

// Config sizes the session cache.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// Store is a ports.SessionStore. Values live only as long as the process.
type Store struct {
	cache *ristretto.Cache

	// keys mirrors the admitted key set for Len.
	mu   sync.Mutex
	keys map[string]struct{}
}

// New creates a session store. Zero config fields take defaults.
func New(cfg Config) (*Store, error) {
	if cfg.NumCounters <= 0 {
		cfg.NumCounters = defaultNumCounters
	}

	if cfg.MaxCost <= 0 {
		cfg.MaxCost = defaultMaxCost
	}

	if cfg.BufferItems <= 0 {
		cfg.BufferItems = defaultBufferItems
	}

	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session cache: %w", err)
	}

	return &Store{cache: cache, keys: make(map[string]struct{})}, nil
}

// Get returns the quote under key.
func (s *Store) Get(key string) (domain.Quote, bool) {
	v, found := s.cache.Get(key)
	if !found {
		return domain.Quote{}, false
	}

	q, ok := v.(domain.Quote)

	return q, ok
}

// Set stores q under key. The write is visible to Get as soon as Set returns.
func (s *Store) Set(key string, q domain.Quote) {
	cost := int64(len(q.Text) + len(q.Category) + 8)

	if s.cache.Set(key, q, cost) {
		s.cache.Wait()

		s.mu.Lock()
		s.keys[key] = struct{}{}
		s.mu.Unlock()
	}
}

// Delete removes key.
func (s *Store) Delete(key string) {
	s.cache.Del(key)

	s.mu.Lock()
	delete(s.keys, key)
	s.mu.Unlock()
}

// Clear drops every session value.
func (s *Store) Clear() {
	s.cache.Clear()

	s.mu.Lock()
	clear(s.keys)
	s.mu.Unlock()
}

// Len reports how many keys have been set and not removed.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.keys)
}

// Close stops the cache's background goroutines.
func (s *Store) Close() {
	s.cache.Close()
}
