// Package memory provides an in-process key/value store.
package memory

import (
	"context"
	"sync"
)

// Store keeps values in a map. Contents vanish with the process.
type Store struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty store.
func New() *Store {
	return &Store{values: make(map[string]string)}
}

// Name implements ports.HealthChecker.
func (s *Store) Name() string { return "memory" }

// Check implements ports.HealthChecker. An in-process map is always healthy.
func (s *Store) Check(context.Context) error { return nil }

// Get returns the value under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]

	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value

	return nil
}

// Delete removes key.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)

	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
