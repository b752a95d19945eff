package ports

import (
	"context"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// KeyValueStore is a durable string slot store that survives restarts.
//
// Example usage in application layer:
//
//	raw, ok, err := kv.Get(ctx, "quotes")
//	if err != nil || !ok {
//	    // fall back to defaults
//	}
type KeyValueStore interface {
	HealthChecker

	// Get returns the value stored under key. The boolean is false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set creates or overwrites key.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// SessionStore holds per-session values that are discarded when the session ends.
type SessionStore interface {
	// Get returns the quote stored under key, if any.
	Get(key string) (domain.Quote, bool)

	// Set stores q under key, replacing any previous value.
	Set(key string, q domain.Quote)

	// Delete removes key.
	Delete(key string)

	// Clear discards every session value.
	Clear()
}
