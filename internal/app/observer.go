package app

import (
	"context"
	"sync"
	"time"
)

// EventKind identifies what changed.
type EventKind string

const (
	EventQuotesChanged  EventKind = "quotes_changed"
	EventFilterChanged  EventKind = "filter_changed"
	EventSyncCompleted  EventKind = "sync_completed"
	EventSyncFailed     EventKind = "sync_failed"
	EventPostFailed     EventKind = "post_failed"
	EventQuotePublished EventKind = "quote_published"
	EventSessionCleared EventKind = "session_cleared"
)

// Reasons carried by quotes_changed events.
const (
	ReasonLoad   = "load"
	ReasonAdd    = "add"
	ReasonImport = "import"
	ReasonSync   = "sync"
)

// Event describes a state change of the quote service.
type Event struct {
	Kind EventKind
	At   time.Time

	// Reason names the operation behind a quotes_changed event.
	Reason string

	Total      int
	Added      int
	Filter     string
	Categories []string
	Err        error
}

// Observer receives state changes. Observers run synchronously on the
// goroutine that caused the change, after the store lock is released, so
// they must not block for long.
type Observer func(ctx context.Context, e Event)

type subscription struct {
	id  uint64
	obs Observer
}

// eventBus fans events out to subscribers in subscription order.
type eventBus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   []subscription
}

func (b *eventBus) subscribe(obs Observer) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, obs: obs})

	var once sync.Once

	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()

			for i, s := range b.subs {
				if s.id == id {
					b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (b *eventBus) publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}

	b.mu.RLock()
	subs := make([]subscription, len(b.subs))
	copy(subs, b.subs)
	b.mu.RUnlock()

	for _, s := range subs {
		s.obs(ctx, e)
	}
}
