package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// NoticeLevel is the severity of a notice.
type NoticeLevel string

const (
	NoticeInfo  NoticeLevel = "info"
	NoticeWarn  NoticeLevel = "warn"
	NoticeError NoticeLevel = "error"
)

// DefaultNoticeCapacity bounds the notice buffer when no capacity is configured.
const DefaultNoticeCapacity = 20

// Notice is a transient, dismissible message about something the user did not
// directly ask for, such as a background sync result.
type Notice struct {
	ID      string      `json:"id"`
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

// Notices keeps the most recent notices, oldest first.
type Notices struct {
	mu       sync.Mutex
	capacity int
	items    []Notice
	now      func() time.Time
}

// NewNotices creates a buffer holding at most capacity notices.
func NewNotices(capacity int) *Notices {
	if capacity <= 0 {
		capacity = DefaultNoticeCapacity
	}

	return &Notices{
		capacity: capacity,
		items:    make([]Notice, 0, capacity),
		now:      time.Now,
	}
}

// Add records a notice, evicting the oldest when full.
func (n *Notices) Add(level NoticeLevel, message string) Notice {
	notice := Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
		At:      n.now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.items) == n.capacity {
		n.items = append(n.items[:0], n.items[1:]...)
	}

	n.items = append(n.items, notice)

	return notice
}

// List returns a copy of the current notices.
func (n *Notices) List() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notice, len(n.items))
	copy(out, n.items)

	return out
}

// Dismiss removes the notice with id, reporting whether it existed.
func (n *Notices) Dismiss(id string) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}

	return false
}

// Observe turns service events into notices. Subscribe it with QuoteService.Subscribe.
func (n *Notices) Observe(_ context.Context, e Event) {
	switch e.Kind {
	case EventSyncCompleted:
		if e.Added > 0 {
			n.Add(NoticeInfo, fmt.Sprintf("Synced with server: %d new quote(s) added.", e.Added))
		}
	case EventSyncFailed:
		n.Add(NoticeWarn, fmt.Sprintf("Sync failed, will retry: %v", e.Err))
	case EventPostFailed:
		n.Add(NoticeError, fmt.Sprintf("Could not submit quote: %v", e.Err))
	case EventQuotesChanged:
		if e.Reason == ReasonImport {
			n.Add(NoticeInfo, fmt.Sprintf("Imported quotes, %d in total.", e.Total))
		}
	case EventFilterChanged, EventSessionCleared, EventQuotePublished:
	}
}
