package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// Keys names the storage slots the service reads and writes.
type Keys struct {
	Quotes     string
	Filter     string
	LastViewed string
}

// DefaultKeys returns the slot names used when none are configured.
func DefaultKeys() Keys {
	return Keys{
		Quotes:     "quotes",
		Filter:     "selectedCategory",
		LastViewed: "lastViewedQuote",
	}
}

// Persistence moves quotes, the category filter, and the last viewed quote
// between memory and the durable and session stores.
type Persistence struct {
	kv      ports.KeyValueStore
	session ports.SessionStore
	keys    Keys
	logger  *slog.Logger
}

// NewPersistence creates a persistence adapter. Empty key names fall back to DefaultKeys.
func NewPersistence(kv ports.KeyValueStore, session ports.SessionStore, keys Keys, logger *slog.Logger) *Persistence {
	if kv == nil {
		panic("app: key/value store is required")
	}

	if logger == nil {
		logger = slog.Default()
	}

	defaults := DefaultKeys()

	if keys.Quotes == "" {
		keys.Quotes = defaults.Quotes
	}

	if keys.Filter == "" {
		keys.Filter = defaults.Filter
	}

	if keys.LastViewed == "" {
		keys.LastViewed = defaults.LastViewed
	}

	return &Persistence{
		kv:      kv,
		session: session,
		keys:    keys,
		logger:  logger.With(slog.String("component", "app.Persistence")),
	}
}

// LoadQuotes reads the persisted quote list.
// The boolean is false when the slot is missing, unreadable, malformed, or
// empty; the caller then falls back to the default list.
func (p *Persistence) LoadQuotes(ctx context.Context) ([]domain.Quote, bool) {
	logger := logging.Or(ctx, p.logger)

	raw, found, err := p.kv.Get(ctx, p.keys.Quotes)
	if err != nil {
		logger.WarnContext(ctx, "reading persisted quotes failed", slog.Any("error", err))
		return nil, false
	}

	if !found {
		logger.DebugContext(ctx, "no persisted quotes")
		return nil, false
	}

	quotes, err := domain.DecodeQuotes([]byte(raw))
	if err != nil {
		logger.WarnContext(ctx, "discarding corrupt persisted quotes", slog.Any("error", err))
		return nil, false
	}

	if len(quotes) == 0 {
		logger.DebugContext(ctx, "persisted quote list is empty")
		return nil, false
	}

	return quotes, true
}

// SaveQuotes writes the full quote list.
func (p *Persistence) SaveQuotes(ctx context.Context, quotes []domain.Quote) error {
	data, err := domain.EncodeQuotes(quotes)
	if err != nil {
		return err
	}

	err = p.kv.Set(ctx, p.keys.Quotes, string(data))
	if err != nil {
		return fmt.Errorf("persisting quotes: %w", err)
	}

	return nil
}

// LoadFilter returns the persisted category filter, FilterAll when none is stored.
func (p *Persistence) LoadFilter(ctx context.Context) (string, error) {
	raw, found, err := p.kv.Get(ctx, p.keys.Filter)
	if err != nil {
		return domain.FilterAll, fmt.Errorf("reading filter: %w", err)
	}

	if !found || raw == "" {
		return domain.FilterAll, nil
	}

	return raw, nil
}

// SaveFilter persists the category filter.
func (p *Persistence) SaveFilter(ctx context.Context, filter string) error {
	err := p.kv.Set(ctx, p.keys.Filter, filter)
	if err != nil {
		return fmt.Errorf("persisting filter: %w", err)
	}

	return nil
}

// RememberLastViewed caches q as the session's last viewed quote.
func (p *Persistence) RememberLastViewed(q domain.Quote) {
	if p.session == nil {
		return
	}

	p.session.Set(p.keys.LastViewed, q)
}

// LastViewed returns the session's last viewed quote.
func (p *Persistence) LastViewed() (domain.Quote, bool) {
	if p.session == nil {
		return domain.Quote{}, false
	}

	return p.session.Get(p.keys.LastViewed)
}

// ClearSession drops every session value.
func (p *Persistence) ClearSession() {
	if p.session == nil {
		return
	}

	p.session.Clear()
}
