// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - SQL and wire formats (that's storage and client adapters)
//   - Pure merge and filter rules (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
	"github.com/jsamuelsen/quotebook/internal/ports"
)

// QuoteService is the controller of a quote session. It owns the store, the
// active category filter, and the observer list; handlers and the sync
// scheduler drive it.
type QuoteService struct {
	store       *QuoteStore
	persistence *Persistence
	selector    *Selector
	source      ports.RemoteSource
	sourceName  string
	publisher   ports.QuotePublisher
	executor    *Executor
	policy      domain.ImportPolicy
	bus         eventBus
	logger      *slog.Logger

	// mu guards filter. It is never held together with the store lock.
	mu     sync.RWMutex
	filter string
}

// QuoteServiceConfig contains the collaborators of the quote service.
type QuoteServiceConfig struct {
	Store       *QuoteStore
	Persistence *Persistence
	Selector    *Selector

	// Source feeds Sync. Optional; without it Sync always fails.
	Source     ports.RemoteSource
	SourceName string

	// Publisher submits added quotes before they are stored. Optional.
	Publisher ports.QuotePublisher

	// ImportPolicy is applied when a caller does not pick one. Defaults to replace.
	ImportPolicy domain.ImportPolicy

	Logger *slog.Logger
}

// NewQuoteService creates a quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil || cfg.Persistence == nil {
		panic("app: quote store and persistence are required")
	}

	if cfg.Selector == nil {
		cfg.Selector = NewSelector(nil)
	}

	if cfg.ImportPolicy == "" {
		cfg.ImportPolicy = domain.ImportReplace
	}

	if cfg.SourceName == "" {
		cfg.SourceName = "remote"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("component", "app.QuoteService"))

	return &QuoteService{
		store:       cfg.Store,
		persistence: cfg.Persistence,
		selector:    cfg.Selector,
		source:      cfg.Source,
		sourceName:  cfg.SourceName,
		publisher:   cfg.Publisher,
		executor:    NewExecutor(logger),
		policy:      cfg.ImportPolicy,
		logger:      logger,
		filter:      domain.FilterAll,
	}
}

// Subscribe registers obs for state changes and returns a function that removes it.
func (s *QuoteService) Subscribe(obs Observer) func() {
	return s.bus.subscribe(obs)
}

// Start loads quotes and the saved filter concurrently. The saved filter is
// restored only if its category still exists.
func (s *QuoteService) Start(ctx context.Context) error {
	logger := logging.Or(ctx, s.logger)

	quotes, saved, err := Parallel2(ctx,
		func(ctx context.Context) ([]domain.Quote, error) {
			return s.store.Load(ctx), nil
		},
		func(ctx context.Context) (string, error) {
			filter, err := s.persistence.LoadFilter(ctx)
			if err != nil {
				logger.WarnContext(ctx, "loading saved filter failed", slog.Any("error", err))
			}

			return filter, nil
		},
	)
	if err != nil {
		return fmt.Errorf("starting quote service: %w", err)
	}

	categories := domain.Categories(quotes)
	filter := domain.ResolveFilter(saved, categories)

	s.mu.Lock()
	s.filter = filter
	s.mu.Unlock()

	if filter != saved {
		logger.InfoContext(ctx, "saved filter no longer matches a category",
			slog.String("saved", saved),
		)
	}

	logger.InfoContext(ctx, "quote service started",
		slog.Int("quotes", len(quotes)),
		slog.String("filter", filter),
	)

	s.bus.publish(ctx, Event{
		Kind:       EventQuotesChanged,
		Reason:     ReasonLoad,
		Total:      len(quotes),
		Filter:     filter,
		Categories: categories,
	})

	return nil
}

// Quotes lists stored quotes, restricted to category unless it is empty or FilterAll.
func (s *QuoteService) Quotes(category string) []domain.Quote {
	quotes := s.store.List()
	if category == "" || category == domain.FilterAll {
		return quotes
	}

	return domain.FilterByCategory(quotes, category)
}

// Categories returns the distinct sorted categories of the store.
func (s *QuoteService) Categories() []string {
	return domain.Categories(s.store.List())
}

// Filter returns the active category filter.
func (s *QuoteService) Filter() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.filter
}

// SetFilter changes and persists the active filter. The category must be
// FilterAll or one currently present in the store.
func (s *QuoteService) SetFilter(ctx context.Context, category string) error {
	if category != domain.FilterAll && !domain.HasCategory(s.Categories(), category) {
		return domain.NewValidationErrorWithValue("category", "unknown category", category)
	}

	err := s.persistence.SaveFilter(ctx, category)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.filter = category
	s.mu.Unlock()

	s.bus.publish(ctx, Event{Kind: EventFilterChanged, Filter: category})

	return nil
}

// RandomQuote picks a quote matching category, or the active filter when
// category is empty. The pick becomes the session's last viewed quote.
// The boolean is false when nothing matches.
func (s *QuoteService) RandomQuote(ctx context.Context, category string) (domain.Quote, bool) {
	if category == "" {
		category = s.Filter()
	}

	q, ok := s.selector.Pick(s.store.List(), category)
	if !ok {
		logging.Or(ctx, s.logger).DebugContext(ctx, "no quote matches filter",
			slog.String("filter", category),
		)

		return domain.Quote{}, false
	}

	s.persistence.RememberLastViewed(q)

	return q, true
}

// LastViewed returns the last quote picked in this session.
func (s *QuoteService) LastViewed() (domain.Quote, bool) {
	return s.persistence.LastViewed()
}

// EndSession forgets session-scoped state such as the last viewed quote.
func (s *QuoteService) EndSession(ctx context.Context) {
	s.persistence.ClearSession()
	s.bus.publish(ctx, Event{Kind: EventSessionCleared})
}

// AddQuote validates and stores a new quote. With a publisher configured the
// quote is submitted first and stored only after the remote acknowledged it.
func (s *QuoteService) AddQuote(ctx context.Context, text, category string) (domain.Quote, error) {
	var (
		q   domain.Quote
		err error
	)

	if s.publisher == nil {
		q, err = s.store.Add(ctx, text, category)
	} else {
		q, err = s.addAndPublish(ctx, domain.Quote{Text: text, Category: category}.Normalized())
	}

	if err != nil {
		if domain.IsPost(err) {
			s.bus.publish(ctx, Event{Kind: EventPostFailed, Err: err})
		}

		return domain.Quote{}, fmt.Errorf("adding quote: %w", err)
	}

	if s.publisher != nil {
		s.bus.publish(ctx, Event{Kind: EventQuotePublished, Total: s.store.Len()})
	}

	logging.Or(ctx, s.logger).InfoContext(ctx, "quote added",
		slog.Int64("quote_id", q.ID),
		slog.String("category", q.Category),
	)

	s.afterMutation(ctx, ReasonAdd, 0)

	return q, nil
}

// addAndPublish runs the publish flow: the quote reaches the store only after
// the remote accepted it and its answer checked out.
func (s *QuoteService) addAndPublish(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	var stored domain.Quote

	op := Operation[domain.Quote, domain.Quote, domain.Quote, domain.Quote]{
		Name: "add_quote",
		Validate: func(_ context.Context, in domain.Quote) error {
			return in.Validate()
		},
		Perform: func(ctx context.Context, in domain.Quote) (domain.Quote, error) {
			return s.publisher.PublishQuote(ctx, in)
		},
		Verify: func(_ context.Context, in, acked domain.Quote) (domain.Quote, error) {
			if acked.Text == "" {
				return domain.Quote{}, domain.NewValidationError("title", "missing from response")
			}

			in.ID = acked.ID

			return in, nil
		},
		Archive: func(ctx context.Context, _, verified domain.Quote) error {
			var err error

			stored, err = s.store.Append(ctx, verified)

			return err
		},
		Respond: func(context.Context, domain.Quote, domain.Quote) (domain.Quote, error) {
			return stored, nil
		},
	}

	result, err := Execute(ctx, s.executor, op, q)
	if err != nil {
		step, _ := FailedStep(err)
		if step == StepPerform || step == StepVerify {
			return domain.Quote{}, domain.NewPostError(err)
		}

		return domain.Quote{}, err
	}

	return result, nil
}

// ImportResult summarises an import.
type ImportResult struct {
	Imported int                 `json:"imported"`
	Total    int                 `json:"total"`
	Policy   domain.ImportPolicy `json:"policy"`
}

// ImportQuotes loads a JSON document of quotes. An empty policy selects the
// configured default.
func (s *QuoteService) ImportQuotes(ctx context.Context, data []byte, policy string) (ImportResult, error) {
	chosen := s.policy

	if policy != "" {
		parsed, err := domain.ParseImportPolicy(policy)
		if err != nil {
			return ImportResult{}, err
		}

		chosen = parsed
	}

	n, err := s.store.ImportAll(ctx, data, chosen)
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing quotes: %w", err)
	}

	total := s.store.Len()

	logging.Or(ctx, s.logger).InfoContext(ctx, "quotes imported",
		slog.Int("imported", n),
		slog.Int("total", total),
		slog.String("policy", string(chosen)),
	)

	s.afterMutation(ctx, ReasonImport, 0)

	return ImportResult{Imported: n, Total: total, Policy: chosen}, nil
}

// ExportQuotes renders the store as pretty-printed JSON.
func (s *QuoteService) ExportQuotes(ctx context.Context) ([]byte, error) {
	data, err := s.store.ExportAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("exporting quotes: %w", err)
	}

	return data, nil
}

// afterMutation re-derives categories, drops a filter whose category vanished,
// and notifies observers.
func (s *QuoteService) afterMutation(ctx context.Context, reason string, added int) {
	quotes := s.store.List()
	categories := domain.Categories(quotes)

	s.mu.Lock()
	previous := s.filter
	s.filter = domain.ResolveFilter(previous, categories)
	current := s.filter
	s.mu.Unlock()

	if current != previous {
		err := s.persistence.SaveFilter(ctx, current)
		if err != nil {
			logging.Or(ctx, s.logger).WarnContext(ctx, "persisting reset filter failed", slog.Any("error", err))
		}

		s.bus.publish(ctx, Event{Kind: EventFilterChanged, Filter: current})
	}

	s.bus.publish(ctx, Event{
		Kind:       EventQuotesChanged,
		Reason:     reason,
		Total:      len(quotes),
		Added:      added,
		Filter:     current,
		Categories: categories,
	})
}
