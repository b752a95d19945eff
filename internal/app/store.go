package app

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// QuoteStore owns the in-memory quote list for the session.
//
// Every mutation builds the next list, persists it, and only then swaps it in,
// so a failed write leaves the store at its last known good state. The mutex
// serialises mutations; remote and file I/O happen outside it.
type QuoteStore struct {
	mu          sync.Mutex
	quotes      []domain.Quote
	persistence *Persistence
	ids         *domain.IDGenerator
	allowEmpty  bool
	logger      *slog.Logger
}

// StoreConfig configures a QuoteStore.
type StoreConfig struct {
	Persistence *Persistence
	IDs         *domain.IDGenerator
	// AllowEmptyExport permits exporting an empty store as "[]".
	AllowEmptyExport bool
	Logger           *slog.Logger
}

// NewQuoteStore creates an empty store. Call Load before serving requests.
func NewQuoteStore(cfg StoreConfig) *QuoteStore {
	if cfg.Persistence == nil {
		panic("app: persistence is required")
	}

	if cfg.IDs == nil {
		cfg.IDs = domain.NewIDGenerator(nil)
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &QuoteStore{
		quotes:      []domain.Quote{},
		persistence: cfg.Persistence,
		ids:         cfg.IDs,
		allowEmpty:  cfg.AllowEmptyExport,
		logger:      cfg.Logger.With(slog.String("component", "app.QuoteStore")),
	}
}

// Load populates the store from persistence, falling back to the default
// quotes (and persisting them) when nothing usable is stored. It never fails.
func (s *QuoteStore) Load(ctx context.Context) []domain.Quote {
	logger := logging.Or(ctx, s.logger)

	quotes, ok := s.persistence.LoadQuotes(ctx)
	if !ok {
		quotes = domain.DefaultQuotes()

		err := s.persistence.SaveQuotes(ctx, quotes)
		if err != nil {
			logger.WarnContext(ctx, "persisting default quotes failed", slog.Any("error", err))
		}

		logger.InfoContext(ctx, "seeded default quotes", slog.Int("count", len(quotes)))
	}

	s.mu.Lock()
	s.quotes = quotes
	s.ids.Observe(domain.MaxID(quotes))
	s.mu.Unlock()

	return slices.Clone(quotes)
}

// Add validates and appends a new quote with a fresh id, persisting before returning.
func (s *QuoteStore) Add(ctx context.Context, text, category string) (domain.Quote, error) {
	q := domain.Quote{Text: text, Category: category}.Normalized()

	err := q.Validate()
	if err != nil {
		return domain.Quote{}, err
	}

	return s.Append(ctx, q)
}

// Append stores an already validated quote. A zero or already used id is
// replaced by a fresh one.
func (s *QuoteStore) Append(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !q.HasID() || domain.ContainsID(s.quotes, q.ID) {
		q.ID = s.ids.Next()
	} else {
		s.ids.Observe(q.ID)
	}

	next := append(slices.Clone(s.quotes), q)

	err := s.commit(ctx, next)
	if err != nil {
		return domain.Quote{}, err
	}

	return q, nil
}

// ImportAll parses data and replaces or extends the store according to policy.
// It returns the number of quotes imported.
func (s *QuoteStore) ImportAll(ctx context.Context, data []byte, policy domain.ImportPolicy) (int, error) {
	imported, err := domain.DecodeQuotes(data)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var next []domain.Quote

	switch policy {
	case domain.ImportAppend:
		next = append(slices.Clone(s.quotes), imported...)
	case domain.ImportReplace:
		next = imported
	default:
		return 0, domain.NewValidationErrorWithValue("policy", "must be one of: replace append", string(policy))
	}

	err = s.commit(ctx, next)
	if err != nil {
		return 0, err
	}

	s.ids.Observe(domain.MaxID(imported))

	return len(imported), nil
}

// ExportAll renders the full store as pretty-printed JSON.
func (s *QuoteStore) ExportAll(_ context.Context) ([]byte, error) {
	s.mu.Lock()
	quotes := slices.Clone(s.quotes)
	s.mu.Unlock()

	if len(quotes) == 0 && !s.allowEmpty {
		return nil, domain.NewEmptyStoreError("export")
	}

	return domain.EncodeQuotes(quotes)
}

// Merge reconciles remote quotes into the current list and persists the result.
// It returns the number of quotes added and the new total.
func (s *QuoteStore) Merge(ctx context.Context, remote []domain.Quote) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, added := domain.Reconcile(s.quotes, remote)

	err := s.commit(ctx, merged)
	if err != nil {
		return 0, len(s.quotes), err
	}

	s.ids.Observe(domain.MaxID(merged))

	return added, len(merged), nil
}

// List returns a copy of all quotes in insertion order.
func (s *QuoteStore) List() []domain.Quote {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.quotes)
}

// Len returns the number of stored quotes.
func (s *QuoteStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.quotes)
}

// commit persists next and swaps it in. Callers hold s.mu.
func (s *QuoteStore) commit(ctx context.Context, next []domain.Quote) error {
	if next == nil {
		next = []domain.Quote{}
	}

	err := s.persistence.SaveQuotes(ctx, next)
	if err != nil {
		logging.Or(ctx, s.logger).ErrorContext(ctx, "quote store write failed, keeping previous state",
			slog.Any("error", err),
		)

		return err
	}

	s.quotes = next

	return nil
}
