package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotebook/internal/domain"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

// DefaultSyncInterval is how often the scheduler reconciles when no interval is configured.
const DefaultSyncInterval = 60 * time.Second

// SyncResult reports the outcome of one reconciliation cycle.
type SyncResult struct {
	Added    int           `json:"added"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
}

// Sync fetches remote quotes and merges them into the store, remote winning
// on shared ids. The fetch runs without holding the store lock; the merge is
// applied to whatever the store holds when the fetch returns. A failed fetch
// leaves the store untouched and returns a SyncError.
func (s *QuoteService) Sync(ctx context.Context) (SyncResult, error) {
	logger := logging.Or(ctx, s.logger).With(slog.String("source", s.sourceName))
	start := time.Now()

	if s.source == nil {
		err := domain.NewSyncError(s.sourceName, domain.NewUnavailableError(s.sourceName, "no remote source configured"))
		s.bus.publish(ctx, Event{Kind: EventSyncFailed, Err: err})

		return SyncResult{}, err
	}

	remote, err := s.source.FetchQuotes(ctx)
	if err != nil {
		syncErr := domain.NewSyncError(s.sourceName, err)

		logger.WarnContext(ctx, "sync fetch failed", slog.Any("error", err))
		s.bus.publish(ctx, Event{Kind: EventSyncFailed, Err: syncErr})

		return SyncResult{}, syncErr
	}

	added, total, err := s.store.Merge(ctx, remote)
	if err != nil {
		s.bus.publish(ctx, Event{Kind: EventSyncFailed, Err: err})

		return SyncResult{}, err
	}

	result := SyncResult{Added: added, Total: total, Duration: time.Since(start)}

	logger.InfoContext(ctx, "sync completed",
		slog.Int("fetched", len(remote)),
		slog.Int("added", added),
		slog.Int("total", total),
		slog.Duration("duration", result.Duration),
	)

	s.afterMutation(ctx, ReasonSync, added)
	s.bus.publish(ctx, Event{Kind: EventSyncCompleted, Added: added, Total: total})

	return result, nil
}

// Syncer runs one reconciliation cycle.
type Syncer interface {
	Sync(ctx context.Context) (SyncResult, error)
}

// SyncScheduler triggers a sync every interval until its context ends.
// Cycles run one after another on the scheduler goroutine; a failed cycle is
// logged and the next tick retries without backoff.
type SyncScheduler struct {
	syncer   Syncer
	interval time.Duration
	logger   *slog.Logger
}

// NewSyncScheduler creates a scheduler. A non-positive interval selects DefaultSyncInterval.
func NewSyncScheduler(syncer Syncer, interval time.Duration, logger *slog.Logger) *SyncScheduler {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &SyncScheduler{
		syncer:   syncer,
		interval: interval,
		logger:   logger.With(slog.String("component", "app.SyncScheduler")),
	}
}

// Run blocks until ctx is cancelled. The first cycle fires one interval after Run starts.
func (s *SyncScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "sync scheduler started", slog.Duration("interval", s.interval))

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "sync scheduler stopped")
			return nil
		case <-ticker.C:
			_, err := s.syncer.Sync(ctx)
			if err != nil && ctx.Err() == nil {
				s.logger.WarnContext(ctx, "scheduled sync failed", slog.Any("error", err))
			}
		}
	}
}
