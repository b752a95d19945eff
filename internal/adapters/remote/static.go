// Package remote provides quote sources that do not depend on a network peer.
package remote

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// DefaultLatency is the simulated round trip of a static fetch.
const DefaultLatency = time.Second

// StaticSource serves a fixed quote list after a simulated delay.
// It stands in for a real server in demos and tests.
type StaticSource struct {
	quotes  []domain.Quote
	latency time.Duration
	logger  *slog.Logger
}

// StaticConfig configures a StaticSource.
type StaticConfig struct {
	// Quotes is the list every fetch returns. Nil uses DefaultServerQuotes.
	Quotes []domain.Quote

	// Latency delays each fetch. Negative values are treated as zero.
	Latency time.Duration

	Logger *slog.Logger
}

// DefaultServerQuotes returns the list served when none is configured.
func DefaultServerQuotes() []domain.Quote {
	return []domain.Quote{
		{ID: 1, Text: "The only way to do great work is to love what you do.", Category: "Inspiration"},
		{ID: 2, Text: "Well begun is half done.", Category: "Wisdom"},
		{ID: 101, Text: "Simplicity is prerequisite for reliability.", Category: "Server"},
		{ID: 102, Text: "Make it work, make it right, make it fast.", Category: "Server"},
	}
}

// NewStaticSource creates a static source.
func NewStaticSource(cfg StaticConfig) *StaticSource {
	quotes := cfg.Quotes
	if quotes == nil {
		quotes = DefaultServerQuotes()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &StaticSource{
		quotes:  slices.Clone(quotes),
		latency: max(cfg.Latency, 0),
		logger:  logger,
	}
}

// FetchQuotes waits for the configured latency and returns a copy of the list.
// Implements ports.RemoteSource.
func (s *StaticSource) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	if s.latency > 0 {
		timer := time.NewTimer(s.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, domain.NewUnavailableError(s.Name(), ctx.Err().Error())
		case <-timer.C:
		}
	}

	s.logger.DebugContext(ctx, "serving static quotes", slog.Int("count", len(s.quotes)))

	return slices.Clone(s.quotes), nil
}

// Name implements ports.HealthChecker.
func (s *StaticSource) Name() string { return "static-source" }

// Check implements ports.HealthChecker.
func (s *StaticSource) Check(context.Context) error { return nil }

// Advisory implements ports.Advisory.
func (s *StaticSource) Advisory() bool { return true }
