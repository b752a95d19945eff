// Package ports declares what the quote service needs from the outside world:
// a remote quote source, a place to publish new quotes, durable key/value
// storage and health checks. Adapters implement these; the app package only
// sees the interfaces.
//
// Implementations take the caller's context, return domain values and report
// failures with domain error kinds such as domain.ErrUnavailable.
package ports

import (
	"context"

	"github.com/jsamuelsen/quotebook/internal/domain"
)

// RemoteSource is the authority a sync reconciles against.
type RemoteSource interface {
	// FetchQuotes returns the remote's current quotes. An unreachable or
	// failing remote yields an error matching domain.ErrUnavailable.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)
}

// QuotePublisher sends locally added quotes to the remote.
type QuotePublisher interface {
	// PublishQuote returns q as the remote acknowledged it. The id is the one
	// the remote assigned, or zero if it assigned none.
	PublishQuote(ctx context.Context, q domain.Quote) (domain.Quote, error)
}
