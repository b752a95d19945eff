// Package clients holds the outbound HTTP client used to reach the remote
// quote source, together with its circuit breaker.
package clients

import "errors"

// Transport-level failures. Callers in acl translate these into domain errors.
var (
	// ErrCircuitOpen means the request was not sent because the breaker is open.
	ErrCircuitOpen = errors.New("quote source circuit open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("quote source retries exhausted")
)
