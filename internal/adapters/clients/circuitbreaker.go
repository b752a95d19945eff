package clients

import (
	"sync"
	"time"
)

// State is the position of a CircuitBreaker.
type State int

const (
	// StateClosed lets every request through and counts consecutive failures.
	StateClosed State = iota

	// StateOpen rejects requests until the cool-down has elapsed.
	StateOpen

	// StateHalfOpen admits a bounded number of probe requests.
	StateHalfOpen
)

var stateNames = [...]string{
	StateClosed:   "closed",
	StateOpen:     "open",
	StateHalfOpen: "half-open",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}

	return stateNames[s]
}

const (
	defaultMaxFailures   = 5
	defaultOpenTimeout   = 30 * time.Second
	defaultHalfOpenLimit = 1
)

// CircuitBreakerConfig tunes a CircuitBreaker. Zero fields take defaults.
type CircuitBreakerConfig struct {
	// MaxFailures consecutive failures while closed open the circuit.
	MaxFailures int

	// Timeout is the cool-down spent open before probing.
	Timeout time.Duration

	// HalfOpenLimit caps in-flight probes and is also the number of
	// consecutive probe successes that close the circuit again.
	HalfOpenLimit int
}

func (c CircuitBreakerConfig) withDefaults() CircuitBreakerConfig {
	if c.MaxFailures <= 0 {
		c.MaxFailures = defaultMaxFailures
	}

	if c.Timeout <= 0 {
		c.Timeout = defaultOpenTimeout
	}

	if c.HalfOpenLimit <= 0 {
		c.HalfOpenLimit = defaultHalfOpenLimit
	}

	return c
}

// Counts is a point-in-time view of a breaker.
type Counts struct {
	State     State
	Failures  int
	Successes int
	InFlight  int
	OpenedAt  time.Time
}

// CircuitBreaker guards the quote source. A run of failures opens it; after
// the cool-down it lets probes through, and either closes again on enough
// probe successes or reopens on the first probe failure.
type CircuitBreaker struct {
	cfg CircuitBreakerConfig
	now func() time.Time

	mu       sync.Mutex
	counts   Counts
	listener func(from, to State)
}

// NewCircuitBreaker returns a closed breaker.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	return &CircuitBreaker{
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
}

// OnStateChange registers fn to be called, on its own goroutine, after each transition.
func (cb *CircuitBreaker) OnStateChange(fn func(from, to State)) {
	cb.mu.Lock()
	cb.listener = fn
	cb.mu.Unlock()
}

// Allow reports whether a request may be sent now. A true result must be
// followed by exactly one RecordSuccess or RecordFailure.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.counts.State == StateOpen {
		if cb.now().Sub(cb.counts.OpenedAt) < cb.cfg.Timeout {
			return false
		}

		cb.moveTo(StateHalfOpen)
	}

	if cb.counts.State == StateHalfOpen {
		if cb.counts.InFlight >= cb.cfg.HalfOpenLimit {
			return false
		}

		cb.counts.InFlight++
	}

	return true
}

// RecordSuccess reports a request that reached a healthy remote.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.counts.State {
	case StateClosed:
		cb.counts.Failures = 0
	case StateHalfOpen:
		cb.releaseProbe()
		cb.counts.Successes++

		if cb.counts.Successes >= cb.cfg.HalfOpenLimit {
			cb.moveTo(StateClosed)
		}
	}
}

// RecordFailure reports a failed request.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.counts.State {
	case StateClosed:
		cb.counts.Failures++

		if cb.counts.Failures >= cb.cfg.MaxFailures {
			cb.moveTo(StateOpen)
		}
	case StateHalfOpen:
		cb.releaseProbe()
		cb.moveTo(StateOpen)
	}
}

// State returns the current state without advancing an expired cool-down.
func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts.State
}

// Counts returns a copy of the breaker's counters.
func (cb *CircuitBreaker) Counts() Counts {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return cb.counts
}

func (cb *CircuitBreaker) releaseProbe() {
	if cb.counts.InFlight > 0 {
		cb.counts.InFlight--
	}
}

// moveTo must be called with mu held.
func (cb *CircuitBreaker) moveTo(next State) {
	prev := cb.counts.State
	if prev == next {
		return
	}

	cb.counts = Counts{State: next, InFlight: cb.counts.InFlight}

	switch next {
	case StateOpen:
		cb.counts.OpenedAt = cb.now()
		cb.counts.InFlight = 0
	case StateClosed:
		cb.counts.InFlight = 0
	}

	if fn := cb.listener; fn != nil {
		go fn(prev, next)
	}
}
