package ports

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds a single health check run by CheckAll.
const DefaultCheckTimeout = 2 * time.Second

// ErrDuplicateChecker is returned by Register for a name already in use.
var ErrDuplicateChecker = errors.New("duplicate health checker")

// HealthChecker reports whether one dependency is usable. The storage drivers
// and the remote quote sources implement it.
type HealthChecker interface {
	// Name identifies the check in readiness responses. Unique per registry.
	Name() string

	// Check returns nil when the dependency is usable.
	Check(ctx context.Context) error
}

// Advisory is implemented by checkers whose failure degrades the service
// without making it unready. Quotes are served from local storage while the
// remote source is down, so the remote sources are advisory.
type Advisory interface {
	Advisory() bool
}

// HealthRegistry runs the registered checks behind /-/ready.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

// HealthStatus is the outcome of a check or of a whole CheckAll run.
type HealthStatus string

// Health statuses, from best to worst.
const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the aggregate of one CheckAll run.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult is the outcome of one checker.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs checks concurrently, each under its own timeout.
// It is safe for concurrent use.
type DefaultHealthRegistry struct {
	timeout time.Duration

	mu       sync.RWMutex
	checkers []HealthChecker
}

// NewHealthRegistry returns an empty registry using DefaultCheckTimeout.
func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{timeout: DefaultCheckTimeout}
}

// WithTimeout changes the per-check timeout.
func (r *DefaultHealthRegistry) WithTimeout(d time.Duration) *DefaultHealthRegistry {
	r.timeout = d
	return r
}

// Register adds checker. Names must be unique.
func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.checkers {
		if existing.Name() == checker.Name() {
			return fmt.Errorf("%w: %s", ErrDuplicateChecker, checker.Name())
		}
	}

	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every check and aggregates them. A failing advisory check
// makes the result degraded; any other failure makes it unhealthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := append([]HealthChecker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Go(func() {
			results[i] = r.run(ctx, checker)
		})
	}

	wg.Wait()

	out := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}

	for i, checker := range checkers {
		res := results[i]
		out.Checks[checker.Name()] = res
		out.Status = worse(out.Status, res.Status)
	}

	return out
}

func (r *DefaultHealthRegistry) run(ctx context.Context, checker HealthChecker) *CheckResult {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)

		defer cancel()
	}

	start := time.Now()
	err := checker.Check(ctx)
	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}

	if err == nil {
		return res
	}

	res.Message = err.Error()
	res.Status = HealthStatusUnhealthy

	if a, ok := checker.(Advisory); ok && a.Advisory() {
		res.Status = HealthStatusDegraded
	}

	return res
}

var severity = map[HealthStatus]int{
	HealthStatusHealthy:   0,
	HealthStatusDegraded:  1,
	HealthStatusUnhealthy: 2,
}

func worse(a, b HealthStatus) HealthStatus {
	if severity[b] > severity[a] {
		return b
	}

	return a
}
