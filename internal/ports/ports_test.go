package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubChecker struct {
	name     string
	err      error
	advisory bool
}

func (s stubChecker) Name() string { return s.name }
func (s stubChecker) Check(context.Context) error { return s.err }

type advisoryChecker struct{ stubChecker }

func (a advisoryChecker) Advisory() bool { return a.advisory }

// blockingChecker waits for its context.
type blockingChecker struct{ name string }

func (b blockingChecker) Name() string { return b.name }

func (b blockingChecker) Check(ctx context.Context) error {
	<-ctx.Done()
	return ctx.Err()
}

func TestRegister_RejectsDuplicateNames(t *testing.T) {
	reg := NewHealthRegistry()

	require.NoError(t, reg.Register(stubChecker{name: "sqlite"}))

	err := reg.Register(stubChecker{name: "sqlite"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "sqlite")

	assert.Len(t, reg.CheckAll(context.Background()).Checks, 1)
}

func TestCheckAll(t *testing.T) {
	storageDown := errors.New("database is locked")
	remoteDown := errors.New("quote source circuit open")

	tests := []struct {
		name       string
		checkers   []HealthChecker
		wantStatus HealthStatus
		wantChecks map[string]HealthStatus
	}{
		{
			name:       "no checkers",
			wantStatus: HealthStatusHealthy,
			wantChecks: map[string]HealthStatus{},
		},
		{
			name: "storage and remote up",
			checkers: []HealthChecker{
				stubChecker{name: "sqlite"},
				advisoryChecker{stubChecker{name: "quote-source", advisory: true}},
			},
			wantStatus: HealthStatusHealthy,
			wantChecks: map[string]HealthStatus{"sqlite": HealthStatusHealthy, "quote-source": HealthStatusHealthy},
		},
		{
			name: "remote down degrades",
			checkers: []HealthChecker{
				stubChecker{name: "sqlite"},
				advisoryChecker{stubChecker{name: "quote-source", err: remoteDown, advisory: true}},
			},
			wantStatus: HealthStatusDegraded,
			wantChecks: map[string]HealthStatus{"sqlite": HealthStatusHealthy, "quote-source": HealthStatusDegraded},
		},
		{
			name: "storage down is unhealthy even with remote down",
			checkers: []HealthChecker{
				stubChecker{name: "sqlite", err: storageDown},
				advisoryChecker{stubChecker{name: "quote-source", err: remoteDown, advisory: true}},
			},
			wantStatus: HealthStatusUnhealthy,
			wantChecks: map[string]HealthStatus{"sqlite": HealthStatusUnhealthy, "quote-source": HealthStatusDegraded},
		},
		{
			name: "advisory false counts as critical",
			checkers: []HealthChecker{
				advisoryChecker{stubChecker{name: "postgres", err: storageDown}},
			},
			wantStatus: HealthStatusUnhealthy,
			wantChecks: map[string]HealthStatus{"postgres": HealthStatusUnhealthy},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, reg.Register(c))
			}

			res := reg.CheckAll(context.Background())

			assert.Equal(t, tt.wantStatus, res.Status)
			assert.False(t, res.Timestamp.IsZero())

			got := make(map[string]HealthStatus, len(res.Checks))
			for name, c := range res.Checks {
				got[name] = c.Status
				if c.Status == HealthStatusHealthy {
					assert.Empty(t, c.Message, name)
				} else {
					assert.NotEmpty(t, c.Message, name)
				}
			}

			assert.Equal(t, tt.wantChecks, got)
		})
	}
}

func TestCheckAll_PerCheckTimeout(t *testing.T) {
	reg := NewHealthRegistry().WithTimeout(20 * time.Millisecond)
	require.NoError(t, reg.Register(blockingChecker{name: "postgres"}))
	require.NoError(t, reg.Register(stubChecker{name: "session"}))

	start := time.Now()
	res := reg.CheckAll(context.Background())

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Contains(t, res.Checks["postgres"].Message, context.DeadlineExceeded.Error())
	assert.Equal(t, HealthStatusHealthy, res.Checks["session"].Status)
}

func TestCheckAll_CallerCancellation(t *testing.T) {
	reg := NewHealthRegistry()
	require.NoError(t, reg.Register(blockingChecker{name: "sqlite"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := reg.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, res.Status)
	assert.Contains(t, res.Checks["sqlite"].Message, "context canceled")
}
