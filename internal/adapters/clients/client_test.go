package clients

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "quote-source",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

// statusSequence answers with the given statuses in order, repeating the last one.
func statusSequence(calls *atomic.Int32, statuses ...int) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		n := int(calls.Add(1))
		w.WriteHeader(statuses[min(n, len(statuses))-1])
	}
}

func newTestClient(t *testing.T, url string, mutate func(*Config)) *Client {
	t.Helper()

	cfg := defaultConfig()
	cfg.BaseURL = url

	if mutate != nil {
		mutate(cfg)
	}

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

// closeBody is a test helper that closes the response body and fails the test on error.
func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")

	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err = New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := &Config{ServiceName: "quote-source", BaseURL: "https://jsonplaceholder.typicode.com/"}

	client, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://jsonplaceholder.typicode.com", client.baseURL)
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, 1, cfg.Retry.MaxAttempts, "at least one attempt is always made")

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, defaultMaxIdleConns, transport.MaxIdleConns)
	assert.Equal(t, defaultMaxIdleConnsPerHost, transport.MaxIdleConnsPerHost)
	assert.Equal(t, defaultIdleConnTimeout, transport.IdleConnTimeout)
}

func TestNew_TransportFromConfig(t *testing.T) {
	client := newTestClient(t, "https://jsonplaceholder.typicode.com", func(cfg *Config) {
		cfg.Transport = config.TransportConfig{
			MaxIdleConns:        7,
			MaxIdleConnsPerHost: 3,
			IdleConnTimeout:     time.Minute,
		}
	})

	transport, ok := client.http.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 7, transport.MaxIdleConns)
	assert.Equal(t, 3, transport.MaxIdleConnsPerHost)
	assert.Equal(t, time.Minute, transport.IdleConnTimeout)
}

func TestClient_HeaderPropagation(t *testing.T) {
	var got http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.UserAgent = "quotebook/test"
	})

	ctx := middleware.ContextWithRequestID(context.Background(), "test-request-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "test-correlation-456")

	resp, err := client.Get(ctx, "/posts")
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "test-request-123", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "test-correlation-456", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quotebook/test", got.Get("User-Agent"))
}

func TestClient_Retries(t *testing.T) {
	tests := []struct {
		name         string
		statuses     []int
		maxAttempts  int
		wantStatus   int
		wantErr      error
		wantAttempts int32
	}{
		{
			name:         "recovers after server errors",
			statuses:     []int{http.StatusInternalServerError, http.StatusBadGateway, http.StatusOK},
			maxAttempts:  3,
			wantStatus:   http.StatusOK,
			wantAttempts: 3,
		},
		{
			name:         "client error is not retried",
			statuses:     []int{http.StatusBadRequest},
			maxAttempts:  3,
			wantStatus:   http.StatusBadRequest,
			wantAttempts: 1,
		},
		{
			name:         "not found is not retried",
			statuses:     []int{http.StatusNotFound},
			maxAttempts:  3,
			wantStatus:   http.StatusNotFound,
			wantAttempts: 1,
		},
		{
			name:         "gives up after max attempts",
			statuses:     []int{http.StatusServiceUnavailable},
			maxAttempts:  3,
			wantErr:      ErrMaxRetriesExceeded,
			wantAttempts: 3,
		},
		{
			name:         "single attempt",
			statuses:     []int{http.StatusServiceUnavailable, http.StatusOK},
			maxAttempts:  1,
			wantErr:      ErrMaxRetriesExceeded,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			server := httptest.NewServer(statusSequence(&calls, tt.statuses...))
			defer server.Close()

			client := newTestClient(t, server.URL, func(cfg *Config) {
				cfg.Retry.MaxAttempts = tt.maxAttempts
			})

			resp, err := client.Get(context.Background(), "/posts")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
				defer closeBody(t, resp)
				assert.Equal(t, tt.wantStatus, resp.StatusCode)
			}

			assert.Equal(t, tt.wantAttempts, calls.Load())
		})
	}
}

func TestClient_RetriesExpiredAttemptTimeout(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			time.Sleep(200 * time.Millisecond)
		}

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.Retry.MaxAttempts = 2
		cfg.Retry.InitialInterval = time.Millisecond
	})

	resp, err := client.Get(context.Background(), "/posts")
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_AttemptTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.Retry.MaxAttempts = 1
	})

	_, err := client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestClient_ContextCancellation(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/posts")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(1), calls.Load(), "a cancelled request is not retried")
}

func TestClient_CircuitBreaker(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(statusSequence(&calls, http.StatusServiceUnavailable))
	defer server.Close()

	transitions := make(chan State, 4)

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
		cfg.OnCircuitChange = func(_, to State) { transitions <- to }
	})

	_, err := client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.Equal(t, StateClosed, client.CircuitState())

	_, err = client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.Equal(t, StateOpen, client.CircuitState())

	before := calls.Load()

	_, err = client.Get(context.Background(), "/posts")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "request should be short-circuited when circuit is open")

	select {
	case to := <-transitions:
		assert.Equal(t, StateOpen, to)
	case <-time.After(time.Second):
		t.Fatal("circuit change hook was not called")
	}
}

func TestClient_Post(t *testing.T) {
	var (
		receivedBody        string
		receivedContentType string
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedContentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		receivedBody = string(body)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	resp, err := client.Post(context.Background(), "/posts", strings.NewReader(`{"title": "hello"}`))
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "application/json", receivedContentType)
	assert.Equal(t, `{"title": "hello"}`, receivedBody)
}

func TestClient_PostJSONReplaysBodyOnRetry(t *testing.T) {
	var (
		calls  atomic.Int32
		bodies = make(chan string, 2)
	)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		bodies <- string(body)

		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 2
		cfg.Retry.InitialInterval = time.Millisecond
	})

	resp, err := client.PostJSON(context.Background(), "/posts", map[string]string{"title": "hello"})
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.JSONEq(t, `{"title":"hello"}`, <-bodies)
	assert.JSONEq(t, `{"title":"hello"}`, <-bodies, "retry must resend the full body")
}

func TestClient_PostJSONOnceSendsASingleAttempt(t *testing.T) {
	tests := []struct {
		name     string
		statuses []int
		wantErr  bool
	}{
		{name: "server error is not resent", statuses: []int{http.StatusServiceUnavailable, http.StatusCreated}, wantErr: true},
		{name: "success", statuses: []int{http.StatusCreated}},
		{name: "client error passes through", statuses: []int{http.StatusBadRequest}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32

			server := httptest.NewServer(statusSequence(&calls, tt.statuses...))
			defer server.Close()

			client := newTestClient(t, server.URL, func(cfg *Config) {
				cfg.Retry.InitialInterval = time.Millisecond
			})

			resp, err := client.PostJSONOnce(context.Background(), "/posts", map[string]string{"title": "hello"})

			assert.Equal(t, int32(1), calls.Load())

			if tt.wantErr {
				require.ErrorIs(t, err, ErrMaxRetriesExceeded)
				assert.Nil(t, resp)

				return
			}

			require.NoError(t, err)
			defer closeBody(t, resp)

			assert.Equal(t, tt.statuses[0], resp.StatusCode)
		})
	}
}

func TestClient_DoOnceRespectsOpenCircuit(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(statusSequence(&calls, http.StatusInternalServerError))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Circuit.MaxFailures = 1
	})

	_, err := client.PostJSONOnce(context.Background(), "/posts", map[string]string{})
	require.Error(t, err)
	assert.Equal(t, StateOpen, client.CircuitState())

	_, err = client.PostJSONOnce(context.Background(), "/posts", map[string]string{})
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRewindBody_StreamingBodyCannotReplay(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://example.invalid", io.NopCloser(strings.NewReader("x")))
	require.NoError(t, err)

	req.GetBody = nil

	require.Error(t, rewindBody(req))
}

func TestClient_BuildURL(t *testing.T) {
	tests := []struct {
		base string
		path string
		want string
	}{
		{"https://jsonplaceholder.typicode.com", "/posts", "https://jsonplaceholder.typicode.com/posts"},
		{"https://jsonplaceholder.typicode.com", "posts", "https://jsonplaceholder.typicode.com/posts"},
		{"https://jsonplaceholder.typicode.com/", "/posts", "https://jsonplaceholder.typicode.com/posts"},
		{"https://example.com/api/", "posts/1", "https://example.com/api/posts/1"},
	}

	for _, tt := range tests {
		t.Run(tt.base+" "+tt.path, func(t *testing.T) {
			client := newTestClient(t, tt.base, nil)
			assert.Equal(t, tt.want, client.buildURL(tt.path))
		})
	}
}

func TestClient_NewBackOff(t *testing.T) {
	client := newTestClient(t, "https://jsonplaceholder.typicode.com", func(cfg *Config) {
		cfg.Retry.InitialInterval = 100 * time.Millisecond
		cfg.Retry.MaxInterval = time.Second
		cfg.Retry.Multiplier = 2.0
		cfg.Retry.JitterFactor = 0
	})

	schedule := client.newBackOff()

	assert.Equal(t, 100*time.Millisecond, schedule.NextBackOff())
	assert.Equal(t, 200*time.Millisecond, schedule.NextBackOff())
	assert.Equal(t, 400*time.Millisecond, schedule.NextBackOff())

	for range 10 {
		assert.LessOrEqual(t, schedule.NextBackOff(), time.Second, "capped at the max interval")
	}
}

func TestClient_NewBackOffJitter(t *testing.T) {
	client := newTestClient(t, "https://jsonplaceholder.typicode.com", func(cfg *Config) {
		cfg.Retry.InitialInterval = 100 * time.Millisecond
		cfg.Retry.MaxInterval = time.Second
		cfg.Retry.Multiplier = 2.0
		cfg.Retry.JitterFactor = 0.25
	})

	first := client.newBackOff().NextBackOff()

	assert.GreaterOrEqual(t, first, 75*time.Millisecond)
	assert.LessOrEqual(t, first, 125*time.Millisecond)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", statusClass(http.StatusCreated))
	assert.Equal(t, "4xx", statusClass(http.StatusNotFound))
	assert.Equal(t, "5xx", statusClass(http.StatusServiceUnavailable))
}

// testNetError is a mock net.Error for testing.
type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"net op error connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}
