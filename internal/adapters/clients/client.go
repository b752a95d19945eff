package clients

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotebook/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotebook/internal/platform/config"
	"github.com/jsamuelsen/quotebook/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotebook/internal/adapters/clients"

	defaultTimeout             = 30 * time.Second
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Result labels recorded on the request metrics.
const (
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "context_canceled"
	resultError       = "error"
)

// Config describes one remote. Zero values fall back to defaults except
// ServiceName, which is required.
type Config struct {
	// BaseURL is joined with every request path.
	BaseURL     string
	ServiceName string

	// Timeout bounds a single attempt. Retries and backoff come on top.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	UserAgent string

	// OnCircuitChange is told about every breaker transition, after it was logged.
	OnCircuitChange func(from, to State)

	Logger *slog.Logger
}

// Client is the instrumented HTTP client used to talk to the quote source.
// Every request goes through the circuit breaker, is retried on transport
// failures and 5xx answers, and is traced and counted with OpenTelemetry.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker
	tracer      trace.Tracer
	metrics     instruments
}

// instruments are the otel metrics recorded once per Do call.
type instruments struct {
	duration metric.Float64Histogram
	total    metric.Int64Counter
}

func newInstruments(meter metric.Meter) (instruments, error) {
	duration, err := meter.Float64Histogram("http.client.request.duration",
		metric.WithDescription("Duration of outbound requests including retries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("duration histogram: %w", err)
	}

	total, err := meter.Int64Counter("http.client.request.total",
		metric.WithDescription("Outbound requests by result"),
	)
	if err != nil {
		return instruments{}, fmt.Errorf("request counter: %w", err)
	}

	return instruments{duration: duration, total: total}, nil
}

// New builds a Client for cfg. cfg is completed with defaults in place.
func New(cfg *Config) (*Client, error) {
	switch {
	case cfg == nil:
		return nil, errors.New("config is required")
	case cfg.ServiceName == "":
		return nil, errors.New("service name is required")
	}

	cfg.Timeout = cmp.Or(max(cfg.Timeout, 0), defaultTimeout)
	cfg.Retry.MaxAttempts = max(cfg.Retry.MaxAttempts, 1)

	logger := cmp.Or(cfg.Logger, slog.Default()).With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	metrics, err := newInstruments(otel.Meter(instrumentationName))
	if err != nil {
		return nil, err
	}

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)

		if cfg.OnCircuitChange != nil {
			cfg.OnCircuitChange(from, to)
		}
	})

	return &Client{
		http:        &http.Client{Timeout: cfg.Timeout, Transport: newTransport(cfg.Transport)},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName: cfg.ServiceName,
		cfg:         cfg,
		logger:      logger,
		cb:          cb,
		tracer:      otel.Tracer(instrumentationName),
		metrics:     metrics,
	}, nil
}

func newTransport(cfg config.TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        cmp.Or(max(cfg.MaxIdleConns, 0), defaultMaxIdleConns),
		MaxIdleConnsPerHost: cmp.Or(max(cfg.MaxIdleConnsPerHost, 0), defaultMaxIdleConnsPerHost),
		IdleConnTimeout:     cmp.Or(max(cfg.IdleConnTimeout, 0), defaultIdleConnTimeout),
	}
}

// newBackOff builds the per-request retry schedule.
func (c *Client) newBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.Retry.InitialInterval
	b.MaxInterval = c.cfg.Retry.MaxInterval
	b.Multiplier = c.cfg.Retry.Multiplier
	b.RandomizationFactor = c.cfg.Retry.JitterFactor

	if b.Multiplier < 1 {
		b.Multiplier = 1
	}

	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}

	b.Reset()

	return b
}

// Do executes req with the circuit breaker, retries, tracing and logging.
//
// Requests with a body are retried only when req.GetBody is set, which
// http.NewRequest does for in-memory readers; the body is replayed per attempt.
// A response with status 5xx on the last attempt is reported as an error.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.do(ctx, req, c.cfg.Retry.MaxAttempts)
}

// DoOnce is Do without retries: req is sent at most once, still guarded by
// the circuit breaker. Use it for calls that must not be repeated, such as
// a POST that creates a remote record.
func (c *Client) DoOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	return c.do(ctx, req, 1)
}

func (c *Client) do(ctx context.Context, req *http.Request, attempts int) (*http.Response, error) {
	start := time.Now()
	logger := logging.FromContext(ctx).With(
		slog.String("downstream", c.serviceName),
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
	)

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, time.Since(start), resultCircuitOpen)
		logger.Warn("request blocked by circuit breaker")

		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("HTTP %s %s", req.Method, c.serviceName),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", req.Method),
			attribute.String("http.url", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.attempt(ctx, req, attempts, logger)
	duration := time.Since(start)

	switch {
	case err != nil && ctx.Err() != nil:
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, resultCanceled)

		return nil, err

	case err != nil:
		c.cb.RecordFailure()
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, req.Method, 0, duration, resultError)
		logger.Error("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

		return nil, fmt.Errorf("%w: %w", ErrMaxRetriesExceeded, err)
	}

	c.cb.RecordSuccess()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, "HTTP "+strconv.Itoa(resp.StatusCode))
	}

	c.recordMetrics(ctx, req.Method, resp.StatusCode, duration, statusClass(resp.StatusCode))
	logger.Debug("request completed",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", duration),
	)

	return resp, nil
}

// attempt sends req up to attempts times. Transport failures, expired
// per-attempt timeouts and 5xx answers are retried; 4xx answers are returned
// to the caller. Cancellation of ctx ends the loop at once.
func (c *Client) attempt(ctx context.Context, req *http.Request, attempts int, logger *slog.Logger) (*http.Response, error) {
	schedule := c.newBackOff()

	var lastErr error

	for n := 1; n <= attempts; n++ {
		if n > 1 {
			wait := schedule.NextBackOff()
			logger.Debug("retrying request",
				slog.Int("attempt", n),
				slog.Duration("backoff", wait),
				slog.Any("previous_error", lastErr),
			)

			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}

			if err := rewindBody(req); err != nil {
				return nil, err
			}
		}

		resp, err := c.http.Do(req.WithContext(ctx))

		switch {
		case err != nil && ctx.Err() != nil:
			return nil, ctx.Err()
		case err != nil && !isRetryableError(err) && !isTimeout(err):
			return nil, err
		case err != nil:
			lastErr = err
		case resp.StatusCode >= http.StatusInternalServerError:
			drain(resp, logger)
			lastErr = fmt.Errorf("server error: %d", resp.StatusCode)
		default:
			return resp, nil
		}
	}

	return nil, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// drain discards and closes a response that will not reach the caller.
func drain(resp *http.Response, logger *slog.Logger) {
	_, _ = io.Copy(io.Discard, resp.Body)

	if err := resp.Body.Close(); err != nil {
		logger.Debug("failed to close response body", slog.Any("error", err))
	}
}

// rewindBody restores a consumed request body before a retry.
func rewindBody(req *http.Request) error {
	if req.Body == nil || req.Body == http.NoBody {
		return nil
	}

	if req.GetBody == nil {
		return errors.New("request body cannot be replayed for retry")
	}

	body, err := req.GetBody()
	if err != nil {
		return fmt.Errorf("replaying request body: %w", err)
	}

	req.Body = body

	return nil
}

// Get performs an HTTP GET request.
func (c *Client) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	return c.Do(ctx, req)
}

// Post performs an HTTP POST request with a JSON content type.
func (c *Client) Post(ctx context.Context, path string, body io.Reader) (*http.Response, error) {
	req, err := c.newPost(ctx, path, body)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req)
}

// PostJSON marshals v and POSTs it. The body is replayable, so the request is retried like a GET.
func (c *Client) PostJSON(ctx context.Context, path string, v any) (*http.Response, error) {
	req, err := c.newJSONPost(ctx, path, v)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, req)
}

// PostJSONOnce marshals v and POSTs it exactly once. A failed post is not resent.
func (c *Client) PostJSONOnce(ctx context.Context, path string, v any) (*http.Response, error) {
	req, err := c.newJSONPost(ctx, path, v)
	if err != nil {
		return nil, err
	}

	return c.DoOnce(ctx, req)
}

func (c *Client) newPost(ctx context.Context, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL(path), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return req, nil
}

func (c *Client) newJSONPost(ctx context.Context, path string, v any) (*http.Request, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	return c.newPost(ctx, path, bytes.NewReader(payload))
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// injectHeaders adds request ID, correlation ID, and user agent to the request.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// buildURL joins the base URL and path with exactly one slash.
func (c *Client) buildURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	opt := metric.WithAttributes(attrs...)
	c.metrics.duration.Record(ctx, duration.Seconds(), opt)
	c.metrics.total.Add(ctx, 1, opt)
}

// statusClass renders a status code as its class, e.g. 404 as "4xx".
func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// isRetryableError reports whether a transport error is worth another attempt:
// timeouts and connection-level failures are, cancellation is not.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

func isTimeout(err error) bool {
	var netErr net.Error

	return errors.As(err, &netErr) && netErr.Timeout()
}
