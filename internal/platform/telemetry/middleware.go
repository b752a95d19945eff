package telemetry

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotebook/internal/platform/telemetry"

	// HeaderTraceID carries the trace id back to the caller.
	HeaderTraceID = "X-Trace-ID"

	probePrefix = "/-/"
)

// Tracing starts a server span per request. Probe endpoints are not traced.
func Tracing(service string) gin.HandlerFunc {
	return otelgin.Middleware(service, otelgin.WithFilter(func(r *http.Request) bool {
		return !strings.HasPrefix(r.URL.Path, probePrefix)
	}))
}

// serverMetrics are the otel instruments recorded per request.
type serverMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	duration, err := meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP server requests."),
		metric.WithUnit("s"))
	if err != nil {
		return nil, err
	}

	requests, err := meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Completed HTTP server requests."))
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("HTTP server requests in progress."))
	if err != nil {
		return nil, err
	}

	return &serverMetrics{duration: duration, requests: requests, inFlight: inFlight}, nil
}

// Metrics records request count, duration and in-flight requests against the
// global meter, labelled by route rather than raw path. It also sets
// X-Trace-ID when a span is active.
func Metrics() gin.HandlerFunc {
	m, err := newServerMetrics(otel.Meter(instrumentationName))
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if m == nil {
			c.Next()
			return
		}

		route := attribute.String("http.route", c.FullPath())
		method := attribute.String("http.request.method", c.Request.Method)
		live := metric.WithAttributes(method, route)

		m.inFlight.Add(ctx, 1, live)
		start := time.Now()

		c.Next()

		m.inFlight.Add(ctx, -1, live)

		done := metric.WithAttributes(method, route, attribute.Int("http.response.status_code", c.Writer.Status()))
		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.requests.Add(ctx, 1, done)
	}
}
