package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "quotebook"

// Sync outcomes recorded by QuoteMetrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// QuoteMetrics exposes the state of the quote store on a Prometheus registry.
type QuoteMetrics struct {
	quotes      prometheus.Gauge
	categories  prometheus.Gauge
	syncs       *prometheus.CounterVec
	syncedAdded prometheus.Counter
	posts       *prometheus.CounterVec
	imports     prometheus.Counter
	circuit     *prometheus.GaugeVec
}

// NewQuoteMetrics creates the quote metrics and registers them on reg.
// A nil reg selects the default registerer served by promhttp.Handler.
func NewQuoteMetrics(reg prometheus.Registerer) (*QuoteMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &QuoteMetrics{
		quotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "quotes",
			Help:      "Number of quotes in the store.",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "categories",
			Help:      "Number of distinct quote categories.",
		}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sync_cycles_total",
			Help:      "Reconciliation cycles by outcome.",
		}, []string{"outcome"}),
		syncedAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sync_added_quotes_total",
			Help:      "Quotes added to the store by reconciliation.",
		}),
		posts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "post_attempts_total",
			Help:      "Outbound quote submissions by outcome.",
		}, []string{"outcome"}),
		imports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "imports_total",
			Help:      "Successful quote imports.",
		}),
		circuit: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "remote_circuit_state",
			Help:      "Circuit breaker state per remote: 0 closed, 1 open, 2 half-open.",
		}, []string{"downstream"}),
	}

	for _, c := range []prometheus.Collector{m.quotes, m.categories, m.syncs, m.syncedAdded, m.posts, m.imports, m.circuit} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering quote metrics: %w", err)
		}
	}

	return m, nil
}

// SetStoreSize records the current store size.
func (m *QuoteMetrics) SetStoreSize(quotes, categories int) {
	m.quotes.Set(float64(quotes))
	m.categories.Set(float64(categories))
}

// RecordSync counts a reconciliation cycle and the quotes it added.
func (m *QuoteMetrics) RecordSync(ok bool, added int) {
	m.syncs.WithLabelValues(outcome(ok)).Inc()

	if added > 0 {
		m.syncedAdded.Add(float64(added))
	}
}

// RecordPost counts an outbound submission.
func (m *QuoteMetrics) RecordPost(ok bool) {
	m.posts.WithLabelValues(outcome(ok)).Inc()
}

// RecordImport counts a successful import.
func (m *QuoteMetrics) RecordImport() {
	m.imports.Inc()
}

// SetCircuitState records the breaker state code of a remote.
func (m *QuoteMetrics) SetCircuitState(downstream string, state int) {
	m.circuit.WithLabelValues(downstream).Set(float64(state))
}

func outcome(ok bool) string {
	if ok {
		return OutcomeSuccess
	}

	return OutcomeFailure
}
