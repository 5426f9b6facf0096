package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "studyspaces"

// Metrics holds Prometheus metrics for data-source traffic and lookups.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// SourceRequestsTotal counts data-source calls by endpoint and outcome.
	SourceRequestsTotal *prometheus.CounterVec

	// SourceRequestDuration is the latency of data-source calls, retries included.
	SourceRequestDuration *prometheus.HistogramVec

	// SourceRetriesTotal counts retried data-source calls.
	SourceRetriesTotal prometheus.Counter

	// CacheLookupsTotal counts building-list cache lookups by result.
	CacheLookupsTotal *prometheus.CounterVec

	// LookupsTotal counts front-end operations by kind and outcome.
	LookupsTotal *prometheus.CounterVec
}

// New creates metrics registered on reg.
func New(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	factory := promauto.With(reg)

	return &Metrics{
		SourceRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_requests_total",
				Help:      "Total number of scheduling data source requests",
			},
			[]string{"endpoint", "outcome"},
		),

		SourceRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "source_request_duration_seconds",
				Help:      "Time to complete a scheduling data source request",
				Buckets:   []float64{.05, .1, .25, .5, 1, 2, 5, 10},
			},
			[]string{"endpoint"},
		),

		SourceRetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "source_retries_total",
				Help:      "Total number of retried data source requests",
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "Building list cache lookups by result",
			},
			[]string{"result"},
		),

		LookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Lookups by kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// ObserveRequest records one finished data-source request.
func (m *Metrics) ObserveRequest(endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	m.SourceRequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// IncRetry records a retried request.
func (m *Metrics) IncRetry() {
	if m == nil {
		return
	}
	m.SourceRetriesTotal.Inc()
}

// IncCache records a cache hit or miss.
func (m *Metrics) IncCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// IncLookup records a lookup outcome.
func (m *Metrics) IncLookup(kind, outcome string) {
	if m == nil {
		return
	}
	m.LookupsTotal.WithLabelValues(kind, outcome).Inc()
}

// Push sends everything gathered by g to a Prometheus Pushgateway.
func Push(ctx context.Context, gatewayURL, job string, g prometheus.Gatherer) error {
	if err := push.New(gatewayURL, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
