package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Telemetry aggregates pipeline counters exposed on /metrics. Each instance
// owns its registry so tests can build as many as they need.
type Telemetry struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	intentTotal     *prometheus.CounterVec
	searchFailures  prometheus.Counter
	fetchFailures   prometheus.Counter
	llmFallbacks    prometheus.Counter
	requestDuration prometheus.Histogram
}

func New() *Telemetry {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)
	return &Telemetry{
		registry: registry,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adhikar_requests_total",
			Help: "Chat requests by outcome.",
		}, []string{"outcome"}),
		intentTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "adhikar_intent_total",
			Help: "Classified intents.",
		}, []string{"intent"}),
		searchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "adhikar_search_failures_total",
			Help: "Individual search queries that failed.",
		}),
		fetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "adhikar_fetch_failures_total",
			Help: "Individual content fetches that failed or came back empty.",
		}),
		llmFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "adhikar_llm_fallbacks_total",
			Help: "LLM calls recovered with a typed fallback value.",
		}),
		requestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "adhikar_request_duration_seconds",
			Help:    "End-to-end chat pipeline latency.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// Registry exposes the underlying registry for the /metrics handler.
func (t *Telemetry) Registry() *prometheus.Registry {
	return t.registry
}

func (t *Telemetry) RecordRequest(outcome string, d time.Duration) {
	if t == nil {
		return
	}
	t.requestsTotal.WithLabelValues(outcome).Inc()
	t.requestDuration.Observe(d.Seconds())
}

func (t *Telemetry) RecordIntent(intent string) {
	if t == nil {
		return
	}
	t.intentTotal.WithLabelValues(intent).Inc()
}

func (t *Telemetry) RecordSearchFailure() {
	if t == nil {
		return
	}
	t.searchFailures.Inc()
}

func (t *Telemetry) RecordFetchFailure() {
	if t == nil {
		return
	}
	t.fetchFailures.Inc()
}

func (t *Telemetry) RecordLLMFallback() {
	if t == nil {
		return
	}
	t.llmFallbacks.Inc()
}
