package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the Prometheus instruments used by the service. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Turns              *prometheus.CounterVec
	ConversationsStart *prometheus.CounterVec
	RetrievalQueries   *prometheus.CounterVec
	ContextBlockChars  prometheus.Histogram
	GenerationLatency  *prometheus.HistogramVec
	DocumentsIngested  *prometheus.CounterVec
}

// NewMetrics registers all instruments on a fresh registry under namespace.
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Turns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "intake_turns_total",
			Help:      "Processed intake turns by outcome.",
		}, []string{"outcome"}),
		ConversationsStart: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_starts_total",
			Help:      "Conversation start requests by result (created or resumed).",
		}, []string{"result"}),
		RetrievalQueries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_queries_total",
			Help:      "Knowledge-base queries by status.",
		}, []string{"status"}),
		ContextBlockChars: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "context_block_chars",
			Help:      "Size of assembled grounding context in characters.",
			Buckets:   []float64{0, 500, 1000, 2500, 5000, 10000, 25000, 50000},
		}),
		GenerationLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_latency_seconds",
			Help:      "Text generation latency by provider and status.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}, []string{"provider", "status"}),
		DocumentsIngested: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Knowledge-base documents ingested by type.",
		}, []string{"type"}),
	}
}

// ObserveTurn counts a processed turn. outcome is "question", "summary" or "error".
func (m *Metrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(outcome).Inc()
}

// ObserveStart counts a start request.
func (m *Metrics) ObserveStart(resumed bool) {
	if m == nil {
		return
	}
	result := "created"
	if resumed {
		result = "resumed"
	}
	m.ConversationsStart.WithLabelValues(result).Inc()
}

// ObserveQuery counts a knowledge-base query.
func (m *Metrics) ObserveQuery(err error) {
	if m == nil {
		return
	}
	m.RetrievalQueries.WithLabelValues(status(err)).Inc()
}

// ObserveContext records the size of an assembled context block.
func (m *Metrics) ObserveContext(chars int) {
	if m == nil {
		return
	}
	m.ContextBlockChars.Observe(float64(chars))
}

// ObserveGeneration records one generation call.
func (m *Metrics) ObserveGeneration(provider string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.GenerationLatency.WithLabelValues(provider, status(err)).Observe(elapsed.Seconds())
}

// ObserveIngest counts ingested documents.
func (m *Metrics) ObserveIngest(docType string, n int) {
	if m == nil {
		return
	}
	m.DocumentsIngested.WithLabelValues(docType).Add(float64(n))
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
