package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "medscraper"

// Metrics счётчики движка. Nil-указатель допустим: все методы становятся no-op.
type Metrics struct {
	attempts       *prometheus.CounterVec
	outcomes       *prometheus.CounterVec
	availability   *prometheus.CounterVec
	selectorErrors prometheus.Counter
	batchDuration  prometheus.Histogram
	batchSources   prometheus.Histogram
}

// NewMetrics регистрирует метрики в reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_attempts_total",
			Help:      "Single fetch+extract attempts by source and result.",
		}, []string{"source", "result"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scrape_outcomes_total",
			Help:      "Terminal per-source outcomes by source and result.",
		}, []string{"source", "result"}),
		availability: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "availability_lookups_total",
			Help:      "Availability cache lookups by result (hit or miss).",
		}, []string{"result"}),
		selectorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selector_errors_total",
			Help:      "Selectors skipped because they failed to compile.",
		}),
		batchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Wall time of a batch scrape.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		batchSources: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_sources",
			Help:      "Number of qualifying sources per batch.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
	}

	reg.MustRegister(m.attempts, m.outcomes, m.availability, m.selectorErrors, m.batchDuration, m.batchSources)
	return m
}

func (m *Metrics) ObserveAttempt(source, result string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveOutcome(source, result string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(source, result).Inc()
}

func (m *Metrics) ObserveAvailability(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.availability.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveSelectorError() {
	if m == nil {
		return
	}
	m.selectorErrors.Inc()
}

func (m *Metrics) ObserveBatch(sources int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.batchSources.Observe(float64(sources))
	m.batchDuration.Observe(elapsed.Seconds())
}

// Handler отдаёт метрики в формате Prometheus
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
