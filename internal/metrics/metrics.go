package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "codewinder"

// Metrics holds the collectors updated by the aggregation coordinator.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	contests      *prometheus.GaugeVec
	lastSuccessTS *prometheus.GaugeVec
	aggregated    prometheus.Gauge
	aggregateDur  prometheus.Summary
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_requests_total",
			Help:      "Contest source fetches by platform and outcome",
		}, []string{"platform", "status"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      "Time spent fetching one contest source",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 10},
		}, []string{"platform"}),
		contests: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_contests",
			Help:      "Contests contributed by a source in the last aggregation",
		}, []string{"platform"}),
		lastSuccessTS: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "source_last_success_timestamp_seconds",
			Help:      "Unix timestamp of the last successful fetch per source",
		}, []string{"platform"}),
		aggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "aggregate_contests",
			Help:      "Contests returned by the last aggregation",
		}),
		aggregateDur: prometheus.NewSummary(prometheus.SummaryOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Wall time of one aggregation across all sources",
		}),
	}
	reg.MustRegister(
		m.requests, m.fetchDuration, m.contests,
		m.lastSuccessTS, m.aggregated, m.aggregateDur,
	)
	return m
}

// ObserveSource records the outcome of one adapter call.
func (m *Metrics) ObserveSource(platform, status string, count int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(platform, status).Inc()
	m.fetchDuration.WithLabelValues(platform).Observe(elapsed.Seconds())
	m.contests.WithLabelValues(platform).Set(float64(count))
	if status == "ok" {
		m.lastSuccessTS.WithLabelValues(platform).Set(float64(time.Now().Unix()))
	}
}

// ObserveAggregate records one full aggregation.
func (m *Metrics) ObserveAggregate(count int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.aggregated.Set(float64(count))
	m.aggregateDur.Observe(elapsed.Seconds())
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
