package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one registry. Each test builds its own
// against a fresh registry so registrations never collide.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	AnalysesTotal       *prometheus.CounterVec
	AnalysisDuration    *prometheus.HistogramVec
	CacheLookupsTotal   *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		AnalysesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caption_analyses_total",
				Help: "Total number of upload pipeline runs.",
			},
			[]string{"status", "error_type"}, // status: success, failure
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "caption_analysis_duration_seconds",
				Help:    "Duration of remote image analysis calls.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider"},
		),
		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "caption_cache_lookups_total",
				Help: "Caption cache lookups by result.",
			},
			[]string{"result"}, // hit, miss, error
		),
	}
}

func (m *Metrics) ObserveAnalysisSuccess() {
	m.AnalysesTotal.WithLabelValues("success", "").Inc()
}

func (m *Metrics) ObserveAnalysisFailure(errorType string) {
	m.AnalysesTotal.WithLabelValues("failure", errorType).Inc()
}

func (m *Metrics) ObserveCacheLookup(result string) {
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}
