package metrics

import "github.com/prometheus/client_golang/prometheus"

// Matching and catalog Prometheus metrics.
var (
	MatchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "match_requests_total",
			Help:      "Total number of tag matching requests",
		},
		[]string{"operation"},
	)

	MatchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "affinity",
			Name:      "match_duration_seconds",
			Help:      "Tag matching duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	MatchResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "match_results_total",
			Help:      "Total accepted tag matches returned",
		},
		[]string{"operation"},
	)

	CatalogTags = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "affinity",
			Name:      "catalog_tags",
			Help:      "Number of tags in the currently published catalog",
		},
	)

	CatalogRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "catalog_refresh_total",
			Help:      "Catalog refresh attempts",
		},
		[]string{"status"},
	)
)

var matchMetricsRegistered bool

// RegisterMatchingMetrics registers Prometheus matching metrics. Must be called once from main.
func RegisterMatchingMetrics() {
	if matchMetricsRegistered {
		return
	}
	prometheus.MustRegister(MatchRequestsTotal)
	prometheus.MustRegister(MatchDuration)
	prometheus.MustRegister(MatchResultsTotal)
	prometheus.MustRegister(CatalogTags)
	prometheus.MustRegister(CatalogRefreshTotal)
	matchMetricsRegistered = true
}
