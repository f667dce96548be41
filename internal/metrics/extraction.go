package metrics

import "github.com/prometheus/client_golang/prometheus"

// Extraction Prometheus metrics.
var (
	ExtractionRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "extraction_requests_total",
			Help:      "Total number of interest extraction requests",
		},
		[]string{"provider", "model", "status"},
	)

	ExtractionRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "affinity",
			Name:      "extraction_request_duration_seconds",
			Help:      "Interest extraction request duration in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"provider", "model"},
	)

	ExtractionTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "extraction_tokens_total",
			Help:      "Total extraction tokens consumed",
		},
		[]string{"provider", "model", "type"},
	)

	ExtractionErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "affinity",
			Name:      "extraction_errors_total",
			Help:      "Total extraction errors",
		},
		[]string{"provider", "model", "error_type"},
	)
)

var extMetricsRegistered bool

// RegisterExtractionMetrics registers Prometheus extraction metrics. Must be called once from main.
func RegisterExtractionMetrics() {
	if extMetricsRegistered {
		return
	}
	prometheus.MustRegister(ExtractionRequestsTotal)
	prometheus.MustRegister(ExtractionRequestDuration)
	prometheus.MustRegister(ExtractionTokensTotal)
	prometheus.MustRegister(ExtractionErrorsTotal)
	extMetricsRegistered = true
}
