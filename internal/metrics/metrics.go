// Package metrics declares the panel's Prometheus collectors on the default
// registry; /metrics is served by promhttp.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tropical_http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "path", "status"})

	ResponseTime = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tropical_http_request_duration_seconds",
		Help:    "HTTP request duration.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	PropagationRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tropical_propagation_runs_total",
		Help: "Completed server change propagations.",
	})

	PropagationDevices = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tropical_propagation_devices_total",
		Help: "Devices rewritten by propagations.",
	})

	PropagationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tropical_propagation_failures_total",
		Help: "Propagations aborted by a store failure.",
	})
)

// RecordRequest feeds the HTTP collectors from the metrics middleware.
func RecordRequest(method, path string, status int, seconds float64) {
	RequestCounter.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	ResponseTime.WithLabelValues(method, path).Observe(seconds)
}
