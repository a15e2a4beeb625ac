// Package observability holds Prometheus instrumentation for the HTTP
// gateway.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	requestCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Requests handled, by resource, action, route variant and status.",
	}, []string{"resource", "action", "variant", "status"})
	requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sport_api",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Request handling latency, by resource and action.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"resource", "action"})
	unmatchedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "http",
		Name:      "unmatched_requests_total",
		Help:      "Requests that matched neither a canonical route nor a legacy mapping.",
	})
)

func init() {
	prometheus.MustRegister(requestCounter, requestDuration, unmatchedCounter)
}

// ObserveRequest records one dispatched request.
func ObserveRequest(resource, action, variant, status string, elapsed time.Duration) {
	requestCounter.WithLabelValues(resource, action, variant, status).Inc()
	requestDuration.WithLabelValues(resource, action).Observe(elapsed.Seconds())
}

// ObserveUnmatched records a request that resolved to no route.
func ObserveUnmatched() {
	unmatchedCounter.Inc()
}
