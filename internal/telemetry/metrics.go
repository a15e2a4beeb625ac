package telemetry

import "github.com/prometheus/client_golang/prometheus"

var (
	recordedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "telemetry",
		Name:      "records_total",
		Help:      "Number of usage records accepted into the buffer, labeled by route variant.",
	}, []string{"variant"})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "telemetry",
		Name:      "records_dropped_total",
		Help:      "Number of usage records dropped because the buffer was full or the sink failed.",
	})

	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "telemetry",
		Name:      "records_delivered_total",
		Help:      "Number of usage records successfully written to the sink.",
	})

	sinkFailureCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "telemetry",
		Name:      "sink_failures_total",
		Help:      "Number of failed sink write calls.",
	})
)

func init() {
	prometheus.MustRegister(recordedCounter, droppedCounter, deliveredCounter, sinkFailureCounter)
}
