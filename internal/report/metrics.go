package report

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/inno-sport-inh/backend/internal/telemetry"
)

var (
	processedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "report",
		Name:      "records_processed_total",
		Help:      "Usage records successfully folded into the rollup.",
	}, []string{"resource", "variant"})

	handlerErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "report",
		Name:      "handler_errors_total",
		Help:      "Handler errors grouped by resource and variant.",
	}, []string{"resource", "variant"})

	decodeErrorCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sport_api",
		Subsystem: "report",
		Name:      "decode_errors_total",
		Help:      "Decode failures per topic.",
	}, []string{"topic"})

	lastRecordGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "sport_api",
		Subsystem: "report",
		Name:      "last_record_timestamp_seconds",
		Help:      "Unix timestamp of the most recent processed usage record.",
	})
)

func init() {
	prometheus.MustRegister(processedCounter, handlerErrorCounter, decodeErrorCounter, lastRecordGauge)
}

func recordProcessed(record telemetry.UsageRecord) {
	processedCounter.WithLabelValues(record.Resource, string(record.Variant)).Inc()
	if !record.RecordedAt.IsZero() {
		lastRecordGauge.Set(float64(record.RecordedAt.Unix()))
	}
}

func recordHandlerError(record telemetry.UsageRecord) {
	handlerErrorCounter.WithLabelValues(record.Resource, string(record.Variant)).Inc()
}

func recordDecodeError(topic string) {
	decodeErrorCounter.WithLabelValues(topic).Inc()
}
