package telemetry

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
)

// UsageTopic is the Kafka topic usage records are published to.
const UsageTopic = "api_usage"

// KafkaSink publishes usage records as JSON messages keyed by route
// identity, so per-route consumption stays partition-local.
type KafkaSink struct {
	writer *kafka.Writer
}

// NewKafkaSink creates a sink writing to UsageTopic on the given brokers.
func NewKafkaSink(brokers []string) *KafkaSink {
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        UsageTopic,
			RequiredAcks: kafka.RequireAll,
			Compression:  kafka.Snappy,
			Async:        false,
		},
	}
}

// Write publishes a batch of usage records.
func (s *KafkaSink) Write(ctx context.Context, records []UsageRecord) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, record := range records {
		payload, err := json.Marshal(record)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(record.Resource + "." + record.Action),
			Value: payload,
			Time:  time.Now().UTC(),
			Headers: []kafka.Header{
				{Key: "variant", Value: []byte(record.Variant)},
			},
		})
	}
	return s.writer.WriteMessages(ctx, msgs...)
}

// Close releases the underlying writer.
func (s *KafkaSink) Close() error {
	return s.writer.Close()
}
