// Package telemetry records which route variant served each request so
// migration progress away from the v1 URL space can be tracked.
package telemetry

import (
	"context"
	"log"
	"time"
)

// Variant distinguishes the URL form that served a request.
type Variant string

const (
	VariantCanonical Variant = "canonical"
	VariantLegacy    Variant = "legacy"
)

// UsageRecord captures one completed request. Append-only; consumed by the
// usage reporter asynchronously.
type UsageRecord struct {
	RecordID   string    `json:"record_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	Variant    Variant   `json:"variant"`
	Status     int       `json:"status"`
	Caller     string    `json:"caller"`
	DurationMS int64     `json:"duration_ms"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AnonymousCaller marks records for unauthenticated requests.
const AnonymousCaller = "anonymous"

// Sink receives batches of usage records.
type Sink interface {
	Write(ctx context.Context, records []UsageRecord) error
}

// Recorder buffers usage records and hands batches to a sink off the
// request path. Record never blocks: when the buffer is full the record is
// dropped and a counter incremented, never surfaced to the caller.
type Recorder struct {
	sink          Sink
	buffer        chan UsageRecord
	flushInterval time.Duration
	batchSize     int
	logger        *log.Logger
	done          chan struct{}
}

// Option configures optional behaviour for the Recorder.
type Option func(*Recorder)

// WithLogger overrides the logger used to report sink failures.
func WithLogger(logger *log.Logger) Option {
	return func(r *Recorder) {
		r.logger = logger
	}
}

// WithBuffer sets the in-flight record capacity.
func WithBuffer(size int) Option {
	return func(r *Recorder) {
		r.buffer = make(chan UsageRecord, size)
	}
}

// NewRecorder constructs a Recorder flushing to sink.
func NewRecorder(sink Sink, flushInterval time.Duration, batchSize int, opts ...Option) *Recorder {
	r := &Recorder{
		sink:          sink,
		buffer:        make(chan UsageRecord, 1024),
		flushInterval: flushInterval,
		batchSize:     batchSize,
		logger:        log.New(log.Writer(), "[telemetry] ", log.LstdFlags),
		done:          make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record enqueues a usage record without blocking.
func (r *Recorder) Record(record UsageRecord) {
	select {
	case r.buffer <- record:
		recordedCounter.WithLabelValues(string(record.Variant)).Inc()
	default:
		droppedCounter.Inc()
	}
}

// Run drains the buffer until the context is cancelled, then flushes what
// remains. It should be called in a goroutine.
func (r *Recorder) Run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]UsageRecord, 0, r.batchSize)
	for {
		select {
		case <-ctx.Done():
			r.drain(&batch)
			r.flush(batch)
			return
		case record := <-r.buffer:
			batch = append(batch, record)
			if len(batch) >= r.batchSize {
				r.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			r.flush(batch)
			batch = batch[:0]
		}
	}
}

// Wait blocks until Run has flushed and returned.
func (r *Recorder) Wait() {
	<-r.done
}

func (r *Recorder) drain(batch *[]UsageRecord) {
	for {
		select {
		case record := <-r.buffer:
			*batch = append(*batch, record)
		default:
			return
		}
	}
}

// flush delivers a batch. Sink failures drop the batch: usage telemetry is
// best-effort and must never back-pressure request handling.
func (r *Recorder) flush(batch []UsageRecord) {
	if len(batch) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.sink.Write(ctx, batch); err != nil {
		r.logger.Printf("sink write failed, dropping %d records: %v", len(batch), err)
		sinkFailureCounter.Inc()
		droppedCounter.Add(float64(len(batch)))
		return
	}
	deliveredCounter.Add(float64(len(batch)))
}
