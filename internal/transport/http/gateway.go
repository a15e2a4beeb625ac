// Package httptransport wires the route table, action dispatcher and
// legacy shim into a single http.Handler.
package httptransport

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/legacy"
	"github.com/inno-sport-inh/backend/internal/observability"
	"github.com/inno-sport-inh/backend/internal/routing"
	"github.com/inno-sport-inh/backend/internal/telemetry"
)

// Gateway resolves each request against the canonical route table first,
// then the legacy mapping table, and records a usage sample either way.
type Gateway struct {
	table      *routing.Table
	dispatcher *dispatch.Dispatcher
	legacy     *legacy.Mappings
	recorder   *telemetry.Recorder
	logger     *log.Logger
}

// NewGateway assembles the request pipeline. The recorder may be nil when
// usage telemetry is disabled.
func NewGateway(table *routing.Table, dispatcher *dispatch.Dispatcher, mappings *legacy.Mappings, recorder *telemetry.Recorder, logger *log.Logger) *Gateway {
	if logger == nil {
		logger = log.Default()
	}
	return &Gateway{
		table:      table,
		dispatcher: dispatcher,
		legacy:     mappings,
		recorder:   recorder,
		logger:     logger,
	}
}

// statusRecorder captures the status code written by the dispatcher so the
// gateway can attach it to the usage record after the fact.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w}

	if match, ok := g.table.Match(r.Method, r.URL.Path); ok {
		g.dispatcher.Serve(rec, r, match)
		g.observe(r, match, telemetry.VariantCanonical, rec.status, start)
		return
	}

	if resolved, ok := g.legacy.Resolve(r.Method, r.URL.Path); ok {
		// Deprecation headers go out with whatever status the handler
		// writes, so they must be set before dispatch.
		resolved.Apply(rec.Header())
		g.dispatcher.Serve(rec, r, resolved.Match)
		g.observe(r, resolved.Match, telemetry.VariantLegacy, rec.status, start)
		return
	}

	observability.ObserveUnmatched()
	dispatch.WriteNotFound(rec)
}

func (g *Gateway) observe(r *http.Request, match *routing.Match, variant telemetry.Variant, status int, start time.Time) {
	if status == 0 {
		status = http.StatusOK
	}
	elapsed := time.Since(start)
	observability.ObserveRequest(match.Route.Resource, match.Route.Action, string(variant), strconv.Itoa(status), elapsed)
	if g.recorder == nil {
		return
	}

	caller := telemetry.AnonymousCaller
	if claims, ok := auth.FromContext(r.Context()); ok {
		caller = claims.Subject
	}
	g.recorder.Record(telemetry.UsageRecord{
		RecordID:   uuid.NewString(),
		Method:     r.Method,
		Path:       r.URL.Path,
		Resource:   match.Route.Resource,
		Action:     match.Route.Action,
		Variant:    variant,
		Status:     status,
		Caller:     caller,
		DurationMS: elapsed.Milliseconds(),
		RecordedAt: time.Now().UTC(),
	})
}
