package httptransport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/dispatch"
	"github.com/inno-sport-inh/backend/internal/legacy"
	"github.com/inno-sport-inh/backend/internal/routing"
	"github.com/inno-sport-inh/backend/internal/telemetry"
)

type captureSink struct {
	mu      sync.Mutex
	records []telemetry.UsageRecord
}

func (s *captureSink) Write(_ context.Context, records []telemetry.UsageRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, records...)
	return nil
}

func (s *captureSink) all() []telemetry.UsageRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]telemetry.UsageRecord, len(s.records))
	copy(out, s.records)
	return out
}

func newTestGateway(t *testing.T, recorder *telemetry.Recorder) *Gateway {
	t.Helper()

	table, err := routing.NewTable([]routing.Route{
		{
			Method:   http.MethodGet,
			Pattern:  routing.MustCompilePattern("/api/v2/group/sports/"),
			Resource: "sport",
			Action:   "list",
		},
	})
	if err != nil {
		t.Fatalf("table: %v", err)
	}

	dispatcher, err := dispatch.NewDispatcher(table, []dispatch.Action{
		{
			Resource: "sport",
			Action:   "list",
			Handler: func(ctx context.Context, req *dispatch.Request) (any, error) {
				return []string{"swimming"}, nil
			},
		},
	})
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}

	mappings, err := legacy.NewMappings(table, []legacy.Entry{
		{
			Method:   http.MethodGet,
			Pattern:  routing.MustCompilePattern("/api/sports"),
			Resource: "sport",
			Action:   "list",
		},
	}, legacy.DefaultConfig)
	if err != nil {
		t.Fatalf("mappings: %v", err)
	}

	return NewGateway(table, dispatcher, mappings, recorder, nil)
}

// runAndFlush cancels the recorder loop so buffered records reach the sink.
func runAndFlush(t *testing.T, recorder *telemetry.Recorder, fn func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	go recorder.Run(ctx)
	fn()
	cancel()
	recorder.Wait()
}

func TestGatewayRecordsCanonicalUsage(t *testing.T) {
	sink := &captureSink{}
	recorder := telemetry.NewRecorder(sink, time.Hour, 100)
	gateway := newTestGateway(t, recorder)

	runAndFlush(t, recorder, func() {
		rec := httptest.NewRecorder()
		gateway.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/group/sports/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec.Header().Get("Deprecation") != "" {
			t.Fatal("canonical response must not carry deprecation headers")
		}
	})

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	got := records[0]
	if got.Variant != telemetry.VariantCanonical {
		t.Fatalf("variant = %q", got.Variant)
	}
	if got.Resource != "sport" || got.Action != "list" {
		t.Fatalf("route = %s.%s", got.Resource, got.Action)
	}
	if got.Status != http.StatusOK {
		t.Fatalf("status = %d", got.Status)
	}
	if got.Caller != telemetry.AnonymousCaller {
		t.Fatalf("caller = %q", got.Caller)
	}
	if got.RecordID == "" {
		t.Fatal("record id must be set")
	}
}

func TestGatewayRecordsLegacyUsageWithCaller(t *testing.T) {
	sink := &captureSink{}
	recorder := telemetry.NewRecorder(sink, time.Hour, 100)
	gateway := newTestGateway(t, recorder)

	claims := &auth.Claims{
		Subject:   "s.tester@example.com",
		UserID:    10,
		Scopes:    map[string]struct{}{auth.ScopeStudent: {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}

	runAndFlush(t, recorder, func() {
		req := httptest.NewRequest(http.MethodGet, "/api/sports", nil)
		req = req.WithContext(auth.WithClaims(req.Context(), claims))
		rec := httptest.NewRecorder()
		gateway.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if rec.Header().Get("Deprecation") != "true" {
			t.Fatal("legacy response must carry the Deprecation header")
		}
	})

	records := sink.all()
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	if records[0].Variant != telemetry.VariantLegacy {
		t.Fatalf("variant = %q", records[0].Variant)
	}
	if records[0].Caller != "s.tester@example.com" {
		t.Fatalf("caller = %q", records[0].Caller)
	}
}

func TestGatewaySkipsUnmatchedRequests(t *testing.T) {
	sink := &captureSink{}
	recorder := telemetry.NewRecorder(sink, time.Hour, 100)
	gateway := newTestGateway(t, recorder)

	runAndFlush(t, recorder, func() {
		rec := httptest.NewRecorder()
		gateway.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nope", nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	if got := sink.all(); len(got) != 0 {
		t.Fatalf("unmatched requests should not be recorded, got %d", len(got))
	}
}

func TestGatewayToleratesNilRecorder(t *testing.T) {
	gateway := newTestGateway(t, nil)

	rec := httptest.NewRecorder()
	gateway.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v2/group/sports/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
