package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/routing"
)

func testTable(t *testing.T) *routing.Table {
	t.Helper()
	table, err := routing.NewTable([]routing.Route{
		{
			Method:   http.MethodPost,
			Pattern:  routing.MustCompilePattern("/api/v2/enrollment/enroll/"),
			Resource: "enrollment",
			Action:   "enroll",
		},
	})
	if err != nil {
		t.Fatalf("unexpected table error: %v", err)
	}
	return table
}

func okHandler(ctx context.Context, req *Request) (any, error) {
	return map[string]string{"ok": "true"}, nil
}

func studentClaims() *auth.Claims {
	return &auth.Claims{
		Subject:   "s.tester@example.com",
		UserID:    1,
		Scopes:    map[string]struct{}{auth.ScopeStudent: {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func serve(t *testing.T, d *Dispatcher, table *routing.Table, r *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	match, ok := table.Match(r.Method, r.URL.Path)
	if !ok {
		t.Fatalf("no route for %s %s", r.Method, r.URL.Path)
	}
	rr := httptest.NewRecorder()
	d.Serve(rr, r, match)
	return rr
}

func TestNewDispatcherRejectsUnboundRoute(t *testing.T) {
	_, err := NewDispatcher(testTable(t), nil)
	if err == nil {
		t.Fatal("expected error when a route has no action")
	}
}

func TestNewDispatcherRejectsDanglingAction(t *testing.T) {
	actions := []Action{
		{Resource: "enrollment", Action: "enroll", Handler: okHandler},
		{Resource: "enrollment", Action: "missing", Handler: okHandler},
	}
	_, err := NewDispatcher(testTable(t), actions)
	if err == nil {
		t.Fatal("expected error when an action has no route")
	}
}

func TestServeRequiresScope(t *testing.T) {
	table := testTable(t)
	d, err := NewDispatcher(table, []Action{
		{Resource: "enrollment", Action: "enroll", Scope: auth.ScopeStudent, Handler: okHandler},
	})
	if err != nil {
		t.Fatalf("unexpected dispatcher error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	rr := serve(t, d, table, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rr.Code)
	}

	trainerOnly := &auth.Claims{
		Subject:   "t.tester@example.com",
		UserID:    2,
		Scopes:    map[string]struct{}{auth.ScopeTrainer: {}},
		ExpiresAt: time.Now().Add(time.Hour),
	}
	req = httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), trainerOnly))
	rr = serve(t, d, table, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for missing scope, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	req = req.WithContext(auth.WithClaims(req.Context(), studentClaims()))
	rr = serve(t, d, table, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestServeMapsFailureKinds(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{Validation("bad payload"), http.StatusBadRequest, 0},
		{NotFound("no such group"), http.StatusNotFound, 0},
		{Conflict(2, "group full"), http.StatusConflict, 2},
		{Forbidden(6, "medical disallowance"), http.StatusForbidden, 6},
		{Unprocessable(8, "sport mismatch"), http.StatusUnprocessableEntity, 8},
	}

	for _, tc := range cases {
		table := testTable(t)
		d, err := NewDispatcher(table, []Action{
			{Resource: "enrollment", Action: "enroll", Handler: func(ctx context.Context, req *Request) (any, error) {
				return nil, tc.err
			}},
		})
		if err != nil {
			t.Fatalf("unexpected dispatcher error: %v", err)
		}

		req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
		rr := serve(t, d, table, req)
		if rr.Code != tc.status {
			t.Fatalf("expected %d for %v, got %d", tc.status, tc.err, rr.Code)
		}

		var body struct {
			Type   string `json:"type"`
			Code   int    `json:"code"`
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
			t.Fatalf("failed to decode body: %v", err)
		}
		if body.Type == "" || body.Detail == "" {
			t.Fatalf("error body must carry type and detail: %s", rr.Body.String())
		}
		if body.Code != tc.code {
			t.Fatalf("expected code %d, got %d", tc.code, body.Code)
		}
	}
}

func TestServeHidesUnexpectedErrors(t *testing.T) {
	table := testTable(t)
	d, err := NewDispatcher(table, []Action{
		{Resource: "enrollment", Action: "enroll", Handler: func(ctx context.Context, req *Request) (any, error) {
			return nil, errors.New("pq: connection reset by peer")
		}},
	}, WithLogger(log.New(io.Discard, "", 0)))
	if err != nil {
		t.Fatalf("unexpected dispatcher error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	rr := serve(t, d, table, req)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "connection reset") {
		t.Fatalf("internal detail leaked: %s", rr.Body.String())
	}
}

func TestServeEncodesRawResults(t *testing.T) {
	table := testTable(t)
	d, err := NewDispatcher(table, []Action{
		{Resource: "enrollment", Action: "enroll", Handler: func(ctx context.Context, req *Request) (any, error) {
			return Raw{ContentType: "text/csv", Filename: "grades.csv", Body: []byte("a,b\n")}, nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected dispatcher error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	rr := serve(t, d, table, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "grades.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	if rr.Body.String() != "a,b\n" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestServeEncodesNilAsEmptyObject(t *testing.T) {
	table := testTable(t)
	d, err := NewDispatcher(table, []Action{
		{Resource: "enrollment", Action: "enroll", Handler: func(ctx context.Context, req *Request) (any, error) {
			return nil, nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected dispatcher error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	rr := serve(t, d, table, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "{}" {
		t.Fatalf("expected empty object, got %q", rr.Body.String())
	}
}

func TestRequestDecodeRequiresBody(t *testing.T) {
	table := testTable(t)
	d, err := NewDispatcher(table, []Action{
		{Resource: "enrollment", Action: "enroll", Handler: func(ctx context.Context, req *Request) (any, error) {
			var payload struct {
				GroupID int `json:"group_id"`
			}
			if err := req.Decode(&payload); err != nil {
				return nil, err
			}
			return payload, nil
		}},
	})
	if err != nil {
		t.Fatalf("unexpected dispatcher error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", nil)
	rr := serve(t, d, table, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty body, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/v2/enrollment/enroll/", strings.NewReader(`{"group_id":5}`))
	rr = serve(t, d, table, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
