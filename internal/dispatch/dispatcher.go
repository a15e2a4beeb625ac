// Package dispatch invokes the business handler bound to a resolved route
// and translates its outcome into an HTTP response.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/inno-sport-inh/backend/internal/auth"
	"github.com/inno-sport-inh/backend/internal/routing"
)

const maxBodyBytes = 1 << 20

// Request carries the decoded request context into a handler.
type Request struct {
	Params map[string]string
	Query  url.Values
	Header http.Header
	Claims *auth.Claims
	body   []byte
}

// Decode unmarshals the JSON request body into v.
func (r *Request) Decode(v interface{}) error {
	if len(r.body) == 0 {
		return Validation("request body is required")
	}
	if err := json.Unmarshal(r.body, v); err != nil {
		return Validation("unable to parse body")
	}
	return nil
}

// Int returns a path parameter captured by an {name:int} placeholder.
// The router guarantees the segment is all digits.
func (r *Request) Int(name string) int {
	v, _ := strconv.Atoi(r.Params[name])
	return v
}

// Handler is the fixed contract every business handler conforms to: a
// success value to encode, or an error. *Failure values are mapped per the
// status table; anything else is an unexpected internal failure.
type Handler func(ctx context.Context, req *Request) (any, error)

// Action binds a (resource, action) identity to a handler and the scope a
// caller must hold. An empty scope means the action is public.
type Action struct {
	Resource string
	Action   string
	Scope    string
	Handler  Handler
}

// Raw is a non-JSON handler result (CSV export and similar).
type Raw struct {
	ContentType string
	Filename    string
	Body        []byte
}

// Dispatcher resolves (resource, action) identities to handlers. The table
// is built once at startup; registration afterwards is not possible.
type Dispatcher struct {
	actions map[string]Action
	logger  *log.Logger
}

// Option configures optional behaviour for the Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the logger used to report unexpected failures.
func WithLogger(logger *log.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher validates that every route has exactly one bound action and
// every action a route. A mismatch is a configuration error surfaced at
// startup, never at request time.
func NewDispatcher(table *routing.Table, actions []Action, opts ...Option) (*Dispatcher, error) {
	d := &Dispatcher{
		actions: make(map[string]Action, len(actions)),
		logger:  log.New(log.Writer(), "[dispatch] ", log.LstdFlags|log.Lshortfile),
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, action := range actions {
		id := action.Resource + "." + action.Action
		if _, dup := d.actions[id]; dup {
			return nil, fmt.Errorf("action %s bound twice", id)
		}
		if action.Handler == nil {
			return nil, fmt.Errorf("action %s has no handler", id)
		}
		if _, ok := table.Lookup(action.Resource, action.Action); !ok {
			return nil, fmt.Errorf("action %s has no registered route", id)
		}
		d.actions[id] = action
	}

	if table.Len() != len(d.actions) {
		return nil, fmt.Errorf("route table has %d routes but %d actions are bound",
			table.Len(), len(d.actions))
	}
	return d, nil
}

// Serve runs the full per-request pipeline for a resolved route: scope
// check, body read, handler invocation, outcome encoding.
func (d *Dispatcher) Serve(w http.ResponseWriter, r *http.Request, match *routing.Match) {
	action, ok := d.actions[match.Route.ID()]
	if !ok {
		// NewDispatcher guarantees this cannot happen for a table-resolved route.
		d.logger.Printf("no action for route %s", match.Route.ID())
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	claims, _ := auth.FromContext(r.Context())
	if action.Scope != "" {
		if claims == nil {
			writeError(w, http.StatusUnauthorized, string(KindUnauthorized), "missing bearer token")
			return
		}
		if !claims.HasScope(action.Scope) {
			writeError(w, http.StatusForbidden, string(KindForbidden),
				"scope "+action.Scope+" required")
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, string(KindValidation), "unable to read body")
		return
	}

	req := &Request{
		Params: match.Captures,
		Query:  r.URL.Query(),
		Header: r.Header,
		Claims: claims,
		body:   body,
	}

	result, err := action.Handler(r.Context(), req)
	if err != nil {
		d.writeFailure(w, r, match, err)
		return
	}

	switch v := result.(type) {
	case Raw:
		w.Header().Set("Content-Type", v.ContentType)
		if v.Filename != "" {
			w.Header().Set("Content-Disposition", `attachment; filename="`+v.Filename+`"`)
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(v.Body)
	case nil:
		writeJSON(w, http.StatusOK, map[string]string{})
	default:
		writeJSON(w, http.StatusOK, v)
	}
}

func (d *Dispatcher) writeFailure(w http.ResponseWriter, r *http.Request, match *routing.Match, err error) {
	var failure *Failure
	if errors.As(err, &failure) {
		status, known := statusByKind[failure.Kind]
		if known {
			writeFailureJSON(w, status, failure)
			return
		}
	}

	// Unexpected failure: log full context, surface an opaque error.
	d.logger.Printf("unexpected failure: %s %s route=%s err=%v",
		r.Method, r.URL.Path, match.Route.ID(), err)
	writeError(w, http.StatusInternalServerError, "server_error", "internal error")
}

func writeFailureJSON(w http.ResponseWriter, status int, f *Failure) {
	payload := errorBody{Type: string(f.Kind), Code: f.Code, Detail: f.Detail}
	writeJSON(w, status, payload)
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorBody{Type: code, Detail: detail})
}

type errorBody struct {
	Type   string `json:"type"`
	Code   int    `json:"code,omitempty"`
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// WriteNotFound emits the standard route-not-found response. Exposed for
// the gateway so unmatched paths share the error shape of everything else.
func WriteNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, string(KindNotFound), "no such endpoint")
}
