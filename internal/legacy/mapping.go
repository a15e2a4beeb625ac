// Package legacy maps deprecated v1 URL forms onto their canonical v2
// routes and annotates responses with deprecation metadata.
package legacy

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/inno-sport-inh/backend/internal/routing"
)

// Entry declares one deprecated (method, pattern) pair and the canonical
// (resource, action) that replaces it. Entries come from a static table and
// are never mutated at runtime.
type Entry struct {
	Method   string
	Pattern  routing.Pattern
	Resource string
	Action   string
	Note     string
}

// Config carries the deprecation metadata stamped on every legacy response.
type Config struct {
	Sunset         string
	MigrationGuide string
}

// DefaultConfig matches the values announced to API consumers.
var DefaultConfig = Config{
	Sunset:         "2025-12-31",
	MigrationGuide: "https://docs.example.com/api-migration",
}

type mapping struct {
	entry  Entry
	target *routing.Route
}

func sameParamNames(a, b routing.Pattern) bool {
	an, bn := a.ParamNames(), b.ParamNames()
	if len(an) != len(bn) {
		return false
	}
	sort.Strings(an)
	sort.Strings(bn)
	for i := range an {
		if an[i] != bn[i] {
			return false
		}
	}
	return true
}

// Mappings is the immutable legacy lookup table. Safe for concurrent use.
type Mappings struct {
	byMethod map[string][]*mapping
	cfg      Config
}

// NewMappings validates every entry against the canonical route table.
// A dangling target is a fatal configuration error: startup must fail
// rather than serve a legacy path with nowhere to go.
func NewMappings(table *routing.Table, entries []Entry, cfg Config) (*Mappings, error) {
	m := &Mappings{byMethod: make(map[string][]*mapping), cfg: cfg}

	for _, entry := range entries {
		target, ok := table.Lookup(entry.Resource, entry.Action)
		if !ok {
			return nil, fmt.Errorf("legacy %s %s points at unknown route %s.%s",
				entry.Method, entry.Pattern, entry.Resource, entry.Action)
		}
		if target.Method != entry.Method {
			return nil, fmt.Errorf("legacy %s %s maps to %s route %s.%s",
				entry.Method, entry.Pattern, target.Method, entry.Resource, entry.Action)
		}
		// Captures are substituted by name, so the successor pattern must
		// use exactly the names the legacy pattern captures.
		if !sameParamNames(entry.Pattern, target.Pattern) {
			return nil, fmt.Errorf("legacy %s %s and canonical %s capture different placeholders",
				entry.Method, entry.Pattern, target.Pattern)
		}

		for _, existing := range m.byMethod[entry.Method] {
			if existing.entry.Pattern.String() == entry.Pattern.String() {
				return nil, fmt.Errorf("duplicate legacy mapping %s %s", entry.Method, entry.Pattern)
			}
		}
		m.byMethod[entry.Method] = append(m.byMethod[entry.Method], &mapping{entry: entry, target: target})
	}
	return m, nil
}

// Resolved is the outcome of a legacy lookup: the canonical match to
// dispatch plus the metadata to stamp on the response.
type Resolved struct {
	Match     *routing.Match
	Successor string
	Note      string
	cfg       Config
}

// Resolve matches a request against the legacy table and rewrites it onto
// the canonical route. Pure lookup.
func (m *Mappings) Resolve(method, path string) (*Resolved, bool) {
	for _, candidate := range m.byMethod[method] {
		captures, ok := candidate.entry.Pattern.Match(path)
		if !ok {
			continue
		}
		return &Resolved{
			Match:     &routing.Match{Route: candidate.target, Captures: captures},
			Successor: candidate.target.Pattern.Expand(captures),
			Note:      candidate.entry.Note,
			cfg:       m.cfg,
		}, true
	}
	return nil, false
}

// Len reports the number of legacy entries.
func (m *Mappings) Len() int {
	n := 0
	for _, entries := range m.byMethod {
		n += len(entries)
	}
	return n
}

// Apply stamps the fixed deprecation header set on a response. The
// business body is never altered.
func (r *Resolved) Apply(h http.Header) {
	h.Set("Deprecation", "true")
	h.Set("Sunset", r.cfg.Sunset)
	h.Set("Link", "<"+r.Successor+`>; rel="successor-version"`)
	h.Set("Warning", `299 - "This API version is deprecated. Please migrate to v2."`)
	h.Set("X-API-Deprecated", "This endpoint is deprecated")
	h.Set("X-API-Migration-Guide", r.cfg.MigrationGuide)
	h.Set("X-API-New-Endpoint", r.Successor)
	if r.Note != "" {
		h.Set("X-API-Deprecation-Note", r.Note)
	}
}
