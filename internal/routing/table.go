package routing

import (
	"fmt"
	"sort"
)

// Route binds an HTTP method and path pattern to a resource action.
type Route struct {
	Method   string
	Pattern  Pattern
	Resource string
	Action   string
}

// ID returns the stable "resource.action" identity of the route.
func (r Route) ID() string { return r.Resource + "." + r.Action }

// Match is the outcome of a successful table lookup.
type Match struct {
	Route    *Route
	Captures map[string]string
}

// Table is the immutable route lookup structure. Safe for concurrent use.
type Table struct {
	byMethod map[string][]*Route
	byID     map[string]*Route
}

// NewTable validates and indexes the route set. Duplicate (method, pattern)
// pairs and ambiguous overlaps of equal specificity are rejected, so a
// misconfigured table fails at startup rather than at request time.
func NewTable(routes []Route) (*Table, error) {
	t := &Table{
		byMethod: make(map[string][]*Route),
		byID:     make(map[string]*Route, len(routes)),
	}

	for i := range routes {
		route := routes[i]
		if route.Method == "" || route.Resource == "" || route.Action == "" {
			return nil, fmt.Errorf("route %q %q: method, resource and action are required",
				route.Method, route.Pattern)
		}
		if prev, dup := t.byID[route.ID()]; dup {
			return nil, fmt.Errorf("route id %s registered twice (%q and %q)",
				route.ID(), prev.Pattern, route.Pattern)
		}

		for _, existing := range t.byMethod[route.Method] {
			if existing.Pattern.String() == route.Pattern.String() {
				return nil, fmt.Errorf("duplicate route %s %s", route.Method, route.Pattern)
			}
			if existing.Pattern.Params() == route.Pattern.Params() &&
				existing.Pattern.overlaps(route.Pattern) {
				return nil, fmt.Errorf("ambiguous routes %s %s and %s %s",
					route.Method, existing.Pattern, route.Method, route.Pattern)
			}
		}

		t.byID[route.ID()] = &route
		t.byMethod[route.Method] = append(t.byMethod[route.Method], &route)
	}

	// Most specific first: fewer placeholders win on overlap.
	for _, candidates := range t.byMethod {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Pattern.Params() < candidates[j].Pattern.Params()
		})
	}

	return t, nil
}

// Match resolves a request to its route. Pure lookup, no side effects.
func (t *Table) Match(method, path string) (*Match, bool) {
	for _, route := range t.byMethod[method] {
		if captures, ok := route.Pattern.Match(path); ok {
			return &Match{Route: route, Captures: captures}, true
		}
	}
	return nil, false
}

// Lookup finds a route by its "resource.action" identity.
func (t *Table) Lookup(resource, action string) (*Route, bool) {
	route, ok := t.byID[resource+"."+action]
	return route, ok
}

// Len reports the number of registered routes.
func (t *Table) Len() int { return len(t.byID) }
