// Package routing resolves incoming (method, path) pairs against an
// immutable route table built at startup.
package routing

import (
	"fmt"
	"strings"
)

type segmentKind int

const (
	segmentLiteral segmentKind = iota
	segmentString
	segmentInt
)

type segment struct {
	kind    segmentKind
	literal string
	name    string
}

// Pattern is a compiled path pattern. Placeholder segments use the form
// {name} for opaque strings and {name:int} for decimal identifiers.
type Pattern struct {
	raw      string
	segments []segment
	params   int
}

// CompilePattern parses a path pattern. Trailing slashes carry no meaning.
func CompilePattern(raw string) (Pattern, error) {
	if !strings.HasPrefix(raw, "/") {
		return Pattern{}, fmt.Errorf("pattern %q must start with /", raw)
	}

	parts := splitPath(raw)
	segments := make([]segment, 0, len(parts))
	params := 0
	seen := make(map[string]struct{})

	for _, part := range parts {
		if !strings.HasPrefix(part, "{") {
			if strings.Contains(part, "}") {
				return Pattern{}, fmt.Errorf("pattern %q: stray brace in segment %q", raw, part)
			}
			segments = append(segments, segment{kind: segmentLiteral, literal: part})
			continue
		}

		if !strings.HasSuffix(part, "}") {
			return Pattern{}, fmt.Errorf("pattern %q: unterminated placeholder %q", raw, part)
		}
		body := part[1 : len(part)-1]
		name, typ := body, ""
		if idx := strings.IndexByte(body, ':'); idx >= 0 {
			name, typ = body[:idx], body[idx+1:]
		}
		if name == "" {
			return Pattern{}, fmt.Errorf("pattern %q: placeholder without a name", raw)
		}
		if _, dup := seen[name]; dup {
			return Pattern{}, fmt.Errorf("pattern %q: duplicate placeholder %q", raw, name)
		}
		seen[name] = struct{}{}

		kind := segmentString
		switch typ {
		case "", "str":
		case "int":
			kind = segmentInt
		default:
			return Pattern{}, fmt.Errorf("pattern %q: unknown placeholder type %q", raw, typ)
		}
		segments = append(segments, segment{kind: kind, name: name})
		params++
	}

	return Pattern{raw: raw, segments: segments, params: params}, nil
}

// MustCompilePattern is CompilePattern for static tables; it panics on error.
func MustCompilePattern(raw string) Pattern {
	p, err := CompilePattern(raw)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the pattern source text.
func (p Pattern) String() string { return p.raw }

// Params reports the number of placeholder segments.
func (p Pattern) Params() int { return p.params }

// ParamNames lists placeholder names in order of appearance.
func (p Pattern) ParamNames() []string {
	if p.params == 0 {
		return nil
	}
	names := make([]string, 0, p.params)
	for _, seg := range p.segments {
		if seg.kind != segmentLiteral {
			names = append(names, seg.name)
		}
	}
	return names
}

// Match tests a request path against the pattern and returns captured
// placeholder values.
func (p Pattern) Match(path string) (map[string]string, bool) {
	parts := splitPath(path)
	if len(parts) != len(p.segments) {
		return nil, false
	}

	var captures map[string]string
	for i, seg := range p.segments {
		part := parts[i]
		switch seg.kind {
		case segmentLiteral:
			if part != seg.literal {
				return nil, false
			}
		case segmentInt:
			if !allDigits(part) {
				return nil, false
			}
			fallthrough
		case segmentString:
			if part == "" {
				return nil, false
			}
			if captures == nil {
				captures = make(map[string]string, p.params)
			}
			captures[seg.name] = part
		}
	}
	return captures, true
}

// Expand substitutes captured values back into the pattern, producing a
// concrete path. Used by the legacy shim to compute successor URLs.
func (p Pattern) Expand(captures map[string]string) string {
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		if seg.kind == segmentLiteral {
			b.WriteString(seg.literal)
		} else {
			b.WriteString(captures[seg.name])
		}
	}
	if strings.HasSuffix(p.raw, "/") {
		b.WriteByte('/')
	}
	return b.String()
}

// overlaps reports whether some path could match both patterns. Segment
// counts must agree; at each position literals must be equal unless one
// side is a placeholder that can absorb the other.
func (p Pattern) overlaps(q Pattern) bool {
	if len(p.segments) != len(q.segments) {
		return false
	}
	for i := range p.segments {
		a, b := p.segments[i], q.segments[i]
		switch {
		case a.kind == segmentLiteral && b.kind == segmentLiteral:
			if a.literal != b.literal {
				return false
			}
		case a.kind == segmentLiteral && b.kind == segmentInt:
			if !allDigits(a.literal) {
				return false
			}
		case b.kind == segmentLiteral && a.kind == segmentInt:
			if !allDigits(b.literal) {
				return false
			}
		}
	}
	return true
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
