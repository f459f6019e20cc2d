package pathpattern

import "strings"

// Capture is a variable bound by a successful match.
type Capture struct {
	Name  string
	Value string
}

// MatchResult holds the variables bound by a match, in declaration order,
// and the text consumed by a trailing "**".
type MatchResult struct {
	captures     []Capture
	remainder    string
	hasRemainder bool
}

// Captures returns the bound variables in declaration order. The slice is
// owned by the result and must not be modified.
func (r *MatchResult) Captures() []Capture {
	return r.captures
}

// Get returns the value bound to name.
func (r *MatchResult) Get(name string) (string, bool) {
	for _, c := range r.captures {
		if c.Name == name {
			return c.Value, true
		}
	}
	return "", false
}

// Vars returns the bound variables as a new map.
func (r *MatchResult) Vars() map[string]string {
	m := make(map[string]string, len(r.captures))
	for _, c := range r.captures {
		m[c.Name] = c.Value
	}
	return m
}

// Names returns the bound variable names in declaration order.
func (r *MatchResult) Names() []string {
	names := make([]string, len(r.captures))
	for i, c := range r.captures {
		names[i] = c.Name
	}
	return names
}

// Remainder returns the path text matched by a trailing "**" (without the
// leading separator) and whether the pattern had one.
func (r *MatchResult) Remainder() (string, bool) {
	return r.remainder, r.hasRemainder
}

// PathRemainingMatch is the result of MatchStartOfPath.
type PathRemainingMatch struct {
	MatchResult
	rest string
}

// Rest returns the part of the path the pattern did not consume.
func (m *PathRemainingMatch) Rest() string {
	return m.rest
}

// outcome describes how a walk over the path ended.
type outcome struct {
	rest         string
	remainder    string
	hasRemainder bool
}

// Matches reports whether path matches the pattern. It never fails on
// malformed input; a path that does not match is a plain false.
func (p *Pattern) Matches(path string) bool {
	_, ok := p.walk(path, nil, false)
	return ok
}

// MatchAndExtract matches path and returns the bound variables.
func (p *Pattern) MatchAndExtract(path string) (*MatchResult, bool) {
	var captures []Capture
	if len(p.varNames) > 0 {
		captures = make([]Capture, 0, len(p.varNames))
	}

	out, ok := p.walk(path, &captures, false)
	if !ok {
		return nil, false
	}

	return &MatchResult{
		captures:     captures,
		remainder:    out.remainder,
		hasRemainder: out.hasRemainder,
	}, true
}

// MatchStartOfPath matches the pattern against the beginning of path. The
// match must end on a segment boundary; the unmatched tail is returned by
// Rest. "/foo" matches the start of "/foo/bar" with rest "/bar" but not of
// "/foobar".
func (p *Pattern) MatchStartOfPath(path string) (*PathRemainingMatch, bool) {
	var captures []Capture
	if len(p.varNames) > 0 {
		captures = make([]Capture, 0, len(p.varNames))
	}

	out, ok := p.walk(path, &captures, true)
	if !ok {
		return nil, false
	}

	return &PathRemainingMatch{
		MatchResult: MatchResult{
			captures:     captures,
			remainder:    out.remainder,
			hasRemainder: out.hasRemainder,
		},
		rest: out.rest,
	}, true
}

// walk matches the elements against path in lock-step. With prefix set,
// unconsumed path text after a segment boundary is returned as rest
// instead of failing the match.
func (p *Pattern) walk(path string, captures *[]Capture, prefix bool) (outcome, bool) {
	sep := p.parser.separator
	els := p.elements
	pos := 0

	for i := range els {
		e := &els[i]

		switch e.kind {
		case kindSeparator:
			if pos < len(path) && path[pos] == sep {
				pos++
				continue
			}
			// "/foo/**" matches "/foo": the wildcard takes zero segments
			// and the separator before it is not required.
			if pos == len(path) && i+1 < len(els) && els[i+1].kind == kindMultiWildcard {
				return outcome{hasRemainder: true}, true
			}
			return outcome{}, false

		case kindMultiWildcard:
			// Only a trailing separator can follow, so no backtracking is
			// needed: the wildcard takes the rest of the path.
			return outcome{remainder: path[pos:], hasRemainder: true}, true

		default:
			end := strings.IndexByte(path[pos:], sep)
			if end < 0 {
				end = len(path)
			} else {
				end += pos
			}
			if end == pos {
				return outcome{}, false
			}
			if !e.matchSegment(path[pos:end], p.parser.caseSensitive, captures) {
				return outcome{}, false
			}
			pos = end
		}
	}

	if pos == len(path) {
		return outcome{}, true
	}

	if prefix {
		if pos == 0 || p.endsWithSeparator || path[pos] == sep {
			return outcome{rest: path[pos:]}, true
		}
		return outcome{}, false
	}

	if p.parser.matchOptionalTrailingSlash && !p.endsWithSeparator &&
		len(path)-pos == 1 && path[pos] == sep {
		return outcome{}, true
	}

	return outcome{}, false
}

// ExtractPathWithinPattern returns the part of path that is mapped by the
// dynamic part of the pattern, that is everything after the segments
// covered by leading literal segments:
//
//	"/docs/cvs/commit.html" and "/docs/cvs/commit.html" -> ""
//	"/docs/*"               and "/docs/cvs/commit"      -> "cvs/commit"
//	"/docs/cvs/*.html"      and "/docs/cvs/commit.html" -> "commit.html"
//	"/docs/**"              and "/docs/cvs/commit"      -> "cvs/commit"
//	"/*.html"               and "/docs/commit.html"     -> "docs/commit.html"
//
// Empty segments are dropped; a trailing separator on path is kept. The
// path is not required to match the pattern.
func (p *Pattern) ExtractPathWithinPattern(path string) string {
	skip := 0
	dynamic := false
	for i := range p.elements {
		e := &p.elements[i]
		if e.kind == kindSeparator {
			continue
		}
		if e.kind != kindLiteral {
			dynamic = true
			break
		}
		skip++
	}
	if !dynamic {
		return ""
	}

	sep := p.parser.separator
	var b strings.Builder
	seen := 0
	for seg := range strings.SplitSeq(path, string(sep)) {
		if seg == "" {
			continue
		}
		if seen++; seen <= skip {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte(sep)
		}
		b.WriteString(seg)
	}
	if b.Len() > 0 && path[len(path)-1] == sep {
		b.WriteByte(sep)
	}
	return b.String()
}
