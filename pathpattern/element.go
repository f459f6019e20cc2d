package pathpattern

import (
	"regexp"
	"strings"
)

// elementKind tags the variant held by an element.
type elementKind uint8

const (
	kindSeparator elementKind = iota
	kindLiteral
	kindCapture
	kindRegexCapture
	kindWildcard
	kindMultiWildcard
	kindComposite
)

func (k elementKind) String() string {
	switch k {
	case kindSeparator:
		return "separator"
	case kindLiteral:
		return "literal"
	case kindCapture:
		return "capture"
	case kindRegexCapture:
		return "regex-capture"
	case kindWildcard:
		return "wildcard"
	case kindMultiWildcard:
		return "multi-wildcard"
	case kindComposite:
		return "composite"
	}
	return "unknown"
}

// element is one compiled piece of a pattern. Which fields are set depends
// on kind.
type element struct {
	kind elementKind
	// pos is the offset of the element in the template.
	pos int
	// text is the literal text for kindLiteral and the variable name for
	// captures.
	text string
	// constraint is the constraint as written, for kindRegexCapture.
	constraint string
	// matcher validates a kindRegexCapture value.
	matcher varMatcher
	// parts and re describe a kindComposite segment.
	parts []part
	re    *regexp.Regexp
	// strict is set when a composite capture has a macro matcher.
	strict bool
}

// partKind tags the pieces of a composite segment.
type partKind uint8

const (
	partLiteral partKind = iota
	partCapture
	partWildcard
)

// part is a piece of a composite segment such as "{name}.{ext}".
type part struct {
	kind partKind
	// text is the literal text or the variable name.
	text string
	// constraint is the raw constraint text, empty for an unconstrained capture.
	constraint string
	// pattern is the regexp source used inside the composite expression.
	pattern string
	// matcher is set when a macro needs validation beyond its regexp.
	matcher varMatcher
	// group is the submatch index of a capture part.
	group int
}

// matchSegment dispatches on the element kind and reports whether seg is
// accepted. Bound values are appended to captures when it is non-nil.
func (e *element) matchSegment(seg string, caseSensitive bool, captures *[]Capture) bool {
	switch e.kind {
	case kindLiteral:
		if caseSensitive {
			return seg == e.text
		}
		return strings.EqualFold(seg, e.text)

	case kindWildcard:
		return true

	case kindCapture:
		if captures != nil {
			*captures = append(*captures, Capture{Name: e.text, Value: seg})
		}
		return true

	case kindRegexCapture:
		if !e.matcher.MatchString(seg) {
			return false
		}
		if captures != nil {
			*captures = append(*captures, Capture{Name: e.text, Value: seg})
		}
		return true

	case kindComposite:
		return e.matchComposite(seg, captures)
	}

	return false
}

// matchComposite matches seg against the composite regexp and validates
// each captured value with its macro matcher, if any.
func (e *element) matchComposite(seg string, captures *[]Capture) bool {
	if captures == nil && !e.strict {
		return e.re.MatchString(seg)
	}

	m := e.re.FindStringSubmatch(seg)
	if m == nil {
		return false
	}

	mark := 0
	if captures != nil {
		mark = len(*captures)
	}

	for _, p := range e.parts {
		if p.kind != partCapture {
			continue
		}
		v := m[p.group]
		if p.matcher != nil && !p.matcher.MatchString(v) {
			if captures != nil {
				*captures = (*captures)[:mark]
			}
			return false
		}
		if captures != nil {
			*captures = append(*captures, Capture{Name: p.text, Value: v})
		}
	}

	return true
}

// counts returns the number of captures, wildcards and literal bytes the
// element contributes to the pattern specificity.
func (e *element) counts() (captures, wildcards, literal int) {
	switch e.kind {
	case kindSeparator:
		return 0, 0, 1
	case kindLiteral:
		return 0, 0, len(e.text)
	case kindCapture, kindRegexCapture:
		return 1, 0, 0
	case kindWildcard, kindMultiWildcard:
		return 0, 1, 0
	case kindComposite:
		for _, p := range e.parts {
			switch p.kind {
			case partLiteral:
				literal += len(p.text)
			case partCapture:
				captures++
			case partWildcard:
				wildcards++
			}
		}
	}
	return captures, wildcards, literal
}
