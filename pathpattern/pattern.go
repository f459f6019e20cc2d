package pathpattern

import (
	"errors"
	"fmt"
	"strings"
)

// Errors returned by Pattern.Expand.
var (
	ErrMissingVariable = errors.New("pathpattern: missing variable")
	ErrInvalidVariable = errors.New("pathpattern: variable does not satisfy its constraint")
	ErrNotExpandable   = errors.New("pathpattern: wildcard cannot be expanded")
)

// Specificity summarizes how constrained a pattern is. See Compare.
type Specificity struct {
	// Captures is the number of capture variables.
	Captures int
	// Wildcards counts "*" and "**", including "*" inside a segment.
	Wildcards int
	// LiteralLength is the number of literal bytes, separators included.
	LiteralLength int
}

// Pattern is a compiled template. It is immutable and safe for concurrent
// use by any number of goroutines.
type Pattern struct {
	template          string
	elements          []element
	parser            Parser
	varNames          []string
	specificity       Specificity
	multiWildcard     bool
	endsWithSeparator bool
}

// String returns the template the pattern was compiled from.
func (p *Pattern) String() string {
	return p.template
}

// Separator returns the segment separator.
func (p *Pattern) Separator() byte {
	return p.parser.separator
}

// CaseSensitive reports whether literal text is compared case-sensitively.
func (p *Pattern) CaseSensitive() bool {
	return p.parser.caseSensitive
}

// MatchOptionalTrailingSlash reports whether a trailing separator in the
// path is tolerated.
func (p *Pattern) MatchOptionalTrailingSlash() bool {
	return p.parser.matchOptionalTrailingSlash
}

// VarNames returns the capture names in declaration order.
func (p *Pattern) VarNames() []string {
	return append([]string(nil), p.varNames...)
}

// Specificity returns the counts used to rank the pattern.
func (p *Pattern) Specificity() Specificity {
	return p.specificity
}

// HasMultiWildcard reports whether the pattern ends with "**".
func (p *Pattern) HasMultiWildcard() bool {
	return p.multiWildcard
}

// IsCatchAll reports whether the pattern matches every path ("**" or "/**").
func (p *Pattern) IsCatchAll() bool {
	switch len(p.elements) {
	case 1:
		return p.elements[0].kind == kindMultiWildcard
	case 2:
		return p.elements[0].kind == kindSeparator && p.elements[1].kind == kindMultiWildcard
	}
	return false
}

// LiteralPrefix returns the fixed text every matching path starts with.
// For "/foo/**" it is "/foo", since that pattern also matches "/foo".
func (p *Pattern) LiteralPrefix() string {
	var b strings.Builder
	for i := range p.elements {
		e := &p.elements[i]
		switch e.kind {
		case kindSeparator:
			if i+1 < len(p.elements) && p.elements[i+1].kind == kindMultiWildcard {
				return b.String()
			}
			b.WriteByte(p.parser.separator)
		case kindLiteral:
			b.WriteString(e.text)
		default:
			return b.String()
		}
	}
	return b.String()
}

// Expand builds a path from the pattern by substituting capture values.
// Every value must satisfy its constraint and must not contain the
// separator. Patterns with wildcards cannot be expanded.
func (p *Pattern) Expand(vars map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(p.template))

	value := func(name string, m varMatcher) (string, error) {
		v, ok := vars[name]
		if !ok {
			return "", fmt.Errorf("%w %q in %q", ErrMissingVariable, name, p.template)
		}
		if v == "" || strings.IndexByte(v, p.parser.separator) >= 0 || (m != nil && !m.MatchString(v)) {
			return "", fmt.Errorf("%w: %q=%q in %q", ErrInvalidVariable, name, v, p.template)
		}
		return v, nil
	}

	for i := range p.elements {
		e := &p.elements[i]
		switch e.kind {
		case kindSeparator:
			b.WriteByte(p.parser.separator)
		case kindLiteral:
			b.WriteString(e.text)
		case kindCapture, kindRegexCapture:
			v, err := value(e.text, e.matcher)
			if err != nil {
				return "", err
			}
			b.WriteString(v)
		case kindComposite:
			if err := p.expandComposite(&b, e, value); err != nil {
				return "", err
			}
		default:
			return "", fmt.Errorf("%w: %q", ErrNotExpandable, p.template)
		}
	}

	return b.String(), nil
}

func (p *Pattern) expandComposite(b *strings.Builder, e *element, value func(string, varMatcher) (string, error)) error {
	var seg strings.Builder
	for _, pt := range e.parts {
		switch pt.kind {
		case partLiteral:
			seg.WriteString(pt.text)
		case partWildcard:
			return fmt.Errorf("%w: %q", ErrNotExpandable, p.template)
		case partCapture:
			v, err := value(pt.text, nil)
			if err != nil {
				return err
			}
			seg.WriteString(v)
		}
	}

	// Constraints of a composite segment only make sense for the whole
	// segment, so the result is checked against the compiled expression.
	s := seg.String()
	if !e.matchComposite(s, nil) {
		return fmt.Errorf("%w: segment %q in %q", ErrInvalidVariable, s, p.template)
	}
	b.WriteString(s)
	return nil
}

// Combine joins p with other the way a group prefix is applied to the
// templates registered below it:
//
//	"/hotels"   + "/bookings" = "/hotels/bookings"
//	"/hotels/*" + "/bookings" = "/hotels/bookings"
//	"/hotels/**"+ "/bookings" = "/hotels/bookings"
//	"/*"        + "/hotel"    = "/hotel"
//
// The result is compiled with p's parser options.
func (p *Pattern) Combine(other *Pattern) (*Pattern, error) {
	a, b := p.template, other.template
	switch {
	case a == "" && b == "":
		return p, nil
	case a == "":
		return other, nil
	case b == "":
		return p, nil
	}

	// A capture-free prefix that already covers other adds nothing.
	if a != b && p.specificity.Captures == 0 && p.Matches(b) {
		return p.parser.Parse(b)
	}

	sep := string(p.parser.separator)
	switch {
	case strings.HasSuffix(a, sep+"**"):
		a = a[:len(a)-2]
	case strings.HasSuffix(a, sep+"*"):
		a = a[:len(a)-1]
	}

	return p.parser.Parse(join(a, b, p.parser.separator))
}

// join concatenates two templates with exactly one separator between them.
func join(a, b string, sep byte) string {
	aSep := a != "" && a[len(a)-1] == sep
	bSep := b != "" && b[0] == sep
	switch {
	case aSep && bSep:
		return a + b[1:]
	case aSep || bSep:
		return a + b
	}
	return a + string(sep) + b
}
