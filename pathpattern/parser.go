package pathpattern

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultSeparator is the segment separator used unless WithSeparator is
// given.
const DefaultSeparator byte = '/'

// defaultCapturePattern matches a capture inside a composite segment.
const defaultCapturePattern = `.+`

// Option configures a Parser.
type Option func(*Parser)

// WithSeparator sets the segment separator. It panics when b cannot be
// used as a separator; see ValidSeparator.
func WithSeparator(b byte) Option {
	if err := ValidSeparator(b); err != nil {
		panic(err)
	}
	return func(p *Parser) {
		p.separator = b
	}
}

// WithCaseSensitive controls whether literal text and constraints are
// compared case-sensitively. Defaults to true.
func WithCaseSensitive(v bool) Option {
	return func(p *Parser) {
		p.caseSensitive = v
	}
}

// WithMatchOptionalTrailingSlash controls whether a pattern without a
// trailing separator also matches a path that has one. Defaults to true.
func WithMatchOptionalTrailingSlash(v bool) Option {
	return func(p *Parser) {
		p.matchOptionalTrailingSlash = v
	}
}

// ValidSeparator returns an error if b is reserved by the template syntax.
func ValidSeparator(b byte) error {
	switch {
	case b == '{', b == '}', b == '*', b == ':':
		return fmt.Errorf("pathpattern: %q is reserved by the template syntax", b)
	case b < 0x21 || b >= utf8.RuneSelf:
		return fmt.Errorf("pathpattern: separator %q must be a printable ASCII character", b)
	}
	return nil
}

// Parser compiles templates into Patterns. A Parser holds configuration
// only and is safe for concurrent use; every Parse call works on its own
// parse context.
type Parser struct {
	separator                  byte
	caseSensitive              bool
	matchOptionalTrailingSlash bool
}

// NewParser returns a parser with the given options applied over the
// defaults: "/" separator, case-sensitive, optional trailing slash.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		separator:                  DefaultSeparator,
		caseSensitive:              true,
		matchOptionalTrailingSlash: true,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DefaultParser is the parser used by Parse and MustParse.
var DefaultParser = NewParser()

// Parse compiles template with DefaultParser.
func Parse(template string) (*Pattern, error) {
	return DefaultParser.Parse(template)
}

// MustParse is like Parse but panics if the template cannot be compiled.
// It simplifies safe initialization of global variables.
func MustParse(template string) *Pattern {
	p, err := Parse(template)
	if err != nil {
		panic(err)
	}
	return p
}

// Separator returns the segment separator.
func (p *Parser) Separator() byte { return p.separator }

// CaseSensitive reports whether patterns compare text case-sensitively.
func (p *Parser) CaseSensitive() bool { return p.caseSensitive }

// MatchOptionalTrailingSlash reports whether a trailing separator in the
// path is tolerated.
func (p *Parser) MatchOptionalTrailingSlash() bool { return p.matchOptionalTrailingSlash }

// Parse compiles template. The returned error is always a *ParseError.
//
// Inside a constraint, braces that are escaped (`\{`) or sit in a
// character class (`[^}]`) do not count towards brace balance.
func (p *Parser) Parse(template string) (*Pattern, error) {
	c := parseContext{
		opts:     *p,
		template: template,
	}
	return c.parse()
}

// parseContext is the mutable state of a single Parse call.
type parseContext struct {
	opts     Parser
	template string
	elements []element
	names    []string
	// segStart is the offset of the segment being scanned.
	segStart int
	// spans holds [start, end) offsets of the captures in the current segment.
	spans [][2]int
}

func (c *parseContext) fail(pos int, kind error, detail string) *ParseError {
	return &ParseError{
		Pattern: c.template,
		Pos:     pos,
		Kind:    kind,
		Detail:  detail,
	}
}

func (c *parseContext) parse() (*Pattern, error) {
	t := c.template
	sep := c.opts.separator

	var (
		depth        int
		captureStart int
		colon        = -1
	)

	// classFirst is the offset of the first member of an open regexp
	// character class inside a constraint, or -1.
	classFirst := -1

	for i := 0; i < len(t); i++ {
		ch := t[i]

		if classFirst >= 0 {
			switch {
			case ch == '\\':
				i++
			case ch == '[' && strings.HasPrefix(t[i+1:], ":"):
				if j := strings.Index(t[i+2:], ":]"); j >= 0 {
					i += j + 3
				}
			case ch == ']' && i > classFirst:
				classFirst = -1
			}
			continue
		}

		if depth > 0 && colon >= 0 {
			switch ch {
			case '\\':
				i++
				continue
			case '[':
				classFirst = i + 1
				if strings.HasPrefix(t[i+1:], "^") {
					classFirst++
				}
				continue
			}
		}

		if depth > 0 {
			switch ch {
			case '{':
				// Braces are allowed inside a constraint ("{id:[0-9]{3}}"),
				// never inside the name.
				if colon < 0 {
					return nil, c.fail(i, ErrUnbalancedBraces, "'{' inside capture name")
				}
				depth++
			case '}':
				if depth--; depth == 0 {
					c.spans = append(c.spans, [2]int{captureStart, i + 1})
					colon = -1
				}
			case ':':
				if colon < 0 {
					colon = i
				}
			}
			continue
		}

		switch ch {
		case sep:
			if err := c.closeSegment(i); err != nil {
				return nil, err
			}
			c.elements = append(c.elements, element{kind: kindSeparator, pos: i})
			c.segStart = i + 1
		case '{':
			depth = 1
			captureStart = i
		case '}':
			return nil, c.fail(i, ErrUnbalancedBraces, "unexpected '}'")
		}
	}

	if depth > 0 {
		return nil, c.fail(captureStart, ErrUnbalancedBraces, "missing '}'")
	}
	if err := c.closeSegment(len(t)); err != nil {
		return nil, err
	}
	if err := c.checkMultiWildcard(); err != nil {
		return nil, err
	}

	return c.build(), nil
}

// closeSegment compiles t[segStart:end] into an element.
func (c *parseContext) closeSegment(end int) error {
	start := c.segStart
	raw := c.template[start:end]
	spans := c.spans
	c.spans = c.spans[:0]

	if raw == "" {
		return nil
	}

	if len(spans) == 0 {
		switch {
		case raw == "**":
			c.elements = append(c.elements, element{kind: kindMultiWildcard, pos: start})
			return nil
		case strings.Contains(raw, "**"):
			return c.fail(start+strings.Index(raw, "**"), ErrMisplacedWildcard, raw)
		case raw == "*":
			c.elements = append(c.elements, element{kind: kindWildcard, pos: start})
			return nil
		case strings.IndexByte(raw, '*') < 0:
			c.elements = append(c.elements, element{kind: kindLiteral, pos: start, text: raw})
			return nil
		}
	}

	if len(spans) == 1 && spans[0][0] == start && spans[0][1] == end {
		e, err := c.captureElement(spans[0][0], spans[0][1])
		if err != nil {
			return err
		}
		c.elements = append(c.elements, e)
		return nil
	}

	e, err := c.compositeElement(start, end, spans)
	if err != nil {
		return err
	}
	c.elements = append(c.elements, e)
	return nil
}

// capture is the parsed form of "{name}" or "{name:constraint}".
type capture struct {
	name       string
	constraint string
	// pattern is the regexp source after macro expansion.
	pattern string
	// macro is the pre-compiled matcher of a known macro.
	macro varMatcher
}

// parseCapture validates the capture spanning t[start:end].
func (c *parseContext) parseCapture(start, end int) (capture, error) {
	inner := c.template[start+1 : end-1]
	name, constraint, hasColon := strings.Cut(inner, ":")

	if name == "" {
		return capture{}, c.fail(start+1, ErrEmptyCaptureName, c.template[start:end])
	}
	if i := invalidNameIndex(name); i >= 0 {
		r, _ := utf8.DecodeRuneInString(name[i:])
		return capture{}, c.fail(start+1+i, ErrInvalidCaptureName, strconv.QuoteRune(r))
	}
	for _, n := range c.names {
		if n == name {
			return capture{}, c.fail(start+1, ErrDuplicateCapture, name)
		}
	}
	c.names = append(c.names, name)

	if !hasColon {
		return capture{name: name}, nil
	}

	constraintPos := start + 2 + len(name)
	if constraint == "" {
		return capture{}, c.fail(constraintPos, ErrMissingRegexp, name)
	}

	pattern, macro := expandMacro(constraint)
	if macro == nil {
		// Validate on its own first: an expression such as "a)|(b" would
		// otherwise escape the anchoring group.
		if _, err := syntax.Parse(pattern, syntax.Perl); err != nil {
			pe := c.fail(constraintPos, ErrInvalidRegexp, constraint)
			pe.Cause = err
			return capture{}, pe
		}
	}

	return capture{
		name:       name,
		constraint: constraint,
		pattern:    pattern,
		macro:      macro,
	}, nil
}

func (c *parseContext) captureElement(start, end int) (element, error) {
	cp, err := c.parseCapture(start, end)
	if err != nil {
		return element{}, err
	}

	if cp.constraint == "" {
		return element{kind: kindCapture, pos: start, text: cp.name}, nil
	}

	matcher := cp.macro
	if matcher == nil {
		re, err := compileConstraint(cp.pattern, c.opts.caseSensitive)
		if err != nil {
			pe := c.fail(start+2+len(cp.name), ErrInvalidRegexp, cp.constraint)
			pe.Cause = err
			return element{}, pe
		}
		matcher = re
	}

	return element{
		kind:       kindRegexCapture,
		pos:        start,
		text:       cp.name,
		constraint: cp.constraint,
		matcher:    matcher,
	}, nil
}

// compositeElement compiles a segment that mixes literal text, captures
// and '*' into one anchored regexp.
func (c *parseContext) compositeElement(start, end int, spans [][2]int) (element, error) {
	var (
		parts []part
		src   strings.Builder
		n     int
	)

	addLiteral := func(from, to int) error {
		text := c.template[from:to]
		if i := strings.Index(text, "**"); i >= 0 {
			return c.fail(from+i, ErrMisplacedWildcard, c.template[start:end])
		}
		for text != "" {
			lit, rest, star := strings.Cut(text, "*")
			if lit != "" {
				parts = append(parts, part{kind: partLiteral, text: lit})
				src.WriteString(regexp.QuoteMeta(lit))
			}
			if star {
				parts = append(parts, part{kind: partWildcard})
				src.WriteString(`.*`)
			}
			text = rest
		}
		return nil
	}

	pos := start
	for _, sp := range spans {
		if err := addLiteral(pos, sp[0]); err != nil {
			return element{}, err
		}
		cp, err := c.parseCapture(sp[0], sp[1])
		if err != nil {
			return element{}, err
		}

		pattern := cp.pattern
		if pattern == "" {
			pattern = defaultCapturePattern
		}
		fmt.Fprintf(&src, "(?P<pp_%d>%s)", n, pattern)

		parts = append(parts, part{
			kind:       partCapture,
			text:       cp.name,
			constraint: cp.constraint,
			pattern:    pattern,
			matcher:    strictMacro(cp.constraint),
			group:      n,
		})
		n++
		pos = sp[1]
	}
	if err := addLiteral(pos, end); err != nil {
		return element{}, err
	}

	re, err := compileConstraint(src.String(), c.opts.caseSensitive)
	if err != nil {
		pe := c.fail(start, ErrInvalidRegexp, c.template[start:end])
		pe.Cause = err
		return element{}, pe
	}

	strict := false
	for i := range parts {
		if parts[i].kind != partCapture {
			continue
		}
		parts[i].group = re.SubexpIndex(fmt.Sprintf("pp_%d", parts[i].group))
		if parts[i].matcher != nil {
			strict = true
		}
	}

	return element{
		kind:   kindComposite,
		pos:    start,
		parts:  parts,
		re:     re,
		strict: strict,
	}, nil
}

// checkMultiWildcard enforces that "**" is the last element, optionally
// followed by one trailing separator.
func (c *parseContext) checkMultiWildcard() error {
	last := len(c.elements) - 1
	for i, e := range c.elements {
		if e.kind != kindMultiWildcard {
			continue
		}
		if i == last || (i == last-1 && c.elements[last].kind == kindSeparator) {
			continue
		}
		return c.fail(e.pos, ErrMisplacedWildcard, "")
	}
	return nil
}

func (c *parseContext) build() *Pattern {
	p := &Pattern{
		template: c.template,
		elements: c.elements,
		parser:   c.opts,
		varNames: c.names,
	}

	for i := range p.elements {
		e := &p.elements[i]
		captures, wildcards, literal := e.counts()
		p.specificity.Captures += captures
		p.specificity.Wildcards += wildcards
		p.specificity.LiteralLength += literal
		if e.kind == kindMultiWildcard {
			p.multiWildcard = true
		}
	}
	if n := len(p.elements); n > 0 {
		p.endsWithSeparator = p.elements[n-1].kind == kindSeparator
	}

	return p
}

// invalidNameIndex returns the byte offset of the first character that is
// not allowed in a capture name, or -1. Names start with a letter or '_'
// and continue with letters, digits, '_' or '-'.
func invalidNameIndex(name string) int {
	for i, r := range name {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && (r == '-' || unicode.IsDigit(r)):
		default:
			return i
		}
	}
	return -1
}
