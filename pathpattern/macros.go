package pathpattern

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"golang.org/x/net/idna"
)

// varMatcher validates a single capture value.
// *regexp.Regexp satisfies this interface.
type varMatcher interface {
	MatchString(string) bool
	String() string
}

// lengthMatcher wraps a regexp with an additional maximum length constraint.
type lengthMatcher struct {
	re     *regexp.Regexp
	maxLen int
}

func (m *lengthMatcher) MatchString(s string) bool {
	return len(s) <= m.maxLen && m.re.MatchString(s)
}

func (m *lengthMatcher) String() string {
	return m.re.String()
}

// uuidMatcher accepts the canonical hyphenated form only; uuid.Validate
// alone would also accept braces, urn prefixes and bare hex.
type uuidMatcher struct {
	re *regexp.Regexp
}

func (m *uuidMatcher) MatchString(s string) bool {
	return m.re.MatchString(s) && uuid.Validate(s) == nil
}

func (m *uuidMatcher) String() string {
	return m.re.String()
}

// domainMatcher checks the RFC 1123 shape with a regexp, then rejects
// labels that do not survive IDNA lookup processing (for example a
// malformed "xn--" label).
type domainMatcher struct {
	lengthMatcher
}

func (m *domainMatcher) MatchString(s string) bool {
	if !m.lengthMatcher.MatchString(s) {
		return false
	}
	_, err := idna.Lookup.ToASCII(s)
	return err == nil
}

// macro holds a pattern string and its pre-compiled validation matcher.
type macro struct {
	pattern string
	matcher varMatcher
	// strict is true when the matcher checks more than its regexp does.
	strict bool
}

// patternMacros maps macro names to their compiled patterns.
// Used in capture definitions: {name:macro}.
var patternMacros = func() map[string]macro {
	raw := map[string]string{
		"uuid":     `[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`,
		"int":      `[0-9]+`,
		"float":    `[0-9]*\.?[0-9]+`,
		"slug":     `[a-zA-Z0-9]+(?:-[a-zA-Z0-9]+)*`,
		"alpha":    `[a-zA-Z]+`,
		"alphanum": `[a-zA-Z0-9]+`,
		"date":     `[0-9]{4}-[0-9]{2}-[0-9]{2}`,
		"hex":      `[0-9a-fA-F]+`,
		// RFC 1035/1123: labels 1-63 chars, total up to 253 chars.
		"domain": `(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)*[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?`,
	}

	m := make(map[string]macro, len(raw))
	for name, pattern := range raw {
		re := regexp.MustCompile(fmt.Sprintf("^(?:%s)$", pattern))

		var (
			matcher varMatcher = re
			strict  bool
		)
		switch name {
		case "uuid":
			matcher, strict = &uuidMatcher{re: re}, true
		case "domain":
			matcher, strict = &domainMatcher{lengthMatcher{re: re, maxLen: 253}}, true
		}

		m[name] = macro{
			pattern: pattern,
			matcher: matcher,
			strict:  strict,
		}
	}

	return m
}()

// expandMacro returns the regex pattern string and a pre-compiled
// validation matcher for a macro name. If the name is not a known macro,
// it returns the input unchanged with a nil matcher (caller must compile).
func expandMacro(pattern string) (string, varMatcher) {
	if m, ok := patternMacros[pattern]; ok {
		return m.pattern, m.matcher
	}

	return pattern, nil
}

// strictMacro returns the matcher of a macro whose validation goes beyond
// its regexp, or nil.
func strictMacro(pattern string) varMatcher {
	if m, ok := patternMacros[pattern]; ok && m.strict {
		return m.matcher
	}
	return nil
}

// Macros returns the names of the built-in capture constraints.
func Macros() []string {
	names := make([]string, 0, len(patternMacros))
	for name := range patternMacros {
		names = append(names, name)
	}
	return names
}
