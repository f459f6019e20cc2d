package pathpattern

import (
	"regexp"
	"sync"
)

// constraintCache holds compiled capture constraints keyed by their final
// expression source (anchors and flags included). Constraints repeat across
// templates ("[0-9]+" and friends) and the set of distinct sources is
// bounded by the configured templates, so entries are never evicted.
var constraintCache sync.Map

// anchor wraps expr so that it must match a whole value.
func anchor(expr string, caseSensitive bool) string {
	if caseSensitive {
		return "^(?:" + expr + ")$"
	}
	return "(?i)^(?:" + expr + ")$"
}

// compileConstraint returns a shared compiled regexp for expr anchored to
// the whole value.
func compileConstraint(expr string, caseSensitive bool) (*regexp.Regexp, error) {
	return compileCached(anchor(expr, caseSensitive))
}

// compileCached compiles src once per process.
func compileCached(src string) (*regexp.Regexp, error) {
	if v, ok := constraintCache.Load(src); ok {
		return v.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(src)
	if err != nil {
		return nil, err
	}

	actual, _ := constraintCache.LoadOrStore(src, re)

	return actual.(*regexp.Regexp), nil
}
