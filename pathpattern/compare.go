package pathpattern

import (
	"cmp"
	"slices"
)

// Compare orders two patterns by specificity. It returns a negative number
// when a is more specific than b, a positive number when it is less
// specific and zero only when both have the same template. The ranking
// prefers, in order:
//
//  1. fewer captures
//  2. fewer wildcards ("*" and "**")
//  3. more literal bytes
//  4. no trailing "**"
//  5. a longer template
//  6. the lexically smaller template
//
// A nil pattern sorts after any other. Compare is meant for patterns that
// match the same path, but it is a total order over all patterns.
func Compare(a, b *Pattern) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	}

	sa, sb := a.specificity, b.specificity
	if c := cmp.Compare(sa.Captures, sb.Captures); c != 0 {
		return c
	}
	if c := cmp.Compare(sa.Wildcards, sb.Wildcards); c != 0 {
		return c
	}
	if c := cmp.Compare(sb.LiteralLength, sa.LiteralLength); c != 0 {
		return c
	}
	if a.multiWildcard != b.multiWildcard {
		if a.multiWildcard {
			return 1
		}
		return -1
	}
	if c := cmp.Compare(len(b.template), len(a.template)); c != 0 {
		return c
	}
	return cmp.Compare(a.template, b.template)
}

// MoreSpecific reports whether a ranks before b.
func MoreSpecific(a, b *Pattern) bool {
	return Compare(a, b) < 0
}

// SortBySpecificity sorts patterns from most to least specific.
func SortBySpecificity(patterns []*Pattern) {
	slices.SortStableFunc(patterns, Compare)
}

// MostSpecific returns the highest ranked pattern, or nil for an empty
// slice.
func MostSpecific(patterns []*Pattern) *Pattern {
	if len(patterns) == 0 {
		return nil
	}
	return slices.MinFunc(patterns, Compare)
}
