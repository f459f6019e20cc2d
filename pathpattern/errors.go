package pathpattern

import (
	"errors"
	"fmt"
)

// Sentinel errors describing why a template was rejected. A *ParseError
// unwraps to exactly one of them.
var (
	ErrUnbalancedBraces   = errors.New("unbalanced braces")
	ErrEmptyCaptureName   = errors.New("missing capture name")
	ErrInvalidCaptureName = errors.New("invalid character in capture name")
	ErrDuplicateCapture   = errors.New("duplicated capture name")
	ErrMisplacedWildcard  = errors.New("multi-segment wildcard must be the final segment")
	ErrMissingRegexp      = errors.New("missing constraint after ':'")
	ErrInvalidRegexp      = errors.New("invalid capture constraint")
)

// ParseError reports a template that failed to compile.
type ParseError struct {
	// Pattern is the template text passed to Parse.
	Pattern string
	// Pos is the byte offset of the offending character.
	Pos int
	// Kind is one of the Err* sentinels of this package.
	Kind error
	// Detail optionally names the offending token.
	Detail string
	// Cause is the underlying error, set for ErrInvalidRegexp.
	Cause error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("pathpattern: %v at position %d in %q", e.Kind, e.Pos, e.Pattern)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *ParseError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}
