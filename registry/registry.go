// Package registry keeps a set of compiled path patterns, each bound to a
// value, and finds the most specific pattern for a path.
//
// Templates are compiled when they are registered, so a malformed template
// fails at registration and never at lookup time. Lookups only test the
// patterns whose literal prefix is a prefix of the path; the prefixes are
// kept in a radix tree.
package registry

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	radix "github.com/armon/go-radix"
	"golang.org/x/text/cases"

	"github.com/vitalvas/pathpattern/pathpattern"
)

var (
	// ErrDuplicatePattern is returned when a template is registered twice.
	ErrDuplicatePattern = errors.New("registry: pattern already registered")

	// ErrDuplicateName is returned when a name is registered twice.
	ErrDuplicateName = errors.New("registry: name already registered")

	// ErrNotFound is returned when no entry has the given name or template.
	ErrNotFound = errors.New("registry: not found")

	// SkipAll is used as a return value from a WalkFunc to stop the walk.
	// It is not returned as an error by Walk.
	SkipAll = errors.New("skip remaining entries") //nolint:revive,staticcheck // mirrors fs.SkipAll
)

// Parser compiles templates. Both *pathpattern.Parser and
// *patterncache.Cache satisfy it.
type Parser interface {
	Parse(template string) (*pathpattern.Pattern, error)
}

// Entry is a registered pattern and its value.
type Entry[T any] struct {
	Name    string
	Pattern *pathpattern.Pattern
	Value   T
}

// Match is a successful lookup.
type Match[T any] struct {
	*pathpattern.MatchResult
	Entry *Entry[T]
}

// WalkFunc is called by Walk for every entry in registration order.
type WalkFunc[T any] func(e *Entry[T]) error

// Registry maps path patterns to values. It is safe for concurrent use;
// lookups run in parallel with each other and are serialized with
// registrations.
type Registry[T any] struct {
	mu            sync.RWMutex
	parser        Parser
	caseSensitive bool
	entries       []*Entry[T]
	byTemplate    map[string]*Entry[T]
	named         map[string]*Entry[T]
	// index maps a literal prefix to the entries sharing it.
	index *radix.Tree
}

// New returns an empty registry compiling templates with parser. A nil
// parser means pathpattern.DefaultParser.
func New[T any](parser Parser) *Registry[T] {
	if parser == nil {
		parser = pathpattern.DefaultParser
	}

	// The empty template always compiles and carries the parser options.
	caseSensitive := true
	if p, err := parser.Parse(""); err == nil {
		caseSensitive = p.CaseSensitive()
	}

	return &Registry[T]{
		parser:        parser,
		caseSensitive: caseSensitive,
		byTemplate:    make(map[string]*Entry[T]),
		named:         make(map[string]*Entry[T]),
		index:         radix.New(),
	}
}

// Register compiles template and binds it to value.
func (r *Registry[T]) Register(template string, value T) (*Entry[T], error) {
	return r.RegisterNamed("", template, value)
}

// RegisterNamed is like Register and also makes the entry reachable by
// name through Get and URL. An empty name registers an unnamed entry.
func (r *Registry[T]) RegisterNamed(name, template string, value T) (*Entry[T], error) {
	p, err := r.parser.Parse(template)
	if err != nil {
		return nil, err
	}
	return r.add(name, p, value)
}

func (r *Registry[T]) add(name string, p *pathpattern.Pattern, value T) (*Entry[T], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byTemplate[p.String()]; ok {
		return nil, fmt.Errorf("%w: %q", ErrDuplicatePattern, p.String())
	}
	if name != "" {
		if _, ok := r.named[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
		}
	}

	e := &Entry[T]{Name: name, Pattern: p, Value: value}

	r.entries = append(r.entries, e)
	r.byTemplate[p.String()] = e
	if name != "" {
		r.named[name] = e
	}

	key := r.key(p.LiteralPrefix())
	var bucket []*Entry[T]
	if v, ok := r.index.Get(key); ok {
		bucket = v.([]*Entry[T])
	}
	r.index.Insert(key, append(bucket, e))

	return e, nil
}

// Remove unregisters the entry with the given template.
func (r *Registry[T]) Remove(template string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.byTemplate[template]
	if !ok {
		return fmt.Errorf("%w: pattern %q", ErrNotFound, template)
	}

	delete(r.byTemplate, template)
	if e.Name != "" {
		delete(r.named, e.Name)
	}
	r.entries = slices.DeleteFunc(r.entries, func(x *Entry[T]) bool { return x == e })

	key := r.key(e.Pattern.LiteralPrefix())
	if v, ok := r.index.Get(key); ok {
		bucket := slices.DeleteFunc(v.([]*Entry[T]), func(x *Entry[T]) bool { return x == e })
		if len(bucket) == 0 {
			r.index.Delete(key)
		} else {
			r.index.Insert(key, bucket)
		}
	}

	return nil
}

// key folds s for the index when patterns compare case-insensitively.
// Full case folding maps every rune that strings.EqualFold treats as equal
// to the same key, so the index never hides a matching pattern.
func (r *Registry[T]) key(s string) string {
	if r.caseSensitive {
		return s
	}
	// A Caser keeps state and must not be shared between goroutines.
	return cases.Fold().String(s)
}

// candidates returns the entries whose literal prefix is a prefix of path.
// The caller must hold the read lock.
func (r *Registry[T]) candidates(path string) []*Entry[T] {
	var out []*Entry[T]
	r.index.WalkPath(r.key(path), func(_ string, v any) bool {
		out = append(out, v.([]*Entry[T])...)
		return false
	})
	return out
}

// Lookup returns the most specific entry matching path.
func (r *Registry[T]) Lookup(path string) (*Match[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *Match[T]
	for _, e := range r.candidates(path) {
		if best != nil && pathpattern.Compare(best.Entry.Pattern, e.Pattern) < 0 {
			continue
		}
		res, ok := e.Pattern.MatchAndExtract(path)
		if !ok {
			continue
		}
		best = &Match[T]{MatchResult: res, Entry: e}
	}

	return best, best != nil
}

// LookupAll returns every entry matching path, most specific first.
func (r *Registry[T]) LookupAll(path string) []*Match[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Match[T]
	for _, e := range r.candidates(path) {
		if res, ok := e.Pattern.MatchAndExtract(path); ok {
			out = append(out, &Match[T]{MatchResult: res, Entry: e})
		}
	}

	slices.SortFunc(out, func(a, b *Match[T]) int {
		return pathpattern.Compare(a.Entry.Pattern, b.Entry.Pattern)
	})

	return out
}

// Get returns the entry registered with the given name.
func (r *Registry[T]) Get(name string) (*Entry[T], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.named[name]
	return e, ok
}

// URL builds a path for the named entry. Variables are given as key/value
// pairs:
//
//	r.URL("article", "category", "technology", "id", "42")
func (r *Registry[T]) URL(name string, pairs ...string) (string, error) {
	if len(pairs)%2 != 0 {
		return "", fmt.Errorf("registry: number of parameters must be multiple of 2, got %v", pairs)
	}

	e, ok := r.Get(name)
	if !ok {
		return "", fmt.Errorf("%w: name %q", ErrNotFound, name)
	}

	vars := make(map[string]string, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		vars[pairs[i]] = pairs[i+1]
	}

	return e.Pattern.Expand(vars)
}

// Len returns the number of registered entries.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Walk calls fn for every entry in registration order. The registry may be
// modified from fn; the walk covers the entries present when it started.
func (r *Registry[T]) Walk(fn WalkFunc[T]) error {
	r.mu.RLock()
	entries := slices.Clone(r.entries)
	r.mu.RUnlock()

	for _, e := range entries {
		if err := fn(e); err != nil {
			if errors.Is(err, SkipAll) {
				return nil
			}
			return err
		}
	}
	return nil
}
