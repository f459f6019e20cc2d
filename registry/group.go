package registry

import "github.com/vitalvas/pathpattern/pathpattern"

// Group registers entries below a common prefix. Templates are joined to
// the prefix with pathpattern.Pattern.Combine.
type Group[T any] struct {
	r      *Registry[T]
	prefix *pathpattern.Pattern
}

// Group returns a group for prefix.
func (r *Registry[T]) Group(prefix string) (*Group[T], error) {
	p, err := r.parser.Parse(prefix)
	if err != nil {
		return nil, err
	}
	return &Group[T]{r: r, prefix: p}, nil
}

// Prefix returns the group prefix template.
func (g *Group[T]) Prefix() string {
	return g.prefix.String()
}

// Register binds the combined template to value.
func (g *Group[T]) Register(template string, value T) (*Entry[T], error) {
	return g.RegisterNamed("", template, value)
}

// RegisterNamed binds the combined template to value under name.
func (g *Group[T]) RegisterNamed(name, template string, value T) (*Entry[T], error) {
	p, err := g.combine(template)
	if err != nil {
		return nil, err
	}
	return g.r.add(name, p, value)
}

// Group returns a nested group whose prefix is combined with g's.
func (g *Group[T]) Group(prefix string) (*Group[T], error) {
	p, err := g.combine(prefix)
	if err != nil {
		return nil, err
	}
	return &Group[T]{r: g.r, prefix: p}, nil
}

func (g *Group[T]) combine(template string) (*pathpattern.Pattern, error) {
	p, err := g.r.parser.Parse(template)
	if err != nil {
		return nil, err
	}
	return g.prefix.Combine(p)
}
