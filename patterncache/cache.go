// Package patterncache memoizes compiled path patterns.
//
// Compiling a template is far more expensive than matching it. Callers that
// receive templates at run time (for example from a request or a config
// reload) can put a Cache in front of a pathpattern.Parser to compile each
// template once.
package patterncache

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/vitalvas/pathpattern/pathpattern"
)

// DefaultSize is the capacity used when New is given a size of zero.
const DefaultSize = 1024

// Cache is a bounded, least-recently-used cache of compiled patterns keyed
// by template. It is safe for concurrent use.
type Cache struct {
	parser *pathpattern.Parser
	lru    *lru.Cache[string, *pathpattern.Pattern]
}

// New returns a cache holding up to size patterns compiled by parser. A nil
// parser means pathpattern.DefaultParser.
func New(parser *pathpattern.Parser, size int) (*Cache, error) {
	if parser == nil {
		parser = pathpattern.DefaultParser
	}
	if size == 0 {
		size = DefaultSize
	}
	if size < 0 {
		return nil, fmt.Errorf("patterncache: invalid size %d", size)
	}

	l, err := lru.New[string, *pathpattern.Pattern](size)
	if err != nil {
		return nil, fmt.Errorf("patterncache: %w", err)
	}

	return &Cache{parser: parser, lru: l}, nil
}

// Parse returns the compiled pattern for template, compiling it on a miss.
// Failed parses are not cached.
func (c *Cache) Parse(template string) (*pathpattern.Pattern, error) {
	if p, ok := c.lru.Get(template); ok {
		return p, nil
	}

	p, err := c.parser.Parse(template)
	if err != nil {
		return nil, err
	}
	c.lru.Add(template, p)

	return p, nil
}

// Parser returns the parser used on cache misses.
func (c *Cache) Parser() *pathpattern.Parser {
	return c.parser
}

// Len returns the number of cached patterns.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every cached pattern.
func (c *Cache) Purge() {
	c.lru.Purge()
}
