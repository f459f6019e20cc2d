// Package routeconfig loads route tables from YAML and builds registries
// from them.
//
// A route table looks like:
//
//	parser:
//	  separator: "/"
//	  case_sensitive: true
//	  match_optional_trailing_slash: true
//	routes:
//	  - name: user
//	    pattern: /users/{id:int}
//	    target: users
//	    metadata:
//	      team: core
//	groups:
//	  - prefix: /api/v1
//	    routes:
//	      - pattern: /orders/{id}
//	        target: orders
//
// Every template is compiled while loading, so a malformed table is
// rejected as a whole.
package routeconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/pathpattern/pathpattern"
)

// Config is a route table.
type Config struct {
	Parser ParserConfig `yaml:"parser,omitempty"`
	Routes []Route      `yaml:"routes,omitempty" validate:"dive"`
	Groups []Group      `yaml:"groups,omitempty" validate:"dive"`
}

// ParserConfig holds the parser options. Unset fields keep the
// pathpattern defaults.
type ParserConfig struct {
	Separator                  Separator `yaml:"separator,omitempty"`
	CaseSensitive              *bool     `yaml:"case_sensitive,omitempty"`
	MatchOptionalTrailingSlash *bool     `yaml:"match_optional_trailing_slash,omitempty"`
}

// Route binds a template to a target.
type Route struct {
	Name     string            `yaml:"name,omitempty" validate:"omitempty,max=128,routename"`
	Pattern  string            `yaml:"pattern"`
	Target   string            `yaml:"target" validate:"required"`
	Metadata map[string]string `yaml:"metadata,omitempty" validate:"dive,keys,required,endkeys"`
}

// Group applies a prefix to its routes and nested groups.
type Group struct {
	Prefix string  `yaml:"prefix"`
	Routes []Route `yaml:"routes,omitempty" validate:"dive"`
	Groups []Group `yaml:"groups,omitempty" validate:"dive"`
}

// Separator is a single-character segment separator. The zero value
// selects pathpattern.DefaultSeparator.
type Separator byte

// UnmarshalYAML decodes the separator from a one-character scalar.
func (s *Separator) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("routeconfig: line %d: separator must be a scalar", node.Line)
	}
	if len(node.Value) != 1 {
		return fmt.Errorf("routeconfig: line %d: separator must be a single character, got %q", node.Line, node.Value)
	}
	if err := pathpattern.ValidSeparator(node.Value[0]); err != nil {
		return fmt.Errorf("routeconfig: line %d: %w", node.Line, err)
	}
	*s = Separator(node.Value[0])
	return nil
}

// MarshalYAML encodes the separator as a string.
func (s Separator) MarshalYAML() (any, error) {
	return string(rune(s)), nil
}

// IsZero implements the yaml.v3 IsZeroer interface so that an unset
// separator is omitted.
func (s Separator) IsZero() bool {
	return s == 0
}

// Parser returns a parser configured with the options.
func (c ParserConfig) Parser() *pathpattern.Parser {
	var opts []pathpattern.Option
	if c.Separator != 0 {
		opts = append(opts, pathpattern.WithSeparator(byte(c.Separator)))
	}
	if c.CaseSensitive != nil {
		opts = append(opts, pathpattern.WithCaseSensitive(*c.CaseSensitive))
	}
	if c.MatchOptionalTrailingSlash != nil {
		opts = append(opts, pathpattern.WithMatchOptionalTrailingSlash(*c.MatchOptionalTrailingSlash))
	}
	return pathpattern.NewParser(opts...)
}

// Load reads and validates the route table at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("routeconfig: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a route table. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("routeconfig: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Marshal encodes the route table as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

var routeName = regexp.MustCompile(`^[A-Za-z0-9_.:-]+$`)

// validate checks the field rules declared in the struct tags. Field
// names in errors are the YAML keys.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("routename", func(fl validator.FieldLevel) bool { //nolint:errcheck
		return routeName.MatchString(fl.Field().String())
	})
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks the field rules declared in the struct tags, that names
// are unique and that every template, combined with its group prefixes,
// compiles.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return fmt.Errorf("routeconfig: %w", err)
	}

	parser := c.Parser.Parser()
	names := make(map[string]string)

	var check func(where string, prefix *pathpattern.Pattern, routes []Route, groups []Group) error
	check = func(where string, prefix *pathpattern.Pattern, routes []Route, groups []Group) error {
		for i, rt := range routes {
			at := fmt.Sprintf("%sroutes[%d]", where, i)
			if rt.Name != "" {
				if prev, ok := names[rt.Name]; ok {
					return fmt.Errorf("routeconfig: %s: name %q already used by %s", at, rt.Name, prev)
				}
				names[rt.Name] = at
			}
			if _, err := compile(parser, prefix, rt.Pattern); err != nil {
				return fmt.Errorf("routeconfig: %s: %w", at, err)
			}
		}

		for i, g := range groups {
			at := fmt.Sprintf("%sgroups[%d]", where, i)
			p, err := compile(parser, prefix, g.Prefix)
			if err != nil {
				return fmt.Errorf("routeconfig: %s: %w", at, err)
			}
			if err := check(at+".", p, g.Routes, g.Groups); err != nil {
				return err
			}
		}

		return nil
	}

	return check("", nil, c.Routes, c.Groups)
}

// compile parses template and joins it to prefix when one is given.
func compile(parser *pathpattern.Parser, prefix *pathpattern.Pattern, template string) (*pathpattern.Pattern, error) {
	p, err := parser.Parse(template)
	if err != nil {
		return nil, err
	}
	if prefix == nil {
		return p, nil
	}
	return prefix.Combine(p)
}

// fieldError reports a failed field rule by its YAML path, for example
// "groups[0].routes[1].target".
func fieldError(fe validator.FieldError) error {
	_, path, _ := strings.Cut(fe.Namespace(), ".")

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("routeconfig: %s is required", path)
	case "max":
		return fmt.Errorf("routeconfig: %s is longer than %s characters", path, fe.Param())
	}
	return fmt.Errorf("routeconfig: %s: invalid value %q (%s)", path, fe.Value(), fe.Tag())
}

// Filter returns a copy of c holding only the routes for which keep
// reports true. Groups left without routes are dropped.
func (c *Config) Filter(keep func(Route) bool) *Config {
	out := &Config{
		Parser: c.Parser,
		Routes: filterRoutes(c.Routes, keep),
		Groups: filterGroups(c.Groups, keep),
	}
	return out
}

func filterRoutes(routes []Route, keep func(Route) bool) []Route {
	var out []Route
	for _, rt := range routes {
		if keep(rt) {
			out = append(out, rt)
		}
	}
	return out
}

func filterGroups(groups []Group, keep func(Route) bool) []Group {
	var out []Group
	for _, g := range groups {
		fg := Group{
			Prefix: g.Prefix,
			Routes: filterRoutes(g.Routes, keep),
			Groups: filterGroups(g.Groups, keep),
		}
		if len(fg.Routes) > 0 || len(fg.Groups) > 0 {
			out = append(out, fg)
		}
	}
	return out
}
