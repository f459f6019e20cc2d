package routeconfig

import (
	"fmt"

	"github.com/vitalvas/pathpattern/registry"
)

// Build returns a registry holding every route of cfg, compiled with the
// configured parser options.
func Build(cfg *Config) (*registry.Registry[Route], error) {
	return BuildWith(cfg, cfg.Parser.Parser())
}

// BuildWith is like Build but compiles templates with parser, which must
// apply the same options as cfg.Parser (for example a patterncache.Cache
// wrapping cfg.Parser.Parser()).
func BuildWith(cfg *Config, parser registry.Parser) (*registry.Registry[Route], error) {
	r := registry.New[Route](parser)

	for i, rt := range cfg.Routes {
		if _, err := r.RegisterNamed(rt.Name, rt.Pattern, rt); err != nil {
			return nil, fmt.Errorf("routeconfig: routes[%d]: %w", i, err)
		}
	}

	for i, g := range cfg.Groups {
		at := fmt.Sprintf("groups[%d]", i)
		grp, err := r.Group(g.Prefix)
		if err != nil {
			return nil, fmt.Errorf("routeconfig: %s: %w", at, err)
		}
		if err := buildGroup(grp, at, g); err != nil {
			return nil, err
		}
	}

	return r, nil
}

func buildGroup(grp *registry.Group[Route], where string, g Group) error {
	for i, rt := range g.Routes {
		if _, err := grp.RegisterNamed(rt.Name, rt.Pattern, rt); err != nil {
			return fmt.Errorf("routeconfig: %s.routes[%d]: %w", where, i, err)
		}
	}

	for i, sub := range g.Groups {
		at := fmt.Sprintf("%s.groups[%d]", where, i)
		child, err := grp.Group(sub.Prefix)
		if err != nil {
			return fmt.Errorf("routeconfig: %s: %w", at, err)
		}
		if err := buildGroup(child, at, sub); err != nil {
			return err
		}
	}

	return nil
}
