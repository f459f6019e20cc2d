// Command pathmatch loads a route table and reports which route matches
// each path.
//
// Usage:
//
//	pathmatch [flags] [path ...]
//
// Paths are taken from the arguments or, when there are none, one per
// line from standard input. The exit code is 1 when the route table cannot
// be loaded and 2 when at least one path matched no route.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/vitalvas/pathpattern/patterncache"
	"github.com/vitalvas/pathpattern/registry"
	"github.com/vitalvas/pathpattern/routeconfig"
)

const (
	exitOK       = 0
	exitConfig   = 1
	exitNotFound = 2
)

type options struct {
	config    string
	all       bool
	format    string
	cacheSize int
	logLevel  string
	target    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pathmatch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var opts options
	fs.StringVar(&opts.config, "config", envOrDefault("PATHMATCH_CONFIG", "routes.yaml"), "Route table to load.")
	fs.BoolVar(&opts.all, "all", false, "Print every matching route, most specific first.")
	fs.StringVar(&opts.format, "format", "text", "Output format: text or json.")
	fs.IntVar(&opts.cacheSize, "cache-size", patterncache.DefaultSize, "Compiled template cache size; 0 disables the cache.")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "Log level: debug, info, warn or error.")
	fs.StringVar(&opts.target, "target", "", "Only load routes whose target matches this glob (\"**\" crosses \"/\").")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitConfig
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(opts.logLevel)); err != nil {
		fmt.Fprintf(stderr, "pathmatch: invalid -log-level %q\n", opts.logLevel)
		return exitConfig
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if opts.format != "text" && opts.format != "json" {
		logger.Error("invalid output format", "format", opts.format)
		return exitConfig
	}

	reg, err := load(opts, logger)
	if err != nil {
		logger.Error("cannot load route table", "config", opts.config, "error", err)
		return exitConfig
	}

	out := newPrinter(opts.format, stdout)
	missed := 0

	err = eachPath(fs.Args(), stdin, func(path string) error {
		var matches []*registry.Match[routeconfig.Route]
		if opts.all {
			matches = reg.LookupAll(path)
		} else if m, ok := reg.Lookup(path); ok {
			matches = append(matches, m)
		}

		if len(matches) == 0 {
			missed++
			logger.Debug("no route", "path", path)
		}
		return out.print(path, matches)
	})
	if err != nil {
		logger.Error("cannot process paths", "error", err)
		return exitConfig
	}

	if missed > 0 {
		return exitNotFound
	}
	return exitOK
}

// load reads the route table and builds the registry.
func load(opts options, logger *slog.Logger) (*registry.Registry[routeconfig.Route], error) {
	cfg, err := routeconfig.Load(opts.config)
	if err != nil {
		return nil, err
	}

	if opts.target != "" {
		if !doublestar.ValidatePattern(opts.target) {
			return nil, fmt.Errorf("invalid -target glob %q", opts.target)
		}
		cfg = cfg.Filter(func(rt routeconfig.Route) bool {
			ok, _ := doublestar.Match(opts.target, rt.Target)
			return ok
		})
	}

	var parser registry.Parser = cfg.Parser.Parser()
	if opts.cacheSize > 0 {
		cache, err := patterncache.New(cfg.Parser.Parser(), opts.cacheSize)
		if err != nil {
			return nil, err
		}
		parser = cache
	}

	reg, err := routeconfig.BuildWith(cfg, parser)
	if err != nil {
		return nil, err
	}

	logger.Info("route table loaded", "config", opts.config, "routes", reg.Len())

	return reg, nil
}

// eachPath calls fn for every argument or, without arguments, for every
// non-blank line of stdin.
func eachPath(args []string, stdin io.Reader, fn func(string) error) error {
	if len(args) > 0 {
		for _, path := range args {
			if err := fn(path); err != nil {
				return err
			}
		}
		return nil
	}

	sc := bufio.NewScanner(stdin)
	for sc.Scan() {
		path := strings.TrimSpace(sc.Text())
		if path == "" {
			continue
		}
		if err := fn(path); err != nil {
			return err
		}
	}
	return sc.Err()
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
