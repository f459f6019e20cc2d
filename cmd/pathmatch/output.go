package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vitalvas/pathpattern/registry"
	"github.com/vitalvas/pathpattern/routeconfig"
)

type matchJSON struct {
	Name      string            `json:"name,omitempty"`
	Pattern   string            `json:"pattern"`
	Target    string            `json:"target"`
	Vars      map[string]string `json:"vars,omitempty"`
	Remainder *string           `json:"remainder,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type resultJSON struct {
	Path    string      `json:"path"`
	Matches []matchJSON `json:"matches"`
}

type printer struct {
	format string
	w      io.Writer
	enc    *json.Encoder
}

func newPrinter(format string, w io.Writer) *printer {
	return &printer{format: format, w: w, enc: json.NewEncoder(w)}
}

func (p *printer) print(path string, matches []*registry.Match[routeconfig.Route]) error {
	if p.format == "json" {
		res := resultJSON{Path: path, Matches: make([]matchJSON, 0, len(matches))}
		for _, m := range matches {
			mj := matchJSON{
				Name:     m.Entry.Name,
				Pattern:  m.Entry.Pattern.String(),
				Target:   m.Entry.Value.Target,
				Metadata: m.Entry.Value.Metadata,
			}
			if len(m.Captures()) > 0 {
				mj.Vars = m.Vars()
			}
			if rem, ok := m.Remainder(); ok {
				mj.Remainder = &rem
			}
			res.Matches = append(res.Matches, mj)
		}
		return p.enc.Encode(res)
	}

	if len(matches) == 0 {
		_, err := fmt.Fprintf(p.w, "%s\t-\n", path)
		return err
	}
	for _, m := range matches {
		if _, err := fmt.Fprintf(p.w, "%s\t%s\t%s%s\n", path, m.Entry.Pattern.String(), m.Entry.Value.Target, formatVars(m)); err != nil {
			return err
		}
	}
	return nil
}

// formatVars renders captures in declaration order as "\tk=v k=v", and
// the "**" remainder as "**=rest".
func formatVars(m *registry.Match[routeconfig.Route]) string {
	parts := make([]string, 0, len(m.Captures())+1)
	for _, c := range m.Captures() {
		parts = append(parts, c.Name+"="+c.Value)
	}
	if rem, ok := m.Remainder(); ok && rem != "" {
		parts = append(parts, "**="+rem)
	}
	if len(parts) == 0 {
		return ""
	}
	return "\t" + strings.Join(parts, " ")
}
