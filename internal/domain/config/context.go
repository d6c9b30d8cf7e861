package config

import (
	"errors"
	"os"
	"slices"
	"strings"

	"github.com/tasuku43/wsm/internal/domain/repospec"
)

// Context is the configuration of one command invocation. It is loaded once
// and discarded when the command finishes.
type Context struct {
	Paths      Paths
	Legacy     Records
	Default    Records
	Workspaces map[string]Records
}

func Load(p Paths) (*Context, error) {
	legacy, err := readLegacy(p.Legacy)
	if err != nil {
		return nil, err
	}
	def, err := readStore(p.Default, LayerDefault)
	if err != nil {
		return nil, err
	}
	ctx := &Context{
		Paths:      p,
		Legacy:     legacy,
		Default:    def,
		Workspaces: map[string]Records{},
	}
	entries, err := os.ReadDir(p.WorkspaceDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	for _, entry := range entries {
		name, ok := strings.CutSuffix(entry.Name(), ".config")
		if !ok || entry.IsDir() || name == "" {
			continue
		}
		recs, err := readStore(p.Workspace(name), LayerWorkspace)
		if err != nil {
			return nil, err
		}
		ctx.Workspaces[name] = recs
	}
	return ctx, nil
}

// Layers returns the layers consulted for workspace, highest precedence
// first.
func (c *Context) Layers(workspace string) []Records {
	specific, ok := c.Workspaces[workspace]
	if !ok {
		specific = Records{Layer: LayerWorkspace, Source: c.Paths.Workspace(workspace)}
	}
	return []Records{specific, c.Default, c.Legacy}
}

// WorkspaceNames lists workspaces that have workspace-specific records.
func (c *Context) WorkspaceNames() []string {
	names := make([]string, 0, len(c.Workspaces))
	for name := range c.Workspaces {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Empty reports whether no layer holds any record.
func (c *Context) Empty() bool {
	if c.Legacy.HasEntries() || c.Default.HasEntries() {
		return false
	}
	for _, recs := range c.Workspaces {
		if recs.HasEntries() {
			return false
		}
	}
	return true
}

// Resolution is the ordered set of repositories for one workspace.
type Resolution struct {
	Workspace   string
	Layer       Layer
	Source      string
	Specs       []repospec.Spec
	Diagnostics []*repospec.ParseError
}

// Resolve picks the highest-precedence layer with at least one valid record
// for workspace. The chosen layer replaces lower layers wholesale. Records
// sharing a derived name collapse into the last one, which keeps the
// position of the first.
func (c *Context) Resolve(workspace string) Resolution {
	res := Resolution{Workspace: workspace}
	for _, recs := range c.Layers(workspace) {
		if !recs.HasEntries() {
			continue
		}
		res.Diagnostics = append(res.Diagnostics, recs.Errors...)
		if len(recs.Lines) == 0 {
			continue
		}
		res.Layer = recs.Layer
		res.Source = recs.Source
		res.Specs = dedupe(recs.Lines, workspace)
		return res
	}
	return res
}

func dedupe(lines []repospec.Line, workspace string) []repospec.Spec {
	index := map[string]int{}
	var specs []repospec.Spec
	for _, line := range lines {
		spec := repospec.Classify(line, workspace)
		if i, ok := index[spec.DerivedName]; ok {
			specs[i] = spec
			continue
		}
		index[spec.DerivedName] = len(specs)
		specs = append(specs, spec)
	}
	return specs
}

func (r Resolution) Lookup(name string) (repospec.Spec, bool) {
	for _, spec := range r.Specs {
		if spec.DerivedName == name {
			return spec, true
		}
	}
	return repospec.Spec{}, false
}

// Err joins the diagnostics of the layers consulted.
func (r Resolution) Err() error {
	errs := make([]error, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		errs = append(errs, d)
	}
	return errors.Join(errs...)
}
