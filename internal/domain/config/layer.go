// Package config loads the three configuration layers and resolves the
// repositories of a workspace from them.
package config

import (
	"path/filepath"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/infra/paths"
)

type Layer string

const (
	LayerNone      Layer = ""
	LayerWorkspace Layer = "workspace-specific"
	LayerDefault   Layer = "workspace-default"
	LayerLegacy    Layer = "legacy-file"
)

// Paths locates the files backing each layer.
type Paths struct {
	Legacy       string
	Default      string
	WorkspaceDir string
}

// PathsFor returns the layer files of rootDir. legacy overrides the legacy
// file location when non-empty.
func PathsFor(rootDir, legacy string) Paths {
	if legacy == "" {
		legacy = paths.LegacyConfigPath(rootDir)
	}
	return Paths{
		Legacy:       legacy,
		Default:      paths.DefaultConfigPath(rootDir),
		WorkspaceDir: paths.WorkspaceConfigDir(rootDir),
	}
}

func (p Paths) Workspace(name string) string {
	return filepath.Join(p.WorkspaceDir, name+".config")
}

// Records is the raw content of one layer: valid lines in file order plus
// the records that failed to parse.
type Records struct {
	Layer  Layer
	Source string
	Exists bool
	Lines  []repospec.Line
	Errors []*repospec.ParseError
}

// HasEntries reports whether the layer holds any record, valid or not.
func (r Records) HasEntries() bool {
	return len(r.Lines) > 0 || len(r.Errors) > 0
}
