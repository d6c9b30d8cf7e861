package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tasuku43/wsm/internal/infra/paths"
)

type Entry struct {
	Name     string
	Path     string
	Repos    int
	Metadata Metadata
}

// ErrNotInWorkspace is returned when a command needs a workspace and the
// working directory is not inside one.
var ErrNotInWorkspace = errors.New("not in workspace")

func List(rootDir string) ([]Entry, []error, error) {
	wsRoot := WorkspacesRoot(rootDir)
	exists, err := paths.DirExists(wsRoot)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, nil
	}

	entries, err := os.ReadDir(wsRoot)
	if err != nil {
		return nil, nil, err
	}

	var results []Entry
	var warnings []error
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		wsPath := WorkspaceDir(rootDir, entry.Name())
		result := Entry{Name: entry.Name(), Path: wsPath}
		meta, err := LoadMetadata(wsPath)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("workspace %s metadata: %w", entry.Name(), err))
		} else {
			result.Metadata = meta
		}
		children, err := os.ReadDir(wsPath)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("workspace %s: %w", entry.Name(), err))
		}
		for _, child := range children {
			if child.IsDir() {
				result.Repos++
			}
		}
		results = append(results, result)
	}
	return results, warnings, nil
}

// Exists reports whether workspace has a directory under the root.
func Exists(rootDir, workspace string) (bool, error) {
	return paths.DirExists(WorkspaceDir(rootDir, workspace))
}

// LocateCurrent returns the workspace containing dir. Both paths are
// compared after resolving symlinks.
func LocateCurrent(rootDir, dir string) (string, error) {
	wsRoot := evalPath(WorkspacesRoot(rootDir))
	rel, err := filepath.Rel(wsRoot, evalPath(dir))
	if err != nil {
		return "", ErrNotInWorkspace
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrNotInWorkspace
	}
	name := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	if strings.HasPrefix(name, ".") {
		return "", ErrNotInWorkspace
	}
	if ok, err := Exists(rootDir, name); err != nil || !ok {
		return "", ErrNotInWorkspace
	}
	return name, nil
}

func evalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
