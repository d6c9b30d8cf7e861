package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/tasuku43/wsm/internal/domain/repospec"
)

// SetWorkspace writes line into the workspace-specific layer of workspace.
func SetWorkspace(p Paths, workspace string, line repospec.Line) error {
	store, err := OpenStore(p.Workspace(workspace))
	if err != nil {
		return err
	}
	return store.Put(line)
}

// SetDefault writes line into the workspace-default layer.
func SetDefault(p Paths, line repospec.Line) error {
	store, err := OpenStore(p.Default)
	if err != nil {
		return err
	}
	return store.Put(line)
}

func UnsetWorkspace(p Paths, workspace, name string) (bool, error) {
	path := p.Workspace(workspace)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	store, err := OpenStore(path)
	if err != nil {
		return false, err
	}
	return store.Delete(name)
}

func UnsetDefault(p Paths, name string) (bool, error) {
	if _, err := os.Stat(p.Default); errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	store, err := OpenStore(p.Default)
	if err != nil {
		return false, err
	}
	return store.Delete(name)
}

// ImportReport describes a legacy-format file copied into a workspace layer.
type ImportReport struct {
	Source   string
	Imported []repospec.Line
	Skipped  []*repospec.ParseError
}

// Import copies every valid line of file into the workspace-specific layer
// of workspace. Malformed lines are skipped and reported.
func Import(p Paths, workspace, file string) (ImportReport, error) {
	report := ImportReport{Source: file}
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return report, fmt.Errorf("config file not found: %s", file)
		}
		return report, fmt.Errorf("read %s: %w", file, err)
	}
	lines, skipped := repospec.ParseText(filepath.Base(file), string(data))
	report.Skipped = skipped
	if len(lines) == 0 {
		return report, nil
	}
	store, err := OpenStore(p.Workspace(workspace))
	if err != nil {
		return report, err
	}
	for _, line := range lines {
		if err := store.Put(line); err != nil {
			return report, fmt.Errorf("import %s: %w", line.Name, err)
		}
		report.Imported = append(report.Imported, line)
	}
	return report, nil
}
