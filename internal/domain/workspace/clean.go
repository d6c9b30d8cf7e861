package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/tasuku43/wsm/internal/infra/paths"
)

type CleanOptions struct {
	// Force removes dirty checkouts and moves entries that are not linked
	// checkouts to the trash.
	Force bool
}

type CleanReport struct {
	Workspace string
	Removed   []string
	Trashed   []string
	Blocked   []string
}

// ErrCleanBlocked is returned when a workspace holds local work and Force
// was not set. Nothing is removed in that case.
var ErrCleanBlocked = errors.New("workspace has local changes or unmanaged entries")

// Clean removes every checkout of workspace and then the workspace
// directory. Central repositories are only pruned of stale worktree records.
func (m *Manager) Clean(ctx context.Context, workspace string, opts CleanOptions) (CleanReport, error) {
	report := CleanReport{Workspace: workspace}
	if err := ValidateName(ctx, workspace); err != nil {
		return report, err
	}
	wsDir := WorkspaceDir(m.Root, workspace)
	if exists, err := paths.DirExists(wsDir); err != nil {
		return report, err
	} else if !exists {
		return report, fmt.Errorf("%w: %s", ErrWorkspaceNotFound, workspace)
	}

	entries, err := os.ReadDir(wsDir)
	if err != nil {
		return report, err
	}

	type plan struct {
		name    string
		path    string
		central string
	}
	var linked, other []plan
	for _, entry := range entries {
		if entry.Name() == metadataFileName {
			continue
		}
		path := filepath.Join(wsDir, entry.Name())
		kind, _, central := classify(path)
		if kind != KindLinkedWorktree {
			other = append(other, plan{name: entry.Name(), path: path})
			if !opts.Force {
				report.Blocked = append(report.Blocked, fmt.Sprintf("%s: %s, not a linked checkout", entry.Name(), kind))
			}
			continue
		}
		linked = append(linked, plan{name: entry.Name(), path: path, central: central})
		if opts.Force {
			continue
		}
		status, err := m.Backend.WorkingTreeStatus(ctx, path)
		if err != nil {
			report.Blocked = append(report.Blocked, fmt.Sprintf("%s: status failed: %s", entry.Name(), firstLine(err.Error())))
			continue
		}
		if status.Dirty {
			report.Blocked = append(report.Blocked, entry.Name()+": uncommitted changes")
		}
	}
	if len(report.Blocked) > 0 {
		return report, ErrCleanBlocked
	}

	var errs []error
	centrals := map[string]struct{}{}
	for _, p := range linked {
		if err := m.Backend.RemoveCheckout(ctx, p.central, p.path, opts.Force); err != nil {
			errs = append(errs, fmt.Errorf("remove checkout %s: %w", p.name, err))
			continue
		}
		centrals[p.central] = struct{}{}
		report.Removed = append(report.Removed, p.name)
	}
	for _, p := range other {
		moved, err := m.moveAside(workspace, p.name, p.path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report.Trashed = append(report.Trashed, moved)
	}
	for _, central := range sortedKeys(centrals) {
		if err := m.Backend.PruneCheckouts(ctx, central); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return report, errors.Join(errs...)
	}

	if err := os.Remove(metadataPath(wsDir)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return report, fmt.Errorf("remove metadata: %w", err)
	}
	if err := os.Remove(wsDir); err != nil {
		return report, fmt.Errorf("remove workspace dir: %w", err)
	}
	return report, nil
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
