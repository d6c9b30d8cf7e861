package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/gitrepo"
	"github.com/tasuku43/wsm/internal/infra/paths"
)

// Repair rebuilds the checkout of spec in workspace. Standalone clones are
// converted into linked checkouts and anything git cannot use is recreated.
// The previous directory is moved to the trash, never deleted.
func (m *Manager) Repair(ctx context.Context, workspace string, spec repospec.Spec) Result {
	unlock := m.locks.Lock(spec.DerivedName)
	defer unlock()

	path := CheckoutPath(m.Root, workspace, spec.DerivedName)
	insp := m.Inspector.Inspect(ctx, path, spec)
	switch {
	case insp.State == StateMissing:
		detail, err := m.create(ctx, spec, path)
		if err != nil {
			return m.failedResult(spec, path, err)
		}
		return Result{Name: spec.DerivedName, Path: path, Outcome: OutcomeRepaired, Detail: joinDetail("recreated missing checkout", detail)}
	case insp.State.Valid() && insp.Kind == KindLinkedWorktree:
		return Result{Name: spec.DerivedName, Path: path, Outcome: OutcomeSkippedExists, Detail: "nothing to repair (" + insp.State.String() + ")"}
	}
	return m.rebuild(ctx, workspace, spec, insp)
}

// Inspect reports the state of one checkout of workspace.
func (m *Manager) Inspect(ctx context.Context, workspace string, spec repospec.Spec) Inspection {
	return m.Inspector.Inspect(ctx, CheckoutPath(m.Root, workspace, spec.DerivedName), spec)
}

func (m *Manager) rebuild(ctx context.Context, workspace string, spec repospec.Spec, insp Inspection) Result {
	path := insp.Path
	note := ""
	if insp.Kind == KindStandaloneClone {
		note = describeStandalone(path, spec)
	}
	moved, err := m.moveAside(workspace, spec.DerivedName, path)
	if err != nil {
		return m.failedResult(spec, path, err)
	}
	debuglog.Event("", "checkout moved aside", "repo", spec.DerivedName, "state", insp.State.String(), "to", moved)
	detail, err := m.create(ctx, spec, path)
	if err != nil {
		// Put the old directory back so a failed repair leaves things as found.
		if restoreErr := os.Rename(moved, path); restoreErr != nil {
			err = fmt.Errorf("%w (previous checkout kept at %s)", err, moved)
		}
		return m.failedResult(spec, path, err)
	}
	was := insp.State.String()
	if insp.Kind == KindStandaloneClone {
		was = "standalone repository"
	}
	return Result{
		Name:    spec.DerivedName,
		Path:    path,
		Outcome: OutcomeRepaired,
		Detail:  joinDetail("was "+was, note, detail, "previous checkout moved to "+moved),
	}
}

func describeStandalone(path string, spec repospec.Spec) string {
	probe, err := gitrepo.ProbeStandalone(path)
	if err != nil {
		return ""
	}
	note := ""
	switch {
	case probe.Branch != "":
		note = fmt.Sprintf("previously on %s at %s", probe.Branch, probe.Head)
	case probe.Head != "":
		note = "previously detached at " + probe.Head
	}
	if probe.OriginURL != "" && !repospec.SameSource(probe.OriginURL, spec.SourceURL) {
		note = joinDetail(note, "origin was "+probe.OriginURL)
	}
	if !probe.Clean {
		note = joinDetail(note, "had uncommitted changes")
	}
	return note
}

// moveAside renames path into the trash directory and returns the new
// location.
func (m *Manager) moveAside(workspace, name, path string) (string, error) {
	dir := filepath.Join(paths.TrashDir(m.Root), workspace)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create trash dir: %w", err)
	}
	dest := filepath.Join(dir, fmt.Sprintf("%s-%s", name, m.now().UTC().Format("20060102T150405.000000000")))
	if err := os.Rename(path, dest); err != nil {
		return "", fmt.Errorf("move %s aside: %w", path, err)
	}
	return dest, nil
}
