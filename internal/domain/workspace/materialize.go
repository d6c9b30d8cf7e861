package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/infra/paths"
	"github.com/tasuku43/wsm/internal/infra/workpool"
)

type Outcome int

const (
	OutcomeCreated Outcome = iota
	OutcomeSkippedExists
	OutcomeRepaired
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeSkippedExists:
		return "skipped-exists"
	case OutcomeRepaired:
		return "repaired"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of materializing or repairing one repository.
type Result struct {
	Name    string
	Path    string
	Outcome Outcome
	Detail  string
	Err     error
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, r := range results {
		if r.Outcome == OutcomeFailed {
			return true
		}
	}
	return false
}

// Manager creates, repairs and removes the checkouts of workspaces. Central
// repositories are cloned on demand and never rewritten.
type Manager struct {
	Root      string
	Backend   Backend
	Inspector *Inspector
	Jobs      int
	Now       func() time.Time

	locks workpool.KeyedMutex
}

func NewManager(rootDir string, backend Backend) *Manager {
	return &Manager{
		Root:      rootDir,
		Backend:   backend,
		Inspector: NewInspector(backend),
		Jobs:      1,
		Now:       time.Now,
	}
}

// Materialize brings every spec of workspace to a usable checkout. It fails
// only when the workspace itself cannot be prepared; per-repository failures
// are reported in the results.
func (m *Manager) Materialize(ctx context.Context, workspace string, specs []repospec.Spec) ([]Result, error) {
	if err := ValidateName(ctx, workspace); err != nil {
		return nil, err
	}
	wsDir := WorkspaceDir(m.Root, workspace)
	if err := os.MkdirAll(wsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}
	results := workpool.Run(ctx, len(specs), m.Jobs, func(ctx context.Context, i int) Result {
		return m.materializeOne(ctx, workspace, specs[i])
	}, func(i int) Result {
		return m.canceledResult(workspace, specs[i])
	})
	if err := touchMetadata(wsDir, workspace, m.now()); err != nil {
		debuglog.Event("", "metadata write failed", "workspace", workspace, "err", err)
	}
	return results, nil
}

func (m *Manager) materializeOne(ctx context.Context, workspace string, spec repospec.Spec) Result {
	unlock := m.locks.Lock(spec.DerivedName)
	defer unlock()

	path := CheckoutPath(m.Root, workspace, spec.DerivedName)
	insp := m.Inspector.Inspect(ctx, path, spec)
	debuglog.Event("", "inspect", "repo", spec.DerivedName, "state", insp.State.String(), "kind", insp.Kind.String())
	switch {
	case insp.State.Valid():
		result := Result{Name: spec.DerivedName, Path: path, Outcome: OutcomeSkippedExists, Detail: insp.State.String()}
		if insp.Kind == KindStandaloneClone {
			result.Detail = "standalone repository, run repair to convert it"
		}
		return result
	case insp.State == StateMissing:
		detail, err := m.create(ctx, spec, path)
		if err != nil {
			return m.failedResult(spec, path, err)
		}
		return Result{Name: spec.DerivedName, Path: path, Outcome: OutcomeCreated, Detail: detail}
	default:
		return m.rebuild(ctx, workspace, spec, insp)
	}
}

// create adds a checkout at path, cloning the central repository first when
// it does not exist yet.
func (m *Manager) create(ctx context.Context, spec repospec.Spec, path string) (string, error) {
	central := CentralPath(m.Root, spec.DerivedName)
	note, err := m.ensureCentral(ctx, spec, central)
	if err != nil {
		return "", err
	}
	if err := m.Backend.PruneCheckouts(ctx, central); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create workspace dir: %w", err)
	}

	if spec.Pinned() {
		if err := m.Backend.AddCheckout(ctx, central, path, spec.PinnedRef, true); err != nil {
			return "", err
		}
		return joinDetail(note, "detached at "+spec.PinnedRef), nil
	}

	detail := "on " + spec.Branch
	exists, err := m.Backend.BranchExists(ctx, central, spec.Branch)
	if err != nil {
		return "", err
	}
	if !exists {
		base, err := m.Backend.CreateBranch(ctx, central, spec.Branch)
		if err != nil {
			return "", err
		}
		detail = fmt.Sprintf("new branch %s from %s", spec.Branch, base)
	}
	if err := m.Backend.AddCheckout(ctx, central, path, spec.Branch, false); err != nil {
		return "", err
	}
	return joinDetail(note, detail), nil
}

func (m *Manager) ensureCentral(ctx context.Context, spec repospec.Spec, central string) (string, error) {
	exists, err := paths.DirExists(central)
	if err != nil {
		return "", err
	}
	if !exists {
		if err := os.MkdirAll(filepath.Dir(central), 0o755); err != nil {
			return "", fmt.Errorf("create repos dir: %w", err)
		}
		if err := m.Backend.Clone(ctx, spec.SourceURL, central); err != nil {
			return "", err
		}
		return "cloned", nil
	}
	origin, err := m.Backend.OriginURL(ctx, central)
	if err != nil || origin == "" {
		return "", nil
	}
	if !repospec.SameSource(origin, spec.SourceURL) {
		return fmt.Sprintf("central repository origin is %s", origin), nil
	}
	return "", nil
}

func (m *Manager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Manager) failedResult(spec repospec.Spec, path string, err error) Result {
	return Result{Name: spec.DerivedName, Path: path, Outcome: OutcomeFailed, Detail: failureDetail(m.Root, err), Err: err}
}

func (m *Manager) canceledResult(workspace string, spec repospec.Spec) Result {
	path := CheckoutPath(m.Root, workspace, spec.DerivedName)
	return m.failedResult(spec, path, fmt.Errorf("not started: %w", context.Canceled))
}

// failureDetail is the one-line reason shown for a failed repository. A
// branch held by another checkout is reported by workspace name.
func failureDetail(rootDir string, err error) string {
	var inUse *gitcmd.BranchInUseError
	if !errors.As(err, &inUse) {
		return firstLine(err.Error())
	}
	if ws, ok := workspaceOf(rootDir, inUse.Path); ok {
		return fmt.Sprintf("branch %s is checked out in workspace %s", inUse.Branch, ws)
	}
	return inUse.Error()
}

// workspaceOf maps a checkout path to the workspace holding it.
func workspaceOf(rootDir, checkout string) (string, bool) {
	base := WorkspacesRoot(rootDir)
	if resolved, err := filepath.EvalSymlinks(base); err == nil {
		base = resolved
	}
	if resolved, err := filepath.EvalSymlinks(checkout); err == nil {
		checkout = resolved
	}
	rel, err := filepath.Rel(base, filepath.Dir(checkout))
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func joinDetail(parts ...string) string {
	out := ""
	for _, part := range parts {
		if part == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += part
	}
	return out
}

// ErrWorkspaceNotFound is returned for operations on a workspace directory
// that does not exist.
var ErrWorkspaceNotFound = errors.New("workspace not found")
