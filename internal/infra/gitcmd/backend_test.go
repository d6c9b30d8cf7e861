package gitcmd_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/testutil"
)

func setupCentral(t *testing.T) (*gitcmd.Backend, *testutil.Remote, string, string) {
	t.Helper()
	testutil.IsolateGit(t)
	tmp := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(tmp, "remotes"), "repo-a")
	backend := gitcmd.NewBackend(time.Minute)
	central := filepath.Join(tmp, "repos", "repo-a.git")
	if err := backend.Clone(context.Background(), remote.Path, central); err != nil {
		t.Fatalf("clone: %v", err)
	}
	return backend, remote, central, tmp
}

func TestBackendCheckoutLifecycle(t *testing.T) {
	ctx := context.Background()
	backend, _, central, tmp := setupCentral(t)

	mainPath := filepath.Join(tmp, "worktrees", "main", "repo-a")
	if err := backend.AddCheckout(ctx, central, mainPath, "main", false); err != nil {
		t.Fatalf("add checkout: %v", err)
	}
	head, err := backend.InspectHead(ctx, mainPath)
	if err != nil {
		t.Fatalf("inspect head: %v", err)
	}
	if !head.Symbolic || head.Target != "refs/heads/main" || !head.Resolvable {
		t.Fatalf("head = %+v", head)
	}

	pinnedPath := filepath.Join(tmp, "worktrees", "release", "repo-a")
	if err := backend.AddCheckout(ctx, central, pinnedPath, "v1.0.0", true); err != nil {
		t.Fatalf("add detached checkout: %v", err)
	}
	head, err = backend.InspectHead(ctx, pinnedPath)
	if err != nil {
		t.Fatalf("inspect head: %v", err)
	}
	if head.Symbolic {
		t.Fatalf("expected detached HEAD, got %+v", head)
	}

	if err := backend.AddCheckout(ctx, central, mainPath, "main", false); !errors.Is(err, gitcmd.ErrPathExists) {
		t.Fatalf("expected ErrPathExists, got %v", err)
	}
	if err := backend.AddCheckout(ctx, central, filepath.Join(tmp, "x"), "v9.9.9", true); !errors.Is(err, gitcmd.ErrRefNotFound) {
		t.Fatalf("expected ErrRefNotFound, got %v", err)
	}

	testutil.WriteFile(t, filepath.Join(mainPath, "scratch.txt"), "wip\n")
	st, err := backend.WorkingTreeStatus(ctx, mainPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !st.Dirty || st.Untracked != 1 {
		t.Fatalf("status = %+v", st)
	}

	if err := backend.RemoveCheckout(ctx, central, mainPath, false); !errors.Is(err, gitcmd.ErrLocked) {
		t.Fatalf("expected ErrLocked for dirty checkout, got %v", err)
	}
	if err := backend.RemoveCheckout(ctx, central, mainPath, true); err != nil {
		t.Fatalf("force remove: %v", err)
	}
	if _, err := os.Stat(mainPath); !os.IsNotExist(err) {
		t.Fatalf("checkout still present: %v", err)
	}
}

func TestBackendCreateBranchFromHead(t *testing.T) {
	ctx := context.Background()
	backend, _, central, _ := setupCentral(t)

	exists, err := backend.BranchExists(ctx, central, "feature-x")
	if err != nil || exists {
		t.Fatalf("BranchExists = %v, %v", exists, err)
	}
	base, err := backend.CreateBranch(ctx, central, "feature-x")
	if err != nil {
		t.Fatalf("create branch: %v", err)
	}
	if base != "HEAD" {
		t.Fatalf("base = %q, want HEAD", base)
	}
	exists, err = backend.BranchExists(ctx, central, "feature-x")
	if err != nil || !exists {
		t.Fatalf("BranchExists after create = %v, %v", exists, err)
	}
	branch, err := backend.DefaultBranch(ctx, central)
	if err != nil || branch != "main" {
		t.Fatalf("DefaultBranch = %q, %v", branch, err)
	}
}

func TestBackendFetchAndFastForward(t *testing.T) {
	ctx := context.Background()
	backend, remote, central, tmp := setupCentral(t)
	path := filepath.Join(tmp, "worktrees", "main", "repo-a")
	if err := backend.AddCheckout(ctx, central, path, "main", false); err != nil {
		t.Fatalf("add checkout: %v", err)
	}

	remote.Commit(t, "main", "CHANGELOG.md", "v2\n")
	if err := backend.Fetch(ctx, central, "main"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	outcome, err := backend.MergeOrFastForward(ctx, path, "main")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if outcome != gitcmd.MergeFastForward {
		t.Fatalf("outcome = %v, want fast-forward", outcome)
	}
	if _, err := os.Stat(filepath.Join(path, "CHANGELOG.md")); err != nil {
		t.Fatalf("fast-forwarded file missing: %v", err)
	}

	outcome, err = backend.MergeOrFastForward(ctx, path, "main")
	if err != nil || outcome != gitcmd.MergeUpToDate {
		t.Fatalf("second merge = %v, %v", outcome, err)
	}

	if err := backend.Fetch(ctx, central, "no-such-branch"); !errors.Is(err, gitcmd.ErrRefNotFound) {
		t.Fatalf("expected ErrRefNotFound, got %v", err)
	}
}

func TestBackendMergeConflictLeavesTreeUntouched(t *testing.T) {
	ctx := context.Background()
	backend, remote, central, tmp := setupCentral(t)
	path := filepath.Join(tmp, "worktrees", "main", "repo-a")
	if err := backend.AddCheckout(ctx, central, path, "main", false); err != nil {
		t.Fatalf("add checkout: %v", err)
	}
	testutil.WriteFile(t, filepath.Join(path, "README.md"), "local\n")
	testutil.RunGit(t, path, "commit", "-am", "local")
	localHead := testutil.RunGit(t, path, "rev-parse", "HEAD")

	remote.Commit(t, "main", "README.md", "remote\n")
	if err := backend.Fetch(ctx, central, "main"); err != nil {
		t.Fatalf("fetch: %v", err)
	}
	outcome, err := backend.MergeOrFastForward(ctx, path, "main")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if outcome != gitcmd.MergeConflict {
		t.Fatalf("outcome = %v, want conflict", outcome)
	}
	if got := testutil.RunGit(t, path, "rev-parse", "HEAD"); got != localHead {
		t.Fatalf("HEAD moved to %s", got)
	}
	data, err := os.ReadFile(filepath.Join(path, "README.md"))
	if err != nil {
		t.Fatalf("read README: %v", err)
	}
	if strings.TrimSpace(string(data)) != "local" {
		t.Fatalf("README = %q, want local content", data)
	}
	if status := testutil.RunGit(t, path, "status", "--porcelain"); status != "" {
		t.Fatalf("working tree not clean after abort: %q", status)
	}
}

func TestBackendTimeout(t *testing.T) {
	testutil.IsolateGit(t)
	backend := &gitcmd.Backend{Timeout: time.Nanosecond}
	time.Sleep(time.Millisecond)
	_, err := backend.InspectHead(context.Background(), t.TempDir())
	if !errors.Is(err, gitcmd.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestBackendCloneMissingSource(t *testing.T) {
	testutil.IsolateGit(t)
	tmp := t.TempDir()
	backend := gitcmd.NewBackend(time.Minute)
	central := filepath.Join(tmp, "repos", "nope.git")
	err := backend.Clone(context.Background(), filepath.Join(tmp, "missing", "nope.git"), central)
	if err == nil {
		t.Fatalf("expected clone failure")
	}
	if _, statErr := os.Stat(central); !os.IsNotExist(statErr) {
		t.Fatalf("partial clone left behind: %v", statErr)
	}
}

func TestBackendAddCheckoutBranchInUse(t *testing.T) {
	ctx := context.Background()
	backend, _, central, tmp := setupCentral(t)
	first := filepath.Join(tmp, "worktrees", "main", "repo-a")
	if err := backend.AddCheckout(ctx, central, first, "main", false); err != nil {
		t.Fatalf("add checkout: %v", err)
	}

	err := backend.AddCheckout(ctx, central, filepath.Join(tmp, "worktrees", "other", "repo-a"), "main", false)
	if !errors.Is(err, gitcmd.ErrBranchInUse) {
		t.Fatalf("expected ErrBranchInUse, got %v", err)
	}
	var inUse *gitcmd.BranchInUseError
	if !errors.As(err, &inUse) {
		t.Fatalf("expected BranchInUseError, got %T", err)
	}
	if inUse.Branch != "main" {
		t.Fatalf("branch = %q, want main", inUse.Branch)
	}
	if !strings.HasSuffix(filepath.ToSlash(inUse.Path), "worktrees/main/repo-a") {
		t.Fatalf("path = %q, want the main checkout", inUse.Path)
	}
	msg := inUse.Err.Error()
	if strings.Contains(msg, "Preparing worktree") {
		t.Fatalf("progress line leaked into error: %q", msg)
	}
	if n := strings.Count(msg, "worktree add"); n != 1 {
		t.Fatalf("command named %d times in %q", n, msg)
	}
}
