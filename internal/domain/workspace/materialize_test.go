package workspace

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/infra/paths"
	"github.com/tasuku43/wsm/internal/testutil"
)

func specsFor(t *testing.T, workspace string, lines ...string) []repospec.Spec {
	t.Helper()
	var specs []repospec.Spec
	for _, text := range lines {
		line, ok, err := repospec.ParseLine(text)
		require.NoError(t, err)
		require.True(t, ok)
		specs = append(specs, repospec.Classify(line, workspace))
	}
	return specs
}

func outcomes(results []Result) map[string]Outcome {
	out := map[string]Outcome{}
	for _, r := range results {
		out[r.Name] = r.Outcome
	}
	return out
}

func TestMaterializeIsIdempotent(t *testing.T) {
	testutil.IsolateGit(t)
	root := t.TempDir()
	fake := testutil.NewFakeBackend()
	manager := NewManager(root, fake)
	specs := specsFor(t, "main",
		"https://x/repo-a.git",
		"https://x/repo-b.git develop",
		"https://x/repo-c.git main v1.0.0",
	)

	first, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	assert.Equal(t, map[string]Outcome{
		"repo-a": OutcomeCreated,
		"repo-b": OutcomeCreated,
		"repo-c": OutcomeCreated,
	}, outcomes(first))
	assert.Equal(t, []string{"add repo-c v1.0.0 detached=true"}, fake.CallsWithPrefix("add repo-c"))
	assert.Equal(t, []string{"create-branch repo-b.git develop"}, fake.CallsWithPrefix("create-branch"))

	fake.Reset()
	second, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	for _, r := range second {
		assert.Equal(t, OutcomeSkippedExists, r.Outcome, r.Name)
	}
	assert.Empty(t, fake.Mutations())
	assert.Empty(t, fake.CallsWithPrefix("prune"))
}

func TestMaterializeKeepsResultsInConfigOrder(t *testing.T) {
	testutil.IsolateGit(t)
	manager := NewManager(t.TempDir(), testutil.NewFakeBackend())
	manager.Jobs = 4
	specs := specsFor(t, "main", "https://x/zeta.git", "https://x/alpha.git", "https://x/mid.git")
	results, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	var names []string
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, names)
}

func TestMaterializePartialFailure(t *testing.T) {
	testutil.IsolateGit(t)
	root := t.TempDir()
	fake := testutil.NewFakeBackend()
	fake.CloneErr["https://unreachable/repo-b.git"] = errors.New("git clone failed: network error")
	manager := NewManager(root, fake)
	specs := specsFor(t, "main",
		"https://x/repo-a.git",
		"https://unreachable/repo-b.git",
		"https://x/repo-c.git",
	)

	results, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	assert.True(t, Failed(results))
	assert.Equal(t, map[string]Outcome{
		"repo-a": OutcomeCreated,
		"repo-b": OutcomeFailed,
		"repo-c": OutcomeCreated,
	}, outcomes(results))
	assert.Contains(t, results[1].Detail, "network error")
}

func TestMaterializeEmptyConfiguration(t *testing.T) {
	testutil.IsolateGit(t)
	root := t.TempDir()
	results, err := NewManager(root, testutil.NewFakeBackend()).Materialize(context.Background(), "main", nil)
	require.NoError(t, err)
	assert.Empty(t, results)
	ok, err := paths.DirExists(WorkspaceDir(root, "main"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMaterializeRejectsBadWorkspaceName(t *testing.T) {
	testutil.IsolateGit(t)
	manager := NewManager(t.TempDir(), testutil.NewFakeBackend())
	for _, name := range []string{"", "a/b", ".hidden", "bad..name"} {
		_, err := manager.Materialize(context.Background(), name, nil)
		assert.Error(t, err, name)
	}
}

func TestMaterializeRepairsPlainDirectory(t *testing.T) {
	testutil.IsolateGit(t)
	root := t.TempDir()
	fake := testutil.NewFakeBackend()
	manager := NewManager(root, fake)
	specs := specsFor(t, "main", "https://x/repo-a.git")
	path := CheckoutPath(root, "main", "repo-a")
	require.NoError(t, os.MkdirAll(path, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(path, "notes.txt"), []byte("keep me"), 0o644))

	results, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeRepaired, results[0].Outcome)
	assert.Contains(t, results[0].Detail, "was invalid")

	trashed, err := filepath.Glob(filepath.Join(paths.TrashDir(root), "main", "repo-a-*", "notes.txt"))
	require.NoError(t, err)
	assert.Len(t, trashed, 1)
}

func TestMaterializeSkipsHealthyStandaloneClone(t *testing.T) {
	testutil.IsolateGit(t)
	root := t.TempDir()
	fake := testutil.NewFakeBackend()
	path := CheckoutPath(root, "main", "repo-a")
	require.NoError(t, os.MkdirAll(filepath.Join(path, ".git"), 0o755))

	results, err := NewManager(root, fake).Materialize(context.Background(), "main", specsFor(t, "main", "https://x/repo-a.git"))
	require.NoError(t, err)
	assert.Equal(t, OutcomeSkippedExists, results[0].Outcome)
	assert.Contains(t, results[0].Detail, "standalone repository")
	assert.Empty(t, fake.Mutations())
}

func TestMaterializeCanceledBeforeStart(t *testing.T) {
	testutil.IsolateGit(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fake := testutil.NewFakeBackend()
	results, err := NewManager(t.TempDir(), fake).Materialize(ctx, "main", specsFor(t, "main", "https://x/repo-a.git"))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, OutcomeFailed, results[0].Outcome)
	assert.ErrorIs(t, results[0].Err, context.Canceled)
	assert.Empty(t, fake.Mutations())
}

func TestMaterializeThreeRepoScenario(t *testing.T) {
	testutil.IsolateGit(t)
	base := t.TempDir()
	remotes := filepath.Join(base, "remotes")
	for _, name := range []string{"repo-a", "repo-b", "repo-c"} {
		testutil.NewRemote(t, remotes, name)
	}
	root := filepath.Join(base, "root")
	specs := specsFor(t, "main",
		filepath.Join(remotes, "repo-a.git"),
		filepath.Join(remotes, "repo-b.git")+" develop",
		filepath.Join(remotes, "repo-c.git")+" main v1.0.0",
	)
	manager := NewManager(root, gitcmd.NewBackend(0))

	results, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	for _, r := range results {
		require.Equal(t, OutcomeCreated, r.Outcome, "%s: %s", r.Name, r.Detail)
	}

	wsDir := WorkspaceDir(root, "main")
	assert.Equal(t, "main", testutil.RunGit(t, filepath.Join(wsDir, "repo-a"), "branch", "--show-current"))
	assert.Equal(t, "develop", testutil.RunGit(t, filepath.Join(wsDir, "repo-b"), "branch", "--show-current"))
	assert.Equal(t, "", testutil.RunGit(t, filepath.Join(wsDir, "repo-c"), "branch", "--show-current"))
	tagged := testutil.RunGit(t, filepath.Join(wsDir, "repo-c"), "rev-parse", "v1.0.0^{commit}")
	assert.Equal(t, tagged, testutil.RunGit(t, filepath.Join(wsDir, "repo-c"), "rev-parse", "HEAD"))

	want := map[string]State{"repo-a": StateClean, "repo-b": StateClean, "repo-c": StateDetachedPinned}
	for _, spec := range specs {
		got := manager.Inspect(context.Background(), "main", spec)
		assert.Equal(t, want[spec.DerivedName], got.State, spec.DerivedName)
	}

	again, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	for _, r := range again {
		assert.Equal(t, OutcomeSkippedExists, r.Outcome, r.Name)
	}
}

func TestMaterializeSecondWorkspaceNewBranch(t *testing.T) {
	testutil.IsolateGit(t)
	base := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(base, "remotes"), "repo-a")
	root := filepath.Join(base, "root")
	manager := NewManager(root, gitcmd.NewBackend(0))

	_, err := manager.Materialize(context.Background(), "main", specsFor(t, "main", remote.Path))
	require.NoError(t, err)
	results, err := manager.Materialize(context.Background(), "feature-x", specsFor(t, "feature-x", remote.Path))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, results[0].Outcome, results[0].Detail)
	assert.True(t, strings.HasPrefix(results[0].Detail, "new branch feature-x"), results[0].Detail)
	assert.Equal(t, "feature-x", testutil.RunGit(t, CheckoutPath(root, "feature-x", "repo-a"), "branch", "--show-current"))
}

func TestRepairConvertsStandaloneClone(t *testing.T) {
	testutil.IsolateGit(t)
	base := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(base, "remotes"), "repo-a")
	root := filepath.Join(base, "root")
	path := CheckoutPath(root, "main", "repo-a")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	testutil.RunGit(t, "", "clone", remote.Path, path)

	manager := NewManager(root, gitcmd.NewBackend(0))
	spec := specsFor(t, "main", remote.Path)[0]
	result := manager.Repair(context.Background(), "main", spec)
	require.Equal(t, OutcomeRepaired, result.Outcome, result.Detail)
	assert.Contains(t, result.Detail, "standalone repository")
	assert.Contains(t, result.Detail, "previously on main at ")

	kind, _ := ClassifyCheckout(path)
	assert.Equal(t, KindLinkedWorktree, kind)
	assert.Equal(t, StateClean, manager.Inspect(context.Background(), "main", spec).State)
}

func TestRepairAfterDotGitRemoval(t *testing.T) {
	testutil.IsolateGit(t)
	base := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(base, "remotes"), "repo-a")
	root := filepath.Join(base, "root")
	manager := NewManager(root, gitcmd.NewBackend(0))
	specs := specsFor(t, "main", remote.Path)

	_, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(CheckoutPath(root, "main", "repo-a"), ".git")))

	results, err := manager.Materialize(context.Background(), "main", specs)
	require.NoError(t, err)
	require.Equal(t, OutcomeRepaired, results[0].Outcome, results[0].Detail)
	assert.Equal(t, StateClean, manager.Inspect(context.Background(), "main", specs[0]).State)
}

func TestMaterializeFixedBranchSharedAcrossWorkspaces(t *testing.T) {
	testutil.IsolateGit(t)
	base := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(base, "remotes"), "repo-b")
	root := filepath.Join(base, "root")
	manager := NewManager(root, gitcmd.NewBackend(0))

	first, err := manager.Materialize(context.Background(), "main", specsFor(t, "main", remote.Path+" develop"))
	require.NoError(t, err)
	require.Equal(t, OutcomeCreated, first[0].Outcome, first[0].Detail)

	// git allows one checkout per branch, so a second workspace asking for
	// develop fails for that repository and names the holder.
	second, err := manager.Materialize(context.Background(), "release", specsFor(t, "release", remote.Path+" develop"))
	require.NoError(t, err)
	require.Equal(t, OutcomeFailed, second[0].Outcome)
	assert.Equal(t, "branch develop is checked out in workspace main", second[0].Detail)
	assert.ErrorIs(t, second[0].Err, gitcmd.ErrBranchInUse)
	assert.NoDirExists(t, CheckoutPath(root, "release", "repo-b"))
}

func TestFailureDetail(t *testing.T) {
	root := t.TempDir()
	inUse := &gitcmd.BranchInUseError{Branch: "develop", Path: CheckoutPath(root, "feature/x", "repo-b"), Err: errors.New("exit status 128")}
	assert.Equal(t, "branch develop is checked out in workspace feature/x", failureDetail(root, inUse))

	outside := &gitcmd.BranchInUseError{Branch: "develop", Path: "/elsewhere/repo-b", Err: errors.New("exit status 128")}
	assert.Equal(t, "branch develop is checked out at /elsewhere/repo-b", failureDetail(root, outside))

	assert.Equal(t, "boom", failureDetail(root, errors.New("boom\nmore")))
}
