package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasuku43/wsm/internal/infra/gitcmd"
	"github.com/tasuku43/wsm/internal/infra/paths"
	"github.com/tasuku43/wsm/internal/testutil"
)

func materialized(t *testing.T) (*Manager, *testutil.FakeBackend, string) {
	t.Helper()
	testutil.IsolateGit(t)
	root := t.TempDir()
	fake := testutil.NewFakeBackend()
	manager := NewManager(root, fake)
	_, err := manager.Materialize(context.Background(), "main", specsFor(t, "main", "https://x/repo-a.git", "https://x/repo-b.git"))
	require.NoError(t, err)
	fake.Reset()
	return manager, fake, root
}

func TestCleanRemovesCheckoutsAndWorkspaceDir(t *testing.T) {
	manager, fake, root := materialized(t)

	report, err := manager.Clean(context.Background(), "main", CleanOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"repo-a", "repo-b"}, report.Removed)
	assert.Equal(t, []string{"remove repo-a force=false", "remove repo-b force=false"}, fake.CallsWithPrefix("remove"))
	assert.Equal(t, []string{"prune repo-a.git", "prune repo-b.git"}, fake.CallsWithPrefix("prune"))

	exists, err := paths.DirExists(WorkspaceDir(root, "main"))
	require.NoError(t, err)
	assert.False(t, exists)
	exists, err = paths.DirExists(CentralPath(root, "repo-a"))
	require.NoError(t, err)
	assert.True(t, exists, "central repository must survive clean")
}

func TestCleanRefusesDirtyCheckoutWithoutForce(t *testing.T) {
	manager, fake, root := materialized(t)
	fake.Statuses[CheckoutPath(root, "main", "repo-b")] = gitcmd.TreeStatus{Dirty: true, Untracked: 1}

	report, err := manager.Clean(context.Background(), "main", CleanOptions{})
	require.ErrorIs(t, err, ErrCleanBlocked)
	assert.Equal(t, []string{"repo-b: uncommitted changes"}, report.Blocked)
	assert.Empty(t, fake.CallsWithPrefix("remove"), "nothing is removed when blocked")

	report, err = manager.Clean(context.Background(), "main", CleanOptions{Force: true})
	require.NoError(t, err)
	assert.Len(t, report.Removed, 2)
	assert.Contains(t, fake.CallsWithPrefix("remove"), "remove repo-b force=true")
}

func TestCleanMovesUnmanagedEntriesOnlyWithForce(t *testing.T) {
	manager, _, root := materialized(t)
	stray := filepath.Join(WorkspaceDir(root, "main"), "scratch")
	require.NoError(t, os.MkdirAll(stray, 0o755))

	report, err := manager.Clean(context.Background(), "main", CleanOptions{})
	require.ErrorIs(t, err, ErrCleanBlocked)
	assert.Equal(t, []string{"scratch: plain-dir, not a linked checkout"}, report.Blocked)

	report, err = manager.Clean(context.Background(), "main", CleanOptions{Force: true})
	require.NoError(t, err)
	require.Len(t, report.Trashed, 1)
	_, err = os.Stat(report.Trashed[0])
	assert.NoError(t, err)
}

func TestCleanUnknownWorkspace(t *testing.T) {
	testutil.IsolateGit(t)
	_, err := NewManager(t.TempDir(), testutil.NewFakeBackend()).Clean(context.Background(), "nope", CleanOptions{})
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
}

func TestLocateCurrent(t *testing.T) {
	root := t.TempDir()
	repoDir := filepath.Join(WorkspaceDir(root, "feature"), "repo-a", "src")
	require.NoError(t, os.MkdirAll(repoDir, 0o755))

	name, err := LocateCurrent(root, repoDir)
	require.NoError(t, err)
	assert.Equal(t, "feature", name)

	name, err = LocateCurrent(root, WorkspaceDir(root, "feature"))
	require.NoError(t, err)
	assert.Equal(t, "feature", name)

	for _, dir := range []string{root, WorkspacesRoot(root), t.TempDir()} {
		_, err := LocateCurrent(root, dir)
		assert.ErrorIs(t, err, ErrNotInWorkspace, dir)
	}
}
