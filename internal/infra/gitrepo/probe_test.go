package gitrepo

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasuku43/wsm/internal/testutil"
)

func TestProbeStandalone(t *testing.T) {
	testutil.IsolateGit(t)
	tmp := t.TempDir()
	remote := testutil.NewRemote(t, filepath.Join(tmp, "remotes"), "repo-a")
	clone := filepath.Join(tmp, "clone")
	testutil.RunGit(t, "", "clone", remote.Path, clone)

	probe, err := ProbeStandalone(clone)
	require.NoError(t, err)
	assert.Equal(t, remote.Path, probe.OriginURL)
	assert.Equal(t, "main", probe.Branch)
	assert.Len(t, probe.Head, 7)
	assert.True(t, probe.Clean)

	testutil.WriteFile(t, filepath.Join(clone, "wip.txt"), "wip\n")
	probe, err = ProbeStandalone(clone)
	require.NoError(t, err)
	assert.False(t, probe.Clean)
}

func TestProbeStandaloneWithoutOrigin(t *testing.T) {
	testutil.IsolateGit(t)
	dir := t.TempDir()
	testutil.RunGit(t, "", "init", dir)

	probe, err := ProbeStandalone(dir)
	require.NoError(t, err)
	assert.Empty(t, probe.OriginURL)
	assert.Empty(t, probe.Head)
}

func TestProbeStandaloneNotARepository(t *testing.T) {
	_, err := ProbeStandalone(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a git repository")
}
