package foreach

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/domain/workspace"
)

func setup(t *testing.T, names ...string) (Target, []repospec.Spec) {
	t.Helper()
	target := Target{Root: t.TempDir(), Workspace: "main"}
	var specs []repospec.Spec
	for _, name := range names {
		require.NoError(t, os.MkdirAll(workspace.CheckoutPath(target.Root, target.Workspace, name), 0o755))
		specs = append(specs, repospec.Spec{DerivedName: name, Kind: repospec.KindHeadTracking, Branch: "main"})
	}
	return target, specs
}

func TestRunExposesNameAndPath(t *testing.T) {
	target, specs := setup(t, "repo-a", "repo-b")
	var out bytes.Buffer
	summary, err := Run(context.Background(), target, specs, []string{"echo", "name=$name", "path=$path", "ws=$WSM_WORKSPACE"}, Options{Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, 0, summary.ExitCode())
	assert.Equal(t, "=== repo-a ===\nname=repo-a path=repo-a ws=main\n=== repo-b ===\nname=repo-b path=repo-b ws=main\n", out.String())
}

func TestRunRunsInsideCheckout(t *testing.T) {
	target, specs := setup(t, "repo-a")
	var out bytes.Buffer
	_, err := Run(context.Background(), target, specs, []string{"pwd"}, Options{Quiet: true, Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "repo-a", filepath.Base(strings.TrimSpace(out.String())))
}

func TestRunQuietOmitsHeaders(t *testing.T) {
	target, specs := setup(t, "repo-a")
	var out bytes.Buffer
	_, err := Run(context.Background(), target, specs, []string{"echo test"}, Options{Quiet: true, Stdout: &out})
	require.NoError(t, err)
	assert.Equal(t, "test\n", out.String())
}

func TestRunContinuesAfterFailure(t *testing.T) {
	target, specs := setup(t, "repo-a", "repo-b", "repo-c")
	var out bytes.Buffer
	summary, err := Run(context.Background(), target, specs, []string{`test "$name" != repo-b && echo ok-$name`}, Options{Quiet: true, Stdout: &out, Stderr: &bytes.Buffer{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"repo-b"}, summary.Failed)
	assert.Equal(t, 3, summary.Ran)
	assert.Equal(t, 1, summary.ExitCode())
	assert.Equal(t, "ok-repo-a\nok-repo-c\n", out.String())
}

func TestRunReportsMissingCheckout(t *testing.T) {
	target, specs := setup(t, "repo-a")
	specs = append(specs, repospec.Spec{DerivedName: "ghost"})
	var stderr bytes.Buffer
	summary, err := Run(context.Background(), target, specs, []string{"true"}, Options{Quiet: true, Stdout: &bytes.Buffer{}, Stderr: &stderr})
	require.NoError(t, err)
	assert.Equal(t, []string{"ghost"}, summary.Missing)
	assert.Contains(t, stderr.String(), "ghost: checkout missing")
	assert.Equal(t, 1, summary.ExitCode())
}

func TestRunRequiresCommand(t *testing.T) {
	target, specs := setup(t, "repo-a")
	_, err := Run(context.Background(), target, specs, nil, Options{})
	assert.Error(t, err)
}
