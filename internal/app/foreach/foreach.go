// Package foreach runs a shell command in every checkout of a workspace.
package foreach

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/tasuku43/wsm/internal/domain/repospec"
	"github.com/tasuku43/wsm/internal/domain/workspace"
	"github.com/tasuku43/wsm/internal/infra/debuglog"
)

const (
	EnvRepoName  = "WSM_REPO_NAME"
	EnvRepoPath  = "WSM_REPO_PATH"
	EnvWorkspace = "WSM_WORKSPACE"
)

type Options struct {
	Quiet  bool
	Stdout io.Writer
	Stderr io.Writer
	// Shell defaults to sh.
	Shell string
}

type Target struct {
	Root      string
	Workspace string
}

// Summary counts how the command went across repositories.
type Summary struct {
	Ran     int
	Failed  []string
	Missing []string
}

func (s Summary) ExitCode() int {
	if len(s.Failed) > 0 || len(s.Missing) > 0 {
		return 1
	}
	return 0
}

// Run executes command with `sh -c` in each checkout of target, in the
// order of specs. It never stops early on a failing repository.
func Run(ctx context.Context, target Target, specs []repospec.Spec, command []string, opts Options) (Summary, error) {
	var summary Summary
	if len(command) == 0 {
		return summary, errors.New("command is required")
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	shell := opts.Shell
	if shell == "" {
		shell = "sh"
	}
	script := strings.Join(command, " ")

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		path := workspace.CheckoutPath(target.Root, target.Workspace, spec.DerivedName)
		if !opts.Quiet {
			fmt.Fprintf(stdout, "=== %s ===\n", spec.DerivedName)
		}
		if kind, _ := workspace.ClassifyCheckout(path); kind == workspace.KindMissing {
			fmt.Fprintf(stderr, "%s: checkout missing at %s\n", spec.DerivedName, path)
			summary.Missing = append(summary.Missing, spec.DerivedName)
			continue
		}

		cmd := exec.CommandContext(ctx, shell, "-c", script)
		cmd.Dir = path
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		cmd.Env = append(os.Environ(),
			"name="+spec.DerivedName,
			"path="+spec.DerivedName,
			EnvRepoName+"="+spec.DerivedName,
			EnvRepoPath+"="+path,
			EnvWorkspace+"="+target.Workspace,
		)
		trace := debuglog.NewTrace("foreach")
		debuglog.LogCommand(trace, shell+" -c "+script, path)
		summary.Ran++
		err := cmd.Run()
		code := 0
		if err != nil {
			var exitErr *exec.ExitError
			if !errors.As(err, &exitErr) {
				fmt.Fprintf(stderr, "%s: %v\n", spec.DerivedName, err)
				code = -1
			} else {
				code = exitErr.ExitCode()
			}
			summary.Failed = append(summary.Failed, spec.DerivedName)
		}
		debuglog.LogExit(trace, code)
	}
	return summary, nil
}
