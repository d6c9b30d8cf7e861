package gitcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/output"
)

type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type Options struct {
	Dir string
	// Env is appended to the process environment.
	Env []string
	// ShowOutput prints stdout/stderr even when debug logging is off.
	ShowOutput bool
}

// waitDelay bounds how long Run waits for stray children (ssh, credential
// helpers) holding the output pipes after git itself was killed.
const waitDelay = 5 * time.Second

func Run(ctx context.Context, args []string, opts Options) (Result, error) {
	if err := validateArgs(args); err != nil {
		return Result{
			Stderr:   err.Error(),
			ExitCode: -1,
		}, err
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	cmd.Env = append(os.Environ(), baseEnv...)
	if opts.Dir != "" {
		// Never let discovery escape into an enclosing repository.
		if abs, err := filepath.Abs(opts.Dir); err == nil {
			cmd.Env = append(cmd.Env, "GIT_CEILING_DIRECTORIES="+filepath.Dir(abs))
		}
	}
	cmd.Env = append(cmd.Env, opts.Env...)
	cmd.WaitDelay = waitDelay
	detach(cmd)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	Logf("git %s", strings.Join(args, " "))
	trace := ""
	if debuglog.Enabled() {
		trace = debuglog.NewTrace("git")
		debuglog.LogCommand(trace, debuglog.FormatCommand("git", args), opts.Dir)
	}
	err := cmd.Run()
	result := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}
	if debuglog.Enabled() {
		debuglog.LogStdoutLines(trace, result.Stdout)
		debuglog.LogStderrLines(trace, result.Stderr)
		debuglog.LogExit(trace, result.ExitCode)
	}
	if opts.ShowOutput {
		if result.Stdout != "" {
			output.LogLines(result.Stdout)
		}
		if result.Stderr != "" {
			output.LogLines(result.Stderr)
		}
	}
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return result, &CommandError{Args: args, Err: ErrTimeout}
		}
		return result, &CommandError{Args: args, Err: ctxErr}
	}
	if err != nil {
		return result, &CommandError{Args: args, Err: err}
	}
	return result, nil
}

// CommandError reports a git invocation that did not exit cleanly.
type CommandError struct {
	Args []string
	Err  error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// baseEnv keeps git non-interactive and its messages stable for parsing.
var baseEnv = []string{
	"GIT_TERMINAL_PROMPT=0",
	"LC_ALL=C",
}

func validateArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("git command is required")
	}
	if !isAllowedSubcommand(args[0]) {
		return fmt.Errorf("git subcommand %q is not allowed", args[0])
	}
	return nil
}

func isAllowedSubcommand(subcommand string) bool {
	_, ok := allowedSubcommands[subcommand]
	return ok
}

var allowedSubcommands = map[string]struct{}{
	"branch":           {},
	"check-ref-format": {},
	"clone":            {},
	"config":           {},
	"fetch":            {},
	"for-each-ref":     {},
	"merge":            {},
	"remote":           {},
	"rev-parse":        {},
	"show-ref":         {},
	"status":           {},
	"symbolic-ref":     {},
	"worktree":         {},
	"version":          {},
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1
	}
	return exitErr.ExitCode()
}
