package gitcmd

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrTimeout is returned when a git invocation outlives its deadline.
	ErrTimeout = errors.New("git command timed out")
	// ErrRefNotFound reports a branch, tag or commit that does not exist.
	ErrRefNotFound = errors.New("ref not found")
	// ErrPathExists reports a checkout target that is already occupied.
	ErrPathExists = errors.New("path already exists")
	// ErrNotFound reports a clone source that does not exist.
	ErrNotFound = errors.New("repository not found")
	// ErrNetwork reports a transport failure talking to the remote.
	ErrNetwork = errors.New("network error")
	// ErrLocked reports a checkout git refuses to remove.
	ErrLocked = errors.New("checkout is locked or has local changes")
	// ErrHeadUnreadable reports a checkout git cannot open at all.
	ErrHeadUnreadable = errors.New("HEAD is unreadable")
	// ErrBranchInUse reports a branch already checked out by another worktree.
	ErrBranchInUse = errors.New("branch is checked out elsewhere")
)

// BranchInUseError names the worktree that holds a branch git refused to
// check out a second time.
type BranchInUseError struct {
	Branch string
	Path   string
	Err    error
}

func (e *BranchInUseError) Error() string {
	return fmt.Sprintf("branch %s is checked out at %s", e.Branch, e.Path)
}

func (e *BranchInUseError) Unwrap() []error {
	return []error{ErrBranchInUse, e.Err}
}

// git 2.42 and later say "already used by worktree", older releases say
// "already checked out".
var branchInUsePattern = regexp.MustCompile(`'([^']+)' is already (?:checked out|used by worktree) at '([^']+)'`)

// branchInUse returns a BranchInUseError when stderr reports one, nil
// otherwise.
func branchInUse(label string, res Result, err error) error {
	m := branchInUsePattern.FindStringSubmatch(res.Stderr)
	if m == nil {
		return nil
	}
	return &BranchInUseError{Branch: m[1], Path: m[2], Err: failed(label, res, err)}
}

// failed wraps the cause of a git invocation with label and the line of
// stderr that explains it. The full stderr stays in the debug log.
func failed(label string, res Result, err error) error {
	err = cause(err)
	if reason := stderrReason(res.Stderr); reason != "" {
		return fmt.Errorf("git %s failed: %w: %s", label, err, reason)
	}
	return fmt.Errorf("git %s failed: %w", label, err)
}

// cause strips the CommandError layer so callers label the command once.
func cause(err error) error {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Err
	}
	return err
}

// stderrReason picks the last fatal: or error: line, falling back to the last
// non-empty line. Progress lines such as "Preparing worktree" come first.
func stderrReason(stderr string) string {
	lines := strings.Split(strings.ReplaceAll(stderr, "\r\n", "\n"), "\n")
	last := ""
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if last == "" {
			last = line
		}
		if strings.HasPrefix(line, "fatal:") || strings.HasPrefix(line, "error:") {
			return line
		}
	}
	return last
}

// classified wraps err with the first sentinel whose marker appears in stderr.
func classified(label string, res Result, err error, rules ...stderrRule) error {
	err = cause(err)
	if errors.Is(err, ErrTimeout) {
		return failed(label, res, err)
	}
	lower := strings.ToLower(res.Stderr)
	for _, rule := range rules {
		for _, marker := range rule.markers {
			if strings.Contains(lower, marker) {
				return failed(label, res, fmt.Errorf("%w: %w", rule.sentinel, err))
			}
		}
	}
	return failed(label, res, err)
}

type stderrRule struct {
	sentinel error
	markers  []string
}

var (
	refNotFoundRule = stderrRule{ErrRefNotFound, []string{
		"couldn't find remote ref",
		"invalid reference",
		"not a valid object name",
		"unknown revision",
		"not a commit",
	}}
	pathExistsRule = stderrRule{ErrPathExists, []string{
		"already exists",
		"is a missing but already registered worktree",
	}}
	notFoundRule = stderrRule{ErrNotFound, []string{
		"does not appear to be a git repository",
		"repository not found",
		"does not exist",
		"not found",
	}}
	networkRule = stderrRule{ErrNetwork, []string{
		"could not resolve host",
		"unable to access",
		"connection refused",
		"connection timed out",
		"could not read from remote repository",
		"network is unreachable",
	}}
	lockedRule = stderrRule{ErrLocked, []string{
		"is locked",
		"contains modified or untracked files",
		"is dirty",
	}}
)
