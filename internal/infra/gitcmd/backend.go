package gitcmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"
)

// DefaultTimeout bounds a single backend call.
const DefaultTimeout = 10 * time.Minute

// HeadInfo describes where HEAD of a checkout points.
type HeadInfo struct {
	Symbolic bool
	// Target is the symbolic ref (refs/heads/...) or "HEAD" when detached.
	Target     string
	Commit     string
	Resolvable bool
	// Empty is set when HEAD is unresolvable and the repository has no refs.
	Empty bool
}

// Backend runs the repository operations the workspace engine needs. Every
// call is bounded by Timeout.
type Backend struct {
	Timeout time.Duration
}

func NewBackend(timeout time.Duration) *Backend {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Backend{Timeout: timeout}
}

func (b *Backend) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (b *Backend) Clone(ctx context.Context, url, centralPath string) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if err := CloneBare(ctx, url, centralPath); err != nil {
		_ = os.RemoveAll(centralPath)
		return err
	}
	return nil
}

// AddCheckout registers a worktree at path. With detached set, ref is any
// revision; otherwise ref is a local branch name.
func (b *Backend) AddCheckout(ctx context.Context, centralPath, path, ref string, detached bool) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("add checkout %s: %w", path, ErrPathExists)
	}
	if detached {
		if _, ok, err := ResolveCommit(ctx, centralPath, ref); err != nil {
			return err
		} else if !ok {
			return fmt.Errorf("ref %s: %w", ref, ErrRefNotFound)
		}
		return WorktreeAddDetached(ctx, centralPath, path, ref)
	}
	return WorktreeAddBranch(ctx, centralPath, path, ref)
}

func (b *Backend) BranchExists(ctx context.Context, centralPath, branch string) (bool, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	_, ok, err := ShowRef(ctx, centralPath, "refs/heads/"+branch)
	return ok, err
}

// CreateBranch creates branch in the central repository, starting from the
// fetched remote branch when one exists and from HEAD otherwise. It returns
// the base it used.
func (b *Backend) CreateBranch(ctx context.Context, centralPath, branch string) (string, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	base := "HEAD"
	if _, ok, err := ShowRef(ctx, centralPath, "refs/remotes/origin/"+branch); err != nil {
		return "", err
	} else if ok {
		base = "refs/remotes/origin/" + branch
	}
	if _, ok, err := ResolveCommit(ctx, centralPath, base); err != nil {
		return "", err
	} else if !ok {
		return "", fmt.Errorf("create branch %s from %s: %w", branch, base, ErrRefNotFound)
	}
	if err := BranchCreate(ctx, centralPath, branch, base); err != nil {
		return "", err
	}
	return base, nil
}

func (b *Backend) RemoveCheckout(ctx context.Context, centralPath, path string, force bool) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return WorktreeRemove(ctx, centralPath, path, force)
}

func (b *Backend) PruneCheckouts(ctx context.Context, centralPath string) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return WorktreePrune(ctx, centralPath)
}

func (b *Backend) Fetch(ctx context.Context, centralPath, branch string) error {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return FetchBranch(ctx, centralPath, branch)
}

// MergeOrFastForward integrates origin/<branch> into the checkout.
func (b *Backend) MergeOrFastForward(ctx context.Context, checkoutPath, branch string) (MergeOutcome, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return Merge(ctx, checkoutPath, "refs/remotes/origin/"+branch)
}

func (b *Backend) InspectHead(ctx context.Context, checkoutPath string) (HeadInfo, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	if _, err := RevParse(ctx, checkoutPath, "--git-dir"); err != nil {
		if errors.Is(err, ErrTimeout) {
			return HeadInfo{}, err
		}
		return HeadInfo{}, fmt.Errorf("%w: %w", ErrHeadUnreadable, err)
	}
	ref, symbolic, err := SymbolicRef(ctx, checkoutPath, "HEAD")
	if err != nil {
		return HeadInfo{}, fmt.Errorf("%w: %w", ErrHeadUnreadable, err)
	}
	info := HeadInfo{Symbolic: symbolic, Target: "HEAD"}
	if symbolic {
		info.Target = ref
	}
	commit, ok, err := ResolveCommit(ctx, checkoutPath, "HEAD")
	if err != nil {
		return HeadInfo{}, err
	}
	info.Commit = commit
	info.Resolvable = ok
	if !ok {
		hasRefs, err := HasAnyRef(ctx, checkoutPath)
		if err != nil {
			return HeadInfo{}, err
		}
		info.Empty = !hasRefs
	}
	return info, nil
}

func (b *Backend) WorkingTreeStatus(ctx context.Context, checkoutPath string) (TreeStatus, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return Status(ctx, checkoutPath)
}

// DefaultBranch returns the branch HEAD of the central repository names.
func (b *Backend) DefaultBranch(ctx context.Context, centralPath string) (string, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	ref, ok, err := SymbolicRef(ctx, centralPath, "HEAD")
	if err != nil || !ok {
		return "", err
	}
	return shortBranch(ref), nil
}

func (b *Backend) OriginURL(ctx context.Context, repoPath string) (string, error) {
	ctx, cancel := b.bound(ctx)
	defer cancel()
	return RemoteGetURL(ctx, repoPath, "origin")
}

func shortBranch(ref string) string {
	const prefix = "refs/heads/"
	if len(ref) > len(prefix) && ref[:len(prefix)] == prefix {
		return ref[len(prefix):]
	}
	return ref
}
