package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tasuku43/wsm/internal/infra/gitcmd"
)

// FakeBackend records every call and fabricates just enough on-disk linkage
// for checkouts it adds to classify as linked worktrees.
type FakeBackend struct {
	mu sync.Mutex

	Calls []string
	// Keyed by URL, central path or checkout path as the method implies.
	CloneErr  map[string]error
	AddErr    map[string]error
	FetchErr  map[string]error
	MergeErr  map[string]error
	Merges    map[string]gitcmd.MergeOutcome
	HeadErr   map[string]error
	Heads     map[string]gitcmd.HeadInfo
	Statuses  map[string]gitcmd.TreeStatus
	StatusErr map[string]error
	Origins   map[string]string

	branches map[string]bool
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		CloneErr:  map[string]error{},
		AddErr:    map[string]error{},
		FetchErr:  map[string]error{},
		MergeErr:  map[string]error{},
		Merges:    map[string]gitcmd.MergeOutcome{},
		HeadErr:   map[string]error{},
		Heads:     map[string]gitcmd.HeadInfo{},
		Statuses:  map[string]gitcmd.TreeStatus{},
		StatusErr: map[string]error{},
		Origins:   map[string]string{},
		branches:  map[string]bool{},
	}
}

func (f *FakeBackend) record(format string, args ...any) {
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
}

// CallsWithPrefix returns recorded calls starting with prefix, sorted.
func (f *FakeBackend) CallsWithPrefix(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, call := range f.Calls {
		if strings.HasPrefix(call, prefix) {
			out = append(out, call)
		}
	}
	sort.Strings(out)
	return out
}

// Mutations returns the calls that would change state on disk.
func (f *FakeBackend) Mutations() []string {
	var out []string
	for _, prefix := range []string{"clone ", "add ", "create-branch ", "remove ", "fetch ", "merge "} {
		out = append(out, f.CallsWithPrefix(prefix)...)
	}
	return out
}

func (f *FakeBackend) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = nil
}

func (f *FakeBackend) Clone(ctx context.Context, url, centralPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clone %s", url)
	if err := f.CloneErr[url]; err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Join(centralPath, "worktrees"), 0o755); err != nil {
		return err
	}
	f.Origins[centralPath] = url
	return nil
}

func (f *FakeBackend) AddCheckout(ctx context.Context, centralPath, path, ref string, detached bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("add %s %s detached=%t", filepath.Base(path), ref, detached)
	if err := f.AddErr[path]; err != nil {
		return err
	}
	if _, err := os.Lstat(path); err == nil {
		return fmt.Errorf("add checkout %s: %w", path, gitcmd.ErrPathExists)
	}
	gitDir := filepath.Join(centralPath, "worktrees", filepath.Base(path))
	if err := os.MkdirAll(gitDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(gitDir, "commondir"), []byte("../..\n"), 0o644); err != nil {
		return err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(path, ".git"), []byte("gitdir: "+gitDir+"\n"), 0o644); err != nil {
		return err
	}
	head := gitcmd.HeadInfo{Symbolic: !detached, Target: "HEAD", Commit: "abc1234", Resolvable: true}
	if !detached {
		head.Target = "refs/heads/" + ref
	}
	if _, ok := f.Heads[path]; !ok {
		f.Heads[path] = head
	}
	return nil
}

func (f *FakeBackend) BranchExists(ctx context.Context, centralPath, branch string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("branch-exists %s %s", filepath.Base(centralPath), branch)
	return branch == "main" || f.branches[centralPath+"|"+branch], nil
}

func (f *FakeBackend) CreateBranch(ctx context.Context, centralPath, branch string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-branch %s %s", filepath.Base(centralPath), branch)
	f.branches[centralPath+"|"+branch] = true
	return "HEAD", nil
}

func (f *FakeBackend) RemoveCheckout(ctx context.Context, centralPath, path string, force bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("remove %s force=%t", filepath.Base(path), force)
	return os.RemoveAll(path)
}

func (f *FakeBackend) PruneCheckouts(ctx context.Context, centralPath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("prune %s", filepath.Base(centralPath))
	return nil
}

func (f *FakeBackend) Fetch(ctx context.Context, centralPath, branch string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fetch %s %s", filepath.Base(centralPath), branch)
	return f.FetchErr[centralPath]
}

func (f *FakeBackend) MergeOrFastForward(ctx context.Context, checkoutPath, branch string) (gitcmd.MergeOutcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("merge %s %s", filepath.Base(checkoutPath), branch)
	if err := f.MergeErr[checkoutPath]; err != nil {
		return 0, err
	}
	if outcome, ok := f.Merges[checkoutPath]; ok {
		return outcome, nil
	}
	return gitcmd.MergeFastForward, nil
}

func (f *FakeBackend) InspectHead(ctx context.Context, checkoutPath string) (gitcmd.HeadInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("inspect %s", filepath.Base(checkoutPath))
	if err := f.HeadErr[checkoutPath]; err != nil {
		return gitcmd.HeadInfo{}, err
	}
	if head, ok := f.Heads[checkoutPath]; ok {
		return head, nil
	}
	return gitcmd.HeadInfo{Symbolic: true, Target: "refs/heads/main", Commit: "abc1234", Resolvable: true}, nil
}

func (f *FakeBackend) WorkingTreeStatus(ctx context.Context, checkoutPath string) (gitcmd.TreeStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("status %s", filepath.Base(checkoutPath))
	if err := f.StatusErr[checkoutPath]; err != nil {
		return gitcmd.TreeStatus{}, err
	}
	return f.Statuses[checkoutPath], nil
}

func (f *FakeBackend) OriginURL(ctx context.Context, repoPath string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Origins[repoPath], nil
}
