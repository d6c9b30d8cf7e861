package gitcmd

import (
	"context"
	"strings"
)

// WorktreePrune cleans up stale worktree metadata.
func WorktreePrune(ctx context.Context, dir string) error {
	res, err := Run(ctx, []string{"worktree", "prune"}, Options{Dir: dir})
	if err != nil {
		return failed("worktree prune", res, err)
	}
	return nil
}

// WorktreeListPorcelain lists worktrees in porcelain format.
func WorktreeListPorcelain(ctx context.Context, dir string) (string, error) {
	res, err := Run(ctx, []string{"worktree", "list", "--porcelain"}, Options{Dir: dir})
	if err != nil {
		return "", failed("worktree list", res, err)
	}
	return res.Stdout, nil
}

// WorktreeAddBranch adds a worktree for an existing local branch.
func WorktreeAddBranch(ctx context.Context, dir, path, branch string) error {
	res, err := Run(ctx, []string{"worktree", "add", path, branch}, Options{Dir: dir})
	if err != nil {
		if inUse := branchInUse("worktree add", res, err); inUse != nil {
			return inUse
		}
		return classified("worktree add", res, err, pathExistsRule, refNotFoundRule)
	}
	return nil
}

// WorktreeAddDetached adds a worktree with HEAD detached at ref.
func WorktreeAddDetached(ctx context.Context, dir, path, ref string) error {
	res, err := Run(ctx, []string{"worktree", "add", "--detach", path, ref}, Options{Dir: dir})
	if err != nil {
		return classified("worktree add", res, err, pathExistsRule, refNotFoundRule)
	}
	return nil
}

// WorktreeRemove removes a worktree.
func WorktreeRemove(ctx context.Context, dir, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = []string{"worktree", "remove", "--force", path}
	}
	res, err := Run(ctx, args, Options{Dir: dir})
	if err != nil {
		return classified("worktree remove", res, err, lockedRule)
	}
	return nil
}

// WorktreePaths returns the checkout paths registered in the repository at
// dir, excluding the bare repository itself.
func WorktreePaths(ctx context.Context, dir string) ([]string, error) {
	out, err := WorktreeListPorcelain(ctx, dir)
	if err != nil {
		return nil, err
	}
	return parseWorktreeList(out), nil
}

func parseWorktreeList(out string) []string {
	var paths []string
	current := ""
	bare := false
	flush := func() {
		if current != "" && !bare {
			paths = append(paths, current)
		}
		current = ""
		bare = false
	}
	for _, line := range strings.Split(strings.ReplaceAll(out, "\r\n", "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current = strings.TrimPrefix(line, "worktree ")
		case line == "bare":
			bare = true
		case strings.TrimSpace(line) == "":
			flush()
		}
	}
	flush()
	return paths
}
