package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// CheckoutKind is what a checkout directory is on disk, independent of its
// content.
type CheckoutKind int

const (
	KindMissing CheckoutKind = iota
	// KindPlainDir exists but carries no version-control linkage.
	KindPlainDir
	// KindOrphaned has a .git file whose gitdir or common dir is gone.
	KindOrphaned
	KindLinkedWorktree
	KindStandaloneClone
)

func (k CheckoutKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindPlainDir:
		return "plain-dir"
	case KindOrphaned:
		return "orphaned"
	case KindLinkedWorktree:
		return "linked-worktree"
	case KindStandaloneClone:
		return "standalone-clone"
	default:
		return "unknown"
	}
}

// ClassifyCheckout inspects path without running git. The second return
// value explains KindPlainDir and KindOrphaned results.
func ClassifyCheckout(path string) (CheckoutKind, string) {
	kind, why, _ := classify(path)
	return kind, why
}

// classify also returns the common directory of a linked worktree, which is
// the central repository it belongs to.
func classify(path string) (CheckoutKind, string, string) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return KindMissing, "", ""
		}
		return KindPlainDir, err.Error(), ""
	}
	if !info.IsDir() {
		return KindPlainDir, "not a directory", ""
	}
	dotGit := filepath.Join(path, ".git")
	gitInfo, err := os.Lstat(dotGit)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return KindPlainDir, "no .git entry", ""
		}
		return KindPlainDir, err.Error(), ""
	}
	if gitInfo.IsDir() {
		return KindStandaloneClone, "", ""
	}
	gitDir, err := readGitDirFile(dotGit)
	if err != nil {
		return KindOrphaned, err.Error(), ""
	}
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(path, gitDir)
	}
	if !isDir(gitDir) {
		return KindOrphaned, "gitdir " + gitDir + " does not exist", ""
	}
	commonDir := gitDir
	if data, err := os.ReadFile(filepath.Join(gitDir, "commondir")); err == nil {
		commonDir = strings.TrimSpace(string(data))
		if !filepath.IsAbs(commonDir) {
			commonDir = filepath.Join(gitDir, commonDir)
		}
	}
	if !isDir(commonDir) {
		return KindOrphaned, "central repository " + filepath.Clean(commonDir) + " does not exist", ""
	}
	return KindLinkedWorktree, "", filepath.Clean(commonDir)
}

func readGitDirFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(string(data))
	const prefix = "gitdir:"
	if !strings.HasPrefix(line, prefix) {
		return "", errors.New(".git file has no gitdir line")
	}
	gitDir := strings.TrimSpace(strings.TrimPrefix(line, prefix))
	if gitDir == "" {
		return "", errors.New(".git file has an empty gitdir")
	}
	return gitDir, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
