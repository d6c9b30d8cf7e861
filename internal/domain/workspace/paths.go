package workspace

import (
	"path/filepath"

	"github.com/tasuku43/wsm/internal/infra/paths"
)

// WorkspacesRoot returns the directory holding every workspace.
func WorkspacesRoot(rootDir string) string {
	return paths.WorktreesRoot(rootDir)
}

func WorkspaceDir(rootDir, name string) string {
	return filepath.Join(WorkspacesRoot(rootDir), name)
}

// CheckoutPath is where the linked worktree of a repository lives inside a
// workspace.
func CheckoutPath(rootDir, workspace, derivedName string) string {
	return filepath.Join(WorkspaceDir(rootDir, workspace), derivedName)
}

// CentralPath is the bare clone shared by every workspace.
func CentralPath(rootDir, derivedName string) string {
	return filepath.Join(paths.ReposRoot(rootDir), derivedName+".git")
}
