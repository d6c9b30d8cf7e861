package paths

import "path/filepath"

const (
	LegacyConfigName = "workspace.conf"
	stateDirName     = ".wsm"
)

// ReposRoot holds one bare central clone per repository name.
func ReposRoot(rootDir string) string {
	return filepath.Join(rootDir, "repos")
}

// WorktreesRoot holds one directory per workspace.
func WorktreesRoot(rootDir string) string {
	return filepath.Join(rootDir, "worktrees")
}

func StateDir(rootDir string) string {
	return filepath.Join(rootDir, stateDirName)
}

func LegacyConfigPath(rootDir string) string {
	return filepath.Join(rootDir, LegacyConfigName)
}

func DefaultConfigPath(rootDir string) string {
	return filepath.Join(StateDir(rootDir), "config")
}

func WorkspaceConfigDir(rootDir string) string {
	return filepath.Join(StateDir(rootDir), "workspaces")
}

func WorkspaceConfigPath(rootDir, workspace string) string {
	return filepath.Join(WorkspaceConfigDir(rootDir), workspace+".config")
}

// TrashDir receives checkouts that repair moved out of the way.
func TrashDir(rootDir string) string {
	return filepath.Join(StateDir(rootDir), "trash")
}
