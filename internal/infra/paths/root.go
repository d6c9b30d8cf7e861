package paths

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	RootEnv       = "WSM_ROOT"
	ConfigFileEnv = "WSM_CONFIG_FILE"
)

// ResolveRoot picks the workspace root: the flag, then $WSM_ROOT, then the
// nearest ancestor of cwd holding workspace.conf or .wsm, then cwd.
func ResolveRoot(flagRoot, cwd string) (string, error) {
	if flagRoot != "" {
		return normalizeRoot(flagRoot)
	}

	envRoot := os.Getenv(RootEnv)
	if envRoot != "" {
		return normalizeRoot(envRoot)
	}

	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		cwd = wd
	}
	cwd, err := filepath.Abs(cwd)
	if err != nil {
		return "", err
	}
	if found, ok := findMarkedAncestor(cwd); ok {
		return found, nil
	}
	return filepath.Clean(cwd), nil
}

func findMarkedAncestor(dir string) (string, bool) {
	for {
		if isRoot(dir) {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isRoot(dir string) bool {
	if ok, _ := DirExists(StateDir(dir)); ok {
		return true
	}
	ok, _ := FileExists(LegacyConfigPath(dir))
	return ok
}

// ResolveLegacyConfig returns the legacy configuration file: the flag, then
// $WSM_CONFIG_FILE, then <root>/workspace.conf.
func ResolveLegacyConfig(flagPath, rootDir string) (string, error) {
	if flagPath != "" {
		return normalizeRoot(flagPath)
	}
	if envPath := os.Getenv(ConfigFileEnv); envPath != "" {
		return normalizeRoot(envPath)
	}
	return LegacyConfigPath(rootDir), nil
}

func normalizeRoot(path string) (string, error) {
	expanded, err := expandHome(path)
	if err != nil {
		return "", err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		if path == "~" {
			return home, nil
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~/")), nil
	}

	return path, nil
}
