// Package testutil builds throwaway git remotes for tests.
package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// IsolateGit points git at an empty global config and a fixed identity so
// tests never read the developer's configuration or prompt for credentials.
func IsolateGit(t *testing.T) {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "gitconfig")
	if err := os.WriteFile(configPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write gitconfig: %v", err)
	}
	t.Setenv("GIT_CONFIG_GLOBAL", configPath)
	t.Setenv("GIT_CONFIG_SYSTEM", "/dev/null")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")
	t.Setenv("GIT_TERMINAL_PROMPT", "0")
	t.Setenv("GIT_AUTHOR_NAME", "wsm")
	t.Setenv("GIT_AUTHOR_EMAIL", "wsm@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "wsm")
	t.Setenv("GIT_COMMITTER_EMAIL", "wsm@example.com")
}

func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Env = os.Environ()
	if dir != "" {
		cmd.Dir = dir
	}
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		t.Fatalf("git %s failed: %v\nstderr:\n%s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String())
}

// Remote is a bare repository seeded with a main branch, a develop branch
// and a v1.0.0 tag.
type Remote struct {
	Path string
	seed string
}

// NewRemote creates <base>/<name>.git and returns it.
func NewRemote(t *testing.T, base, name string) *Remote {
	t.Helper()
	remotePath := filepath.Join(base, name+".git")
	if err := os.MkdirAll(base, 0o755); err != nil {
		t.Fatalf("mkdir remote base: %v", err)
	}
	RunGit(t, "", "init", "--bare", remotePath)

	seedDir := filepath.Join(t.TempDir(), name+"-seed")
	RunGit(t, "", "init", seedDir)
	RunGit(t, seedDir, "symbolic-ref", "HEAD", "refs/heads/main")
	WriteFile(t, filepath.Join(seedDir, "README.md"), "# "+name+"\n")
	RunGit(t, seedDir, "add", ".")
	RunGit(t, seedDir, "commit", "-m", "init")
	RunGit(t, seedDir, "tag", "v1.0.0")
	RunGit(t, seedDir, "remote", "add", "origin", remotePath)
	RunGit(t, seedDir, "push", "origin", "main", "--tags")
	RunGit(t, seedDir, "checkout", "-b", "develop")
	WriteFile(t, filepath.Join(seedDir, "DEVELOP.md"), "develop\n")
	RunGit(t, seedDir, "add", ".")
	RunGit(t, seedDir, "commit", "-m", "develop")
	RunGit(t, seedDir, "push", "origin", "develop")
	RunGit(t, seedDir, "checkout", "main")
	RunGit(t, "", "--git-dir", remotePath, "symbolic-ref", "HEAD", "refs/heads/main")
	return &Remote{Path: remotePath, seed: seedDir}
}

// Commit pushes a new commit writing file on branch of the remote.
func (r *Remote) Commit(t *testing.T, branch, file, content string) string {
	t.Helper()
	RunGit(t, r.seed, "fetch", "origin")
	RunGit(t, r.seed, "checkout", "-B", branch, "origin/"+branch)
	WriteFile(t, filepath.Join(r.seed, file), content)
	RunGit(t, r.seed, "add", ".")
	RunGit(t, r.seed, "commit", "-m", "update "+file)
	RunGit(t, r.seed, "push", "origin", branch)
	return RunGit(t, r.seed, "rev-parse", "HEAD")
}

func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
