package debuglog

import (
	"os"
	"strings"
	"testing"
)

func TestEnableWritesLogfmtLines(t *testing.T) {
	dir := t.TempDir()
	path, err := Enable(dir)
	if err != nil {
		t.Fatalf("Enable: %v", err)
	}
	t.Cleanup(func() { _ = Close() })

	SetPhase("sync")
	trace := NewTrace("git")
	LogCommand(trace, FormatCommand("git", []string{"fetch", "origin"}), "/tmp/repo")
	LogStderrLines(trace, "line one\n\nline two\n")
	LogExit(trace, 1)
	if err := Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	text := string(data)
	for _, want := range []string{"trace=" + trace, "phase=sync", "kind=cmd", `cmd="git fetch origin"`, "kind=stderr", `line="line two"`, "code=1"} {
		if !strings.Contains(text, want) {
			t.Fatalf("log missing %q:\n%s", want, text)
		}
	}
	if got := strings.Count(text, "kind=stderr"); got != 2 {
		t.Fatalf("stderr lines = %d, want 2", got)
	}
}

func TestLogLineDisabledIsNoop(t *testing.T) {
	_ = Close()
	LogCommand("git:1", "git status", "")
	if Enabled() {
		t.Fatalf("expected debug log to be disabled")
	}
}

func TestDirPrefersRoot(t *testing.T) {
	root := t.TempDir()
	got := Dir(root)
	if !strings.HasPrefix(got, root) {
		t.Fatalf("Dir = %q, want under %q", got, root)
	}
}
