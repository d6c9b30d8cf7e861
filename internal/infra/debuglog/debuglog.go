// Package debuglog records every git invocation to a daily log file when
// debug logging is enabled.
package debuglog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
)

type loggerState struct {
	mu      sync.Mutex
	enabled atomic.Bool
	file    *os.File
	logger  *log.Logger
	path    string
}

var state loggerState
var traceSeq uint64
var ctxState debugContext

type debugContext struct {
	mu     sync.Mutex
	phase  string
	prompt string
	step   string
	stepID string
}

// Dir returns the log directory for rootDir: <root>/.wsm/logs when it can be
// created, otherwise $XDG_STATE_HOME/wsm/logs.
func Dir(rootDir string) string {
	if strings.TrimSpace(rootDir) != "" {
		dir := filepath.Join(rootDir, ".wsm", "logs")
		if err := os.MkdirAll(dir, 0o700); err == nil {
			return dir
		}
	}
	return filepath.Join(xdg.StateHome, "wsm", "logs")
}

// Enable opens debug-YYYYMMDD.log in logDir and returns its path.
func Enable(logDir string) (string, error) {
	if strings.TrimSpace(logDir) == "" {
		return "", fmt.Errorf("log directory is required")
	}
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return "", fmt.Errorf("create debug log dir: %w", err)
	}
	name := fmt.Sprintf("debug-%s.log", time.Now().Format("20060102"))
	path := filepath.Join(logDir, name)
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return "", fmt.Errorf("open debug log file: %w", err)
	}
	logger := log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339Nano,
		Formatter:       log.LogfmtFormatter,
		Level:           log.DebugLevel,
	}).With("pid", os.Getpid())

	state.mu.Lock()
	if state.file != nil {
		_ = state.file.Close()
	}
	state.file = file
	state.logger = logger
	state.path = path
	state.enabled.Store(true)
	state.mu.Unlock()
	return path, nil
}

func Close() error {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.enabled.Store(false)
	state.logger = nil
	var err error
	if state.file != nil {
		err = state.file.Close()
		state.file = nil
	}
	return err
}

func Enabled() bool {
	return state.enabled.Load()
}

func NewTrace(prefix string) string {
	value := atomic.AddUint64(&traceSeq, 1)
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "cmd"
	}
	return fmt.Sprintf("%s:%x", prefix, value)
}

func FormatCommand(name string, args []string) string {
	if len(args) == 0 {
		return strings.TrimSpace(name)
	}
	return strings.TrimSpace(name + " " + strings.Join(args, " "))
}

func LogCommand(trace, cmd, dir string) {
	logLine(trace, "cmd", "cmd", cmd, "dir", dir)
}

func LogStdoutLines(trace, text string) {
	logOutputLines(trace, "stdout", text)
}

func LogStderrLines(trace, text string) {
	logOutputLines(trace, "stderr", text)
}

func LogExit(trace string, code int) {
	logLine(trace, "exit", "code", code)
}

// Event records a free-form engine event (outcomes, repairs) under trace.
func Event(trace, msg string, keyvals ...any) {
	logLine(trace, "event", append([]any{"msg", msg}, keyvals...)...)
}

func SetPrompt(label string) {
	ctxState.mu.Lock()
	ctxState.phase = "prompt"
	ctxState.prompt = strings.TrimSpace(label)
	ctxState.step = ""
	ctxState.stepID = ""
	ctxState.mu.Unlock()
}

func ClearPrompt() {
	ctxState.mu.Lock()
	if ctxState.phase == "prompt" {
		ctxState.phase = ""
	}
	ctxState.prompt = ""
	ctxState.mu.Unlock()
}

func SetStep(index int, stepID string) {
	ctxState.mu.Lock()
	ctxState.phase = "steps"
	ctxState.prompt = ""
	ctxState.step = fmt.Sprintf("%d", index)
	ctxState.stepID = strings.TrimSpace(stepID)
	ctxState.mu.Unlock()
}

func SetPhase(phase string) {
	ctxState.mu.Lock()
	ctxState.phase = strings.TrimSpace(phase)
	ctxState.prompt = ""
	ctxState.step = ""
	ctxState.stepID = ""
	ctxState.mu.Unlock()
}

func logOutputLines(trace, kind, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		logLine(trace, kind, "line", line)
	}
}

func logLine(trace, kind string, keyvals ...any) {
	if !Enabled() {
		return
	}
	trace = strings.TrimSpace(trace)
	if trace == "" {
		trace = "unknown"
	}
	phase, prompt, step, stepID := snapshotContext()
	if phase == "" {
		phase = "none"
	}
	fields := []any{"trace", trace, "phase", phase, "kind", kind}
	if prompt != "" {
		fields = append(fields, "prompt", prompt)
	}
	if step != "" {
		fields = append(fields, "step", step)
	}
	if stepID != "" {
		fields = append(fields, "step_id", stepID)
	}
	fields = append(fields, keyvals...)

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.logger == nil {
		return
	}
	state.logger.Debug("", fields...)
}

func snapshotContext() (string, string, string, string) {
	ctxState.mu.Lock()
	defer ctxState.mu.Unlock()
	return ctxState.phase, ctxState.prompt, ctxState.step, ctxState.stepID
}
