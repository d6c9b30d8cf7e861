package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/output"
)

type Renderer struct {
	out       io.Writer
	theme     Theme
	useColor  bool
	wrapWidth int
}

func NewRenderer(out io.Writer, theme Theme, useColor bool) *Renderer {
	return &Renderer{
		out:       out,
		theme:     theme,
		useColor:  useColor,
		wrapWidth: currentWrapWidth(),
	}
}

func (r *Renderer) Header(text string) {
	r.writeLine(r.style(text, r.theme.Header))
}

func (r *Renderer) Blank() {
	fmt.Fprintln(r.out)
}

func (r *Renderer) Section(title string) {
	debuglog.SetPhase(strings.ToLower(strings.TrimSpace(title)))
	r.writeLine(r.style(title, r.theme.SectionTitle))
}

// Step implements output.StepLogger.
func (r *Renderer) Step(text string) {
	r.bullet(text)
}

func (r *Renderer) Log(text string) {
	r.writeWithPrefix(output.Indent+output.Indent+output.LogConnector+" ", r.style(text, r.theme.Muted))
}

// LogLevel is Log with the colour of level instead of muted text.
func (r *Renderer) LogLevel(text string, level Level) {
	r.writeWithPrefix(output.Indent+output.Indent+output.LogConnector+" ", r.levelStyle(text, level))
}

func (r *Renderer) LogOutput(text string) {
	r.writeWithPrefix(output.LogOutputPrefix(), r.style(text, r.theme.Muted))
}

func (r *Renderer) Bullet(text string) {
	r.bullet(text)
}

func (r *Renderer) BulletError(text string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Error.Render(prefix)
		text = r.theme.Error.Render(text)
	}
	r.writeWithPrefix(output.Indent+prefix, text)
}

func (r *Renderer) Success(text string) {
	r.writeLine(r.style(text, r.theme.Success))
}

func (r *Renderer) Warn(text string) {
	r.writeWithPrefix(output.Indent, r.style(text, r.theme.Warn))
}

func (r *Renderer) Error(text string) {
	r.writeLine(r.style(text, r.theme.Error))
}

// Outcome prints "name: label" with label coloured by severity, followed by
// an optional muted detail.
func (r *Renderer) Outcome(name, label string, level Level, detail string) {
	line := name + ": " + r.levelStyle(label, level)
	if strings.TrimSpace(detail) != "" {
		line += " " + r.style("("+detail+")", r.theme.Muted)
	}
	r.bullet(line)
}

func (r *Renderer) TreeLine(prefix, text string) {
	r.writeWithPrefix(output.Indent+output.Indent+prefix, text)
}

func (r *Renderer) TreeLineMuted(prefix, text string) {
	r.writeWithPrefix(output.Indent+output.Indent+r.style(prefix, r.theme.Muted), r.style(text, r.theme.Muted))
}

// Level grades an outcome for colouring.
type Level int

const (
	LevelOK Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (r *Renderer) levelStyle(text string, level Level) string {
	switch level {
	case LevelOK:
		return r.style(text, r.theme.Success)
	case LevelWarn:
		return r.style(text, r.theme.Warn)
	case LevelError:
		return r.style(text, r.theme.Error)
	default:
		return r.style(text, r.theme.Accent)
	}
}

func (r *Renderer) style(text string, style lipgloss.Style) string {
	if !r.useColor {
		return text
	}
	return style.Render(text)
}

func (r *Renderer) bullet(text string) {
	prefix := output.StepPrefix + " "
	if r.useColor {
		prefix = r.theme.Muted.Render(prefix)
	}
	r.writeWithPrefix(output.Indent+prefix, text)
}

func (r *Renderer) writeWithPrefix(prefix, text string) {
	if r.wrapWidth <= 0 {
		r.writeLine(prefix + text)
		return
	}
	prefixWidth := lipgloss.Width(prefix)
	available := r.wrapWidth - prefixWidth
	if available <= 0 {
		r.writeLine(prefix + text)
		return
	}
	wrapped := ansi.Wrap(text, available, "")
	lines := strings.Split(wrapped, "\n")
	r.writeLine(prefix + lines[0])
	padding := strings.Repeat(" ", prefixWidth)
	for _, line := range lines[1:] {
		r.writeLine(padding + line)
	}
}

func (r *Renderer) writeLine(text string) {
	fmt.Fprintln(r.out, strings.TrimRight(text, "\n"))
}

// Plain strips styling from text; used for output that is parsed by tests
// or scripts.
func Plain(text string) string {
	return ansi.Strip(text)
}
