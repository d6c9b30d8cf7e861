package ui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tasuku43/wsm/internal/infra/debuglog"
	"github.com/tasuku43/wsm/internal/infra/output"
)

var ErrPromptCanceled = errors.New("prompt canceled")

// Prompter asks yes/no questions. On a terminal it runs an inline bubbletea
// input; otherwise it reads one line from In.
type Prompter struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
	Theme       Theme
	UseColor    bool

	reader *bufio.Reader
}

// Confirm asks label and returns true only for an explicit yes. End of input
// counts as no.
func (p *Prompter) Confirm(label string) (bool, error) {
	debuglog.SetPrompt(label)
	defer debuglog.ClearPrompt()
	if p.Interactive {
		return p.confirmInline(label)
	}
	return p.confirmLine(label)
}

func (p *Prompter) confirmLine(label string) (bool, error) {
	fmt.Fprintf(p.Out, "%s [y/N]: ", label)
	if p.reader == nil {
		p.reader = bufio.NewReader(p.In)
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	fmt.Fprintln(p.Out)
	return parseYes(line), nil
}

func parseYes(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func (p *Prompter) confirmInline(label string) (bool, error) {
	model := newConfirmInlineModel(label, p.Theme, p.UseColor)
	prog := tea.NewProgram(model, tea.WithInput(p.In), tea.WithOutput(p.Out))
	out, err := prog.Run()
	if err != nil {
		return false, err
	}
	final := out.(confirmInlineModel)
	if final.err != nil {
		return false, final.err
	}
	return final.value, nil
}

type confirmInlineModel struct {
	label    string
	theme    Theme
	useColor bool
	input    textinput.Model
	value    bool
	done     bool
	err      error
}

func newConfirmInlineModel(label string, theme Theme, useColor bool) confirmInlineModel {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Placeholder = "y/N"
	ti.CharLimit = 3
	ti.Focus()
	if useColor {
		ti.PlaceholderStyle = theme.Muted
	}
	return confirmInlineModel{
		label:    label,
		theme:    theme,
		useColor: useColor,
		input:    ti,
	}
}

func (m confirmInlineModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m confirmInlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = ErrPromptCanceled
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.value = parseYes(m.input.Value())
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m confirmInlineModel) View() string {
	prefix := output.StepPrefix
	label := m.label
	if m.useColor {
		prefix = m.theme.Accent.Render(prefix)
		label = m.theme.Accent.Render(label)
	}
	answer := m.input.View()
	if m.done {
		answer = "no"
		if m.value {
			answer = "yes"
		}
	}
	return fmt.Sprintf("%s%s %s: %s\n", output.Indent, prefix, label, answer)
}
