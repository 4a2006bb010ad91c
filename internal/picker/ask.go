package picker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// Field asks for one value. With choices it filters them the way the
// command picker does; without, the typed text is the answer.
type Field struct {
	title     string
	choices   []string
	visible   []string
	cursor    int
	input     textinput.Model
	answer    string
	done      bool
	cancelled bool
}

// NewField returns a field titled title offering choices.
func NewField(title string, choices []string) Field {
	ti := textinput.New()
	ti.Prompt = "> "
	if len(choices) > 0 {
		ti.Placeholder = "type to filter"
	}
	ti.Focus()

	f := Field{title: title, choices: choices, input: ti}
	f.refilter()
	return f
}

func (f *Field) refilter() {
	query := strings.ToLower(strings.TrimSpace(f.input.Value()))
	var visible []string
	for _, c := range f.choices {
		if query == "" || strings.Contains(strings.ToLower(c), query) {
			visible = append(visible, c)
		}
	}
	f.visible = visible
	if f.cursor >= len(f.visible) {
		f.cursor = max(len(f.visible)-1, 0)
	}
}

// Answer returns the confirmed value. It is empty when the user cancelled.
func (f Field) Answer() string {
	if f.cancelled {
		return ""
	}
	return f.answer
}

func (f Field) Init() tea.Cmd {
	return textinput.Blink
}

func (f Field) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		return f, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		f.cancelled = true
		return f, tea.Quit
	case "up", "ctrl+p":
		if f.cursor > 0 {
			f.cursor--
		}
		return f, nil
	case "down", "ctrl+n":
		if f.cursor < len(f.visible)-1 {
			f.cursor++
		}
		return f, nil
	case "enter":
		if len(f.choices) == 0 {
			f.answer = strings.TrimSpace(f.input.Value())
		} else {
			if len(f.visible) == 0 {
				return f, nil
			}
			f.answer = f.visible[f.cursor]
		}
		f.done = true
		return f, tea.Quit
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	f.refilter()
	return f, cmd
}

func (f Field) View() string {
	if f.cancelled || f.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n")
	b.WriteString(f.input.View())
	b.WriteString("\n")
	if len(f.choices) == 0 {
		b.WriteString(dimStyle.Render("enter confirm • esc cancel"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\n")
	if len(f.visible) == 0 {
		b.WriteString(dimStyle.Render("  no matches"))
		b.WriteString("\n")
	}
	for row, c := range f.visible {
		if row == f.cursor {
			b.WriteString(selectedStyle.Render("› "+c) + "\n")
		} else {
			b.WriteString("  " + c + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move • enter select • esc cancel"))
	b.WriteString("\n")
	return b.String()
}

// Ask runs a Field on in/out and returns the answer. An empty answer means
// the user cancelled or typed nothing.
func Ask(ctx context.Context, title string, choices []string, in io.Reader, out io.Writer) (string, error) {
	p := tea.NewProgram(NewField(title, choices), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("run prompt: %w", err)
	}
	return final.(Field).Answer(), nil
}
