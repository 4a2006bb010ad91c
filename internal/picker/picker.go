// Package picker is the interactive command chooser shown when stackwrap
// runs on a terminal without a command.
package picker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexander-akhmetov/stackwrap/internal/command"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

type item struct {
	path  []string
	short string
}

func (i item) title() string {
	return strings.Join(i.path, " ")
}

// Model is the bubbletea model of the picker.
type Model struct {
	items    []item
	visible  []int
	cursor   int
	filter   textinput.Model
	choice   []string
	quitting bool
}

// New lists every runnable command in reg.
func New(reg *command.Registry) Model {
	ti := textinput.New()
	ti.Placeholder = "type to filter"
	ti.Prompt = "> "
	ti.Focus()

	m := Model{items: collect(reg), filter: ti}
	m.refilter()
	return m
}

func collect(reg *command.Registry) []item {
	var items []item
	for _, e := range reg.Entries() {
		if e.Children != nil {
			items = append(items, collect(e.Children)...)
			continue
		}
		items = append(items, item{path: e.Path, short: e.Provider.Short()})
	}
	return items
}

func (m *Model) refilter() {
	query := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	var visible []int
	for i, it := range m.items {
		if query == "" || strings.Contains(strings.ToLower(it.title()), query) {
			visible = append(visible, i)
		}
	}
	m.visible = visible
	if m.cursor >= len(m.visible) {
		m.cursor = max(len(m.visible)-1, 0)
	}
}

// Choice returns the selected command path, or nil if the user quit.
func (m Model) Choice() []string {
	return m.choice
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		return m, cmd
	}

	switch keyMsg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "ctrl+p":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "ctrl+n":
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
		return m, nil
	case "enter":
		if len(m.visible) == 0 {
			return m, nil
		}
		m.choice = m.items[m.visible[m.cursor]].path
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.refilter()
	return m, cmd
}

func (m Model) View() string {
	if m.quitting || m.choice != nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("stackwrap: choose a command"))
	b.WriteString("\n")
	b.WriteString(m.filter.View())
	b.WriteString("\n\n")

	if len(m.visible) == 0 {
		b.WriteString(dimStyle.Render("  no matching commands"))
		b.WriteString("\n")
	}
	for row, idx := range m.visible {
		it := m.items[idx]
		line := fmt.Sprintf("%-24s %s", it.title(), dimStyle.Render(it.short))
		if row == m.cursor {
			b.WriteString(selectedStyle.Render("› ") + line + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ move • enter select • esc quit"))
	b.WriteString("\n")
	return b.String()
}

// Pick runs the picker on in/out and returns the chosen command path. A nil
// path means the user quit.
func Pick(ctx context.Context, reg *command.Registry, in io.Reader, out io.Writer) ([]string, error) {
	p := tea.NewProgram(New(reg), tea.WithInput(in), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("run picker: %w", err)
	}
	return final.(Model).Choice(), nil
}
