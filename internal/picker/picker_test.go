package picker

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexander-akhmetov/stackwrap/internal/command"
)

type stub struct {
	command.Base
}

func (s *stub) Run(context.Context, *command.Invocation) error { return nil }

func testRegistry(t *testing.T) *command.Registry {
	t.Helper()
	reg := command.NewRegistry(nil)
	require.NoError(t, reg.Register(command.NewGroup(command.Base{Command: "terraform"},
		&stub{Base: command.Base{Command: "plan", Summary: "Plan changes"}},
		&stub{Base: command.Base{Command: "apply", Summary: "Apply changes"}},
	)))
	require.NoError(t, reg.Register(&stub{Base: command.Base{Command: "version", Summary: "Print version"}}))
	require.NoError(t, reg.Activate())
	return reg
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) Model {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Model)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewListsLeafCommands(t *testing.T) {
	m := New(testRegistry(t))
	require.Len(t, m.items, 3)
	assert.Equal(t, "terraform plan", m.items[0].title())
	assert.Equal(t, "terraform apply", m.items[1].title())
	assert.Equal(t, "version", m.items[2].title())
	assert.Contains(t, m.View(), "terraform plan")
}

func TestSelectWithArrows(t *testing.T) {
	m := press(t, New(testRegistry(t)),
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	assert.Equal(t, []string{"terraform", "apply"}, m.Choice())
	assert.Empty(t, m.View())
}

func TestFilter(t *testing.T) {
	m := press(t, New(testRegistry(t)), runes("ver"))
	require.Len(t, m.visible, 1)
	assert.NotContains(t, m.View(), "terraform plan")

	m = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"version"}, m.Choice())
}

func TestFilterNoMatch(t *testing.T) {
	m := press(t, New(testRegistry(t)), runes("zzz"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, m.Choice())
	assert.Contains(t, m.View(), "no matching commands")
}

func TestQuit(t *testing.T) {
	m := New(testRegistry(t))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Nil(t, next.(Model).Choice())
	assert.Empty(t, next.(Model).View())
}
