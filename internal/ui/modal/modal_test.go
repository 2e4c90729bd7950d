package modal

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func typeText(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestSubmit(t *testing.T) {
	m := New(Config{Title: "Go to location", Placeholder: "#features"})
	m = typeText(m, " #kanban/001-auth ")
	require.Equal(t, " #kanban/001-auth ", m.Value())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, SubmitMsg{Value: "#kanban/001-auth"}, cmd())
}

func TestSubmitIgnoresBlank(t *testing.T) {
	m := typeText(New(Config{Title: "Go"}), "   ")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Nil(t, cmd)
}

func TestCancel(t *testing.T) {
	_, cmd := New(Config{Title: "Go"}).Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, CancelMsg{}, cmd())
}

func TestInitialValue(t *testing.T) {
	m := New(Config{Title: "Go", Value: "#untracked"})
	require.Equal(t, "#untracked", m.Value())
}

func TestView(t *testing.T) {
	out := ansi.Strip(New(Config{Title: "Go to location", Message: "Enter a location"}).View())
	require.Contains(t, out, "Go to location")
	require.Contains(t, out, "Enter a location")
	require.Contains(t, out, "esc cancel")
	require.True(t, strings.HasPrefix(out, "╭"))
}

func TestFrameMinimumWidth(t *testing.T) {
	out := Frame("T", "body", 10)
	first := strings.Split(out, "\n")[0]
	require.Equal(t, minWidth+2, ansi.StringWidth(first))
}

func TestOverlayCenters(t *testing.T) {
	bg := strings.TrimSuffix(strings.Repeat(strings.Repeat(".", 100)+"\n", 30), "\n")
	m := New(Config{Title: "Go"}).SetSize(100, 30)
	out := m.Overlay(bg)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 30)
	require.True(t, strings.HasPrefix(lines[0], "....."))
}
