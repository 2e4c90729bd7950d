package untracked

import (
	"errors"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/shared"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

var now = time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

func commits() []api.UntrackedCommit {
	return []api.UntrackedCommit{
		{SHA: "aaaaaaa1111", Message: "fix typo\n\nlong body", Author: "dev", Date: "2026-10-14T10:00:00Z",
			Files: []string{"a.go", "b.go", "c.go", "d.go", "e.go"},
			Stats: api.CommitStats{Insertions: 3, Deletions: 1, FilesChanged: 5}},
		{SHA: "bbbbbbb2222", Message: "bump deps", Author: "bot", Files: []string{"go.mod"}},
	}
}

func newModel() Model {
	return New(keys.DefaultKeyMap(), shared.FixedClock{T: now}).SetSize(100, 40)
}

func render(m Model) string { return ansi.Strip(zone.Scan(m.View())) }

func TestView(t *testing.T) {
	out := render(newModel().SetCommits(commits()))
	require.Contains(t, out, "2 commits")
	require.Contains(t, out, "aaaaaaa fix typo")
	require.NotContains(t, out, "long body")
	require.Contains(t, out, "+3  -1  5 files")
	require.Contains(t, out, "c.go")
	require.NotContains(t, out, "d.go")
	require.Contains(t, out, "+2 more")
}

func TestStates(t *testing.T) {
	m := newModel()
	require.Contains(t, render(m), "Loading...")

	require.Contains(t, render(m.SetError(errors.New("timeout"))), "Failed to load untracked commits: timeout")
	require.Contains(t, render(m.SetCommits(nil)), AllTracked)
}

func TestEnterOpensMigrate(t *testing.T) {
	m := newModel().SetCommits(commits())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	msg, ok := cmd().(OpenMigrateMsg)
	require.True(t, ok)
	require.Equal(t, "bbbbbbb2222", msg.Commit.SHA)
}

func TestRefreshKeepsSelection(t *testing.T) {
	m := newModel().SetCommits(commits())
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})

	cs := commits()
	m = m.SetCommits([]api.UntrackedCommit{{SHA: "ccccccc"}, cs[0], cs[1]})
	c, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "bbbbbbb2222", c.SHA)
}
