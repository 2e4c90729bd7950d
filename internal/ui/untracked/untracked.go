// Package untracked lists commits that carry no work package id.
package untracked

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// AllTracked is shown when every commit has a work package id.
const AllTracked = "✅ All commits are tracked with Work Package IDs!"

const maxFiles = 3

// OpenMigrateMsg asks for the migrate modal of a commit.
type OpenMigrateMsg struct {
	Commit api.UntrackedCommit
}

// Model is the untracked commit list.
type Model struct {
	keys    keys.KeyMap
	clock   shared.Clock
	commits []api.UntrackedCommit
	cursor  int
	loaded  bool
	err     error
	width   int
	height  int
}

// New returns an empty list.
func New(km keys.KeyMap, clock shared.Clock) Model {
	if clock == nil {
		clock = shared.RealClock{}
	}
	return Model{keys: km, clock: clock}
}

// SetSize updates the render area.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m
}

// SetCommits replaces the list, keeping the cursor on the same commit.
func (m Model) SetCommits(cs []api.UntrackedCommit) Model {
	var sel string
	if c, ok := m.Selected(); ok {
		sel = c.SHA
	}
	m.commits = cs
	m.loaded, m.err = true, nil
	m.cursor = 0
	for i, c := range cs {
		if c.SHA == sel {
			m.cursor = i
			break
		}
	}
	return m
}

// SetError records a failed fetch.
func (m Model) SetError(err error) Model {
	m.err = err
	return m
}

// Loaded reports whether a list has been received.
func (m Model) Loaded() bool { return m.loaded }

// Loading reports whether the first fetch is still outstanding.
func (m Model) Loading() bool { return !m.loaded && m.err == nil }

// Commits returns the list.
func (m Model) Commits() []api.UntrackedCommit { return m.commits }

// Selected returns the commit under the cursor.
func (m Model) Selected() (api.UntrackedCommit, bool) {
	if m.cursor < 0 || m.cursor >= len(m.commits) {
		return api.UntrackedCommit{}, false
	}
	return m.commits[m.cursor], true
}

// Update handles navigation and opening of the migrate modal.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.commits)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Enter):
			if c, ok := m.Selected(); ok {
				return m, openMigrate(c)
			}
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i, c := range m.commits {
			if z := zone.Get(commitZone(c.SHA)); z != nil && z.InBounds(msg) {
				m.cursor = i
				return m, openMigrate(c)
			}
		}
	}
	return m, nil
}

func openMigrate(c api.UntrackedCommit) tea.Cmd {
	return func() tea.Msg { return OpenMigrateMsg{Commit: c} }
}

func commitZone(sha string) string { return "untracked:" + sha }

// View renders the list.
func (m Model) View() string {
	var b strings.Builder
	header := styles.TitleStyle.Render("Untracked Commits")
	if m.loaded {
		header += "  " + styles.MutedStyle.Render(styles.Plural(len(m.commits), "commit"))
	}
	b.WriteString(header + "\n")
	b.WriteString(styles.HintStyle.Render("Commits without a work package id. Press enter to migrate one.") + "\n\n")

	switch {
	case m.err != nil && !m.loaded:
		b.WriteString(styles.ErrorStyle.Render("Failed to load untracked commits: " + m.err.Error()))
		return b.String()
	case !m.loaded:
		b.WriteString(styles.EmptyStyle.Render("Loading..."))
		return b.String()
	case len(m.commits) == 0:
		b.WriteString(lipgloss.NewStyle().Foreground(styles.StatusSuccessColor).Padding(1, 2).Render(AllTracked))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(styles.ErrorStyle.UnsetPadding().Render("Refresh failed: "+m.err.Error()) + "\n")
	}

	now := m.clock.Now()
	cards := make([]string, 0, len(m.commits))
	for i, c := range m.commits {
		cards = append(cards, m.renderCard(c, i == m.cursor, now))
	}
	b.WriteString(strings.Join(m.window(cards), "\n"))
	return b.String()
}

func (m Model) window(cards []string) []string {
	if m.height <= 0 {
		return cards
	}
	budget := m.height - 3
	start := 0
	for start < m.cursor {
		used := 0
		for i := start; i <= m.cursor; i++ {
			used += lipgloss.Height(cards[i]) + 1
		}
		if used <= budget {
			break
		}
		start++
	}
	return cards[start:]
}

func (m Model) renderCard(c api.UntrackedCommit, selected bool, now time.Time) string {
	width := max(m.width-2, 30)
	inner := width - 4

	sha := lipgloss.NewStyle().Foreground(styles.AccentColor).Bold(true).Render(c.ShortSHA())
	subject, _, _ := strings.Cut(c.Message, "\n")
	lines := []string{sha + " " + styles.TitleStyle.Render(styles.TruncateString(subject, inner-8))}

	meta := c.Author
	if ts, ok := c.Time(); ok {
		meta += " • " + shared.FormatRelativeTimeFrom(ts, now)
	}
	lines = append(lines, styles.MutedStyle.Render(meta))

	stats := fmt.Sprintf("%s  %s  %s",
		lipgloss.NewStyle().Foreground(styles.DiffAddedColor).Render(fmt.Sprintf("+%d", c.Stats.Insertions)),
		lipgloss.NewStyle().Foreground(styles.DiffRemovedColor).Render(fmt.Sprintf("-%d", c.Stats.Deletions)),
		styles.MutedStyle.Render(styles.Plural(c.Stats.FilesChanged, "file")))
	lines = append(lines, stats)

	shown := c.Files
	if len(shown) > maxFiles {
		shown = shown[:maxFiles]
	}
	for _, f := range shown {
		lines = append(lines, "  "+wordwrap.String(f, inner-2))
	}
	if extra := len(c.Files) - len(shown); extra > 0 {
		lines = append(lines, styles.HintStyle.Render(fmt.Sprintf("  +%d more", extra)))
	}

	border := styles.BorderDefaultColor
	if selected {
		border = styles.BorderFocusColor
	}
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(width - 2).
		Render(strings.Join(lines, "\n"))
	return zone.Mark(commitZone(c.SHA), card)
}
