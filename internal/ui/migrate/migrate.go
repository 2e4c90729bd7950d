// Package migrate is the modal for an untracked commit: its details, its
// diff and the command that links it to a work package.
package migrate

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/diffview"
	"github.com/zjrosen/specboard/internal/ui/modal"
	"github.com/zjrosen/specboard/internal/ui/overlay"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// LoadDiffMsg asks for the diff of SHA.
type LoadDiffMsg struct {
	SHA string
}

// CopyMsg asks for Text to be copied to the clipboard.
type CopyMsg struct {
	Text string
}

// CloseMsg is sent when the modal closes itself.
type CloseMsg struct{}

type diffState int

const (
	diffIdle diffState = iota
	diffLoading
	diffReady
	diffFailed
)

// Model is the modal state.
type Model struct {
	keys    keys.KeyMap
	commit  api.UntrackedCommit
	state   diffState
	diff    string
	diffErr error
	view    viewport.Model
	width   int
	height  int
}

// New opens the modal on c. Init requests the diff.
func New(km keys.KeyMap, c api.UntrackedCommit) Model {
	return Model{keys: km, commit: c, view: viewport.New(0, 0)}
}

// Init requests the diff once.
func (m Model) Init() tea.Cmd {
	sha := m.commit.SHA
	return func() tea.Msg { return LoadDiffMsg{SHA: sha} }
}

// Commit returns the commit shown.
func (m Model) Commit() api.UntrackedCommit { return m.commit }

// SetDiffLoading marks the diff fetch in flight.
func (m Model) SetDiffLoading() Model {
	m.state = diffLoading
	return m.refresh()
}

// SetDiff shows a fetched diff. Diffs of another commit are ignored.
func (m Model) SetDiff(sha, text string) Model {
	if sha != m.commit.SHA {
		return m
	}
	m.state, m.diff, m.diffErr = diffReady, text, nil
	return m.refresh()
}

// SetDiffError records a failed diff fetch.
func (m Model) SetDiffError(sha string, err error) Model {
	if sha != m.commit.SHA {
		return m
	}
	m.state, m.diffErr = diffFailed, err
	return m.refresh()
}

// DiffLoaded reports whether the diff arrived.
func (m Model) DiffLoaded() bool { return m.state == diffReady }

// SetSize records the screen size.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m.refresh()
}

func (m Model) boxWidth() int {
	return max(min(m.width-8, 120), 40)
}

func (m Model) refresh() Model {
	w := m.boxWidth() - 4
	h := max(m.height-22, 5)
	m.view.Width, m.view.Height = w, h

	var content string
	switch m.state {
	case diffReady:
		content = diffview.Render(m.diff, w)
	case diffFailed:
		content = styles.ErrorStyle.UnsetPadding().Render("Failed to load diff: " + m.diffErr.Error())
	default:
		content = styles.MutedStyle.Render("Loading diff...")
	}
	m.view.SetContent(content)
	return m
}

// Update handles keys while the modal is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.Escape), key.Matches(km, m.keys.Back):
		return m, func() tea.Msg { return CloseMsg{} }
	case key.Matches(km, m.keys.Copy):
		text := m.commit.MigrateCommand()
		return m, func() tea.Msg { return CopyMsg{Text: text} }
	case key.Matches(km, m.keys.Down):
		m.view.ScrollDown(1)
	case key.Matches(km, m.keys.Up):
		m.view.ScrollUp(1)
	case key.Matches(km, m.keys.PageDown):
		m.view.HalfPageDown()
	case key.Matches(km, m.keys.PageUp):
		m.view.HalfPageUp()
	}
	return m, nil
}

// View renders the box.
func (m Model) View() string {
	c := m.commit
	label := lipgloss.NewStyle().Foreground(styles.TextSecondaryColor).Bold(true)

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Render("Commit:"), c.SHA)
	fmt.Fprintf(&b, "%s %s\n", label.Render("Author:"), c.Author)
	ts, ok := c.Time()
	fmt.Fprintf(&b, "%s %s\n", label.Render("Date:"), shared.FormatDate(ts, ok, c.Date))
	fmt.Fprintf(&b, "%s %s\n\n", label.Render("Stats:"),
		fmt.Sprintf("+%d -%d, %s", c.Stats.Insertions, c.Stats.Deletions, styles.Plural(c.Stats.FilesChanged, "file")))
	b.WriteString(styles.TruncateString(strings.TrimSpace(c.Message), m.boxWidth()*3) + "\n\n")

	b.WriteString(label.Render("Link this commit to a work package:") + "\n")
	b.WriteString(lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(styles.BorderDefaultColor).
		Padding(0, 1).
		Render(c.MigrateCommand()) + "\n\n")

	b.WriteString(label.Render("Diff") + "\n")
	b.WriteString(m.view.View() + "\n\n")
	b.WriteString(styles.HintStyle.Render("y copy command • j/k scroll • esc close"))

	return modal.Frame("Migrate commit "+c.ShortSHA(), b.String(), m.boxWidth())
}

// Overlay draws the modal centered over bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.View(), bg)
}
