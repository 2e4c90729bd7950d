// Package features renders the feature list: one card per feature with its
// mode, task or phase statistics and artifact badges.
package features

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
	"github.com/zjrosen/specboard/internal/nav"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// OpenMsg asks the dashboard to navigate to State.
type OpenMsg struct {
	State nav.ViewState
}

// Badge is an openable target on a feature card.
type Badge struct {
	Label string
	State nav.ViewState
}

// Badges lists the targets of a card: the kanban board, then each existing
// document, then each phase walkthrough.
func Badges(f api.Feature) []Badge {
	badges := []Badge{{Label: "kanban", State: nav.Kanban(f.ID)}}
	for _, doc := range f.Artifacts.Documents() {
		badges = append(badges, Badge{Label: strings.TrimSuffix(doc, ".md"), State: nav.Artifact(f.ID, doc)})
	}
	for _, file := range f.WalkthroughFiles {
		badges = append(badges, Badge{Label: strings.TrimSuffix(file, ".md"), State: nav.Artifact(f.ID, file)})
	}
	return badges
}

// Model is the feature list.
type Model struct {
	keys     keys.KeyMap
	strings  api.Strings
	features []api.Feature
	cursor   int
	badge    int
	loaded   bool
	loading  bool
	err      error
	updated  time.Time
	width    int
	height   int
}

// New returns an empty list.
func New(km keys.KeyMap) Model {
	return Model{keys: km, strings: api.DefaultStrings(), loading: true}
}

// SetSize updates the render area.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m
}

// SetStrings sets the UI string bundle.
func (m Model) SetStrings(s api.Strings) Model {
	m.strings = s
	return m
}

// SetLoading marks a fetch in flight. Loaded data stays on screen.
func (m Model) SetLoading() Model {
	m.loading = true
	return m
}

// SetFeatures replaces the list, keeping the cursor on the same feature
// when it still exists.
func (m Model) SetFeatures(fs []api.Feature, at time.Time) Model {
	var selected string
	if f, ok := m.Selected(); ok {
		selected = f.ID
	}
	m.features = api.SortFeatures(fs)
	m.loaded, m.loading, m.err = true, false, nil
	m.updated = at
	m.cursor = 0
	for i, f := range m.features {
		if f.ID == selected {
			m.cursor = i
			break
		}
	}
	m.badge = min(m.badge, len(m.badges())-1)
	m.badge = max(m.badge, 0)
	return m
}

// SetError records a failed fetch.
func (m Model) SetError(err error) Model {
	m.err = err
	m.loading = false
	return m
}

// Features returns the sorted list.
func (m Model) Features() []api.Feature { return m.features }

// Loaded reports whether a list has been received.
func (m Model) Loaded() bool { return m.loaded }

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// Updated returns the time of the last successful load.
func (m Model) Updated() time.Time { return m.updated }

// Selected returns the feature under the cursor.
func (m Model) Selected() (api.Feature, bool) {
	if m.cursor < 0 || m.cursor >= len(m.features) {
		return api.Feature{}, false
	}
	return m.features[m.cursor], true
}

// SelectedBadge returns the focused badge of the selected feature.
func (m Model) SelectedBadge() (Badge, bool) {
	b := m.badges()
	if m.badge < 0 || m.badge >= len(b) {
		return Badge{}, false
	}
	return b[m.badge], true
}

func (m Model) badges() []Badge {
	f, ok := m.Selected()
	if !ok {
		return nil
	}
	return Badges(f)
}

// Stats returns the header line "N features • M tasks".
func (m Model) Stats() string {
	tasks := 0
	for _, f := range m.features {
		tasks += f.TotalTasks
	}
	return styles.Plural(len(m.features), "feature") + " • " + styles.Plural(tasks, "task")
}

// Update handles navigation keys and mouse clicks. Opening a card or badge
// yields an OpenMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
				m.badge = 0
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.features)-1 {
				m.cursor++
				m.badge = 0
			}
		case key.Matches(msg, m.keys.Left):
			if m.badge > 0 {
				m.badge--
			}
		case key.Matches(msg, m.keys.Right):
			if m.badge < len(m.badges())-1 {
				m.badge++
			}
		case key.Matches(msg, m.keys.Enter):
			if b, ok := m.SelectedBadge(); ok {
				return m, open(b.State)
			}
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		for i, f := range m.features {
			for j, b := range Badges(f) {
				if z := zone.Get(badgeZone(f.ID, j)); z != nil && z.InBounds(msg) {
					m.cursor, m.badge = i, j
					return m, open(b.State)
				}
			}
			if z := zone.Get(cardZone(f.ID)); z != nil && z.InBounds(msg) {
				m.cursor, m.badge = i, 0
				return m, open(nav.Kanban(f.ID))
			}
		}
	}
	return m, nil
}

func open(s nav.ViewState) tea.Cmd {
	return func() tea.Msg { return OpenMsg{State: s} }
}

func cardZone(id string) string { return "feature:" + id }
func badgeZone(id string, i int) string { return fmt.Sprintf("feature:%s:badge:%d", id, i) }

// View renders the list.
func (m Model) View() string {
	var b strings.Builder
	header := styles.TitleStyle.Render(m.strings.Features)
	if m.loaded {
		header += "  " + styles.MutedStyle.Render(m.Stats())
		if !m.updated.IsZero() {
			header += "  " + styles.MutedStyle.Render(shared.UpdatedLabel(m.updated))
		}
	}
	b.WriteString(header + "\n\n")

	switch {
	case m.err != nil && !m.loaded:
		b.WriteString(styles.ErrorStyle.Render("Failed to load features: " + m.err.Error()))
		return b.String()
	case !m.loaded:
		b.WriteString(styles.EmptyStyle.Render("Loading..."))
		return b.String()
	case len(m.features) == 0:
		b.WriteString(styles.EmptyStyle.Render(m.strings.NoFeatures))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(styles.ErrorStyle.UnsetPadding().Render("Refresh failed: "+m.err.Error()) + "\n")
	}

	cards := make([]string, 0, len(m.features))
	for i, f := range m.features {
		cards = append(cards, m.renderCard(f, i == m.cursor))
	}
	b.WriteString(strings.Join(m.window(cards), "\n"))
	return b.String()
}

// window keeps the selected card on screen.
func (m Model) window(cards []string) []string {
	if m.height <= 0 {
		return cards
	}
	budget := m.height - 2
	start := 0
	for {
		used := 0
		for i := start; i <= m.cursor && i < len(cards); i++ {
			used += lipgloss.Height(cards[i]) + 1
		}
		if used <= budget || start >= m.cursor {
			break
		}
		start++
	}
	var out []string
	used := 0
	for i := start; i < len(cards); i++ {
		h := lipgloss.Height(cards[i]) + 1
		if used+h > budget && i > m.cursor {
			break
		}
		out = append(out, cards[i])
		used += h
	}
	return out
}

func (m Model) renderCard(f api.Feature, selected bool) string {
	width := max(m.width-2, 20)
	inner := width - 4

	var lines []string

	title := styles.TitleStyle.Render(f.Name)
	if f.Name == "" {
		title = styles.TitleStyle.Render(f.ID)
	}
	var tags []string
	switch f.Mode {
	case "normal":
		tags = append(tags, styles.BadgeStyle.Render("Normal Mode"))
	case "pro":
		tags = append(tags, styles.BadgeStyle.Render("Pro Mode"))
	}
	if f.Worktree != "" {
		tags = append(tags, styles.BadgeStyle.Render("Worktree: "+f.Worktree))
	}
	if f.FixesCount > 0 {
		tags = append(tags, styles.BadgeStyle.Render(styles.Plural(f.FixesCount, "fix")))
	}
	lines = append(lines, strings.TrimSpace(title+" "+strings.Join(tags, " ")))
	lines = append(lines, styles.MutedStyle.Render(f.ID))

	if stats := cardStats(f); stats != "" {
		lines = append(lines, wordwrap.String(stats, inner))
	}

	var row []string
	for i, badge := range Badges(f) {
		st := styles.BadgeStyle
		if selected && i == m.badge {
			st = styles.ActiveBadgeStyle
		}
		row = append(row, zone.Mark(badgeZone(f.ID, i), st.Render(badge.Label)))
	}
	lines = append(lines, wrapBadges(row, inner)...)

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
	return zone.Mark(cardZone(f.ID), card)
}

// cardStats is the phase progress for phase-mode features and the lane
// counts otherwise.
func cardStats(f api.Feature) string {
	var stats []string
	if f.IsPhaseMode && len(f.Phases) > 0 {
		done, total, current := f.PhaseProgress()
		stats = append(stats, fmt.Sprintf("📊 %d/%d phases", done, total))
		if current != nil {
			stats = append(stats, "⏳ "+current.Title)
		}
		return strings.Join(stats, "  ")
	}
	s := f.KanbanStats
	if s.Planned > 0 {
		stats = append(stats, fmt.Sprintf("📋 %d planned", s.Planned))
	}
	if s.Doing > 0 {
		stats = append(stats, fmt.Sprintf("🔨 %d doing", s.Doing))
	}
	if s.ForReview > 0 {
		stats = append(stats, fmt.Sprintf("👀 %d review", s.ForReview))
	}
	if s.Done > 0 {
		stats = append(stats, fmt.Sprintf("✅ %d done", s.Done))
	}
	return strings.Join(stats, "  ")
}

func wrapBadges(badges []string, width int) []string {
	var lines []string
	var cur string
	for _, b := range badges {
		switch {
		case cur == "":
			cur = b
		case lipgloss.Width(cur)+1+lipgloss.Width(b) > width:
			lines = append(lines, cur)
			cur = b
		default:
			cur += " " + b
		}
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
