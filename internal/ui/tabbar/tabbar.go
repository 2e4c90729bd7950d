// Package tabbar renders the top-level tabs and turns clicks on them into
// tab selections.
package tabbar

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/nav"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// SelectMsg reports a click on a tab.
type SelectMsg struct {
	Tab nav.Tab
}

// Model is the tab bar.
type Model struct {
	strings   api.Strings
	active    nav.Tab
	untracked int
	width     int
}

// New returns a bar with the features tab active.
func New() Model {
	return Model{strings: api.DefaultStrings()}
}

// SetStrings sets the tab titles.
func (m Model) SetStrings(s api.Strings) Model {
	m.strings = s
	return m
}

// SetActive highlights a tab.
func (m Model) SetActive(t nav.Tab) Model {
	m.active = t
	return m
}

// Active returns the highlighted tab.
func (m Model) Active() nav.Tab { return m.active }

// SetUntrackedCount sets the badge shown on the untracked tab.
func (m Model) SetUntrackedCount(n int) Model {
	m.untracked = n
	return m
}

// UntrackedCount returns the badge value.
func (m Model) UntrackedCount() int { return m.untracked }

// SetWidth sets the available width.
func (m Model) SetWidth(w int) Model {
	m.width = w
	return m
}

// Label returns the title of a tab.
func (m Model) Label(t nav.Tab) string {
	switch t {
	case nav.TabUntracked:
		return "Untracked Commits"
	case nav.TabConstitution:
		return m.strings.Constitution
	default:
		return m.strings.Features
	}
}

// Next returns the tab after t, wrapping around.
func Next(t nav.Tab) nav.Tab {
	tabs := nav.Tabs()
	return tabs[(int(t)+1)%len(tabs)]
}

// Prev returns the tab before t, wrapping around.
func Prev(t nav.Tab) nav.Tab {
	tabs := nav.Tabs()
	return tabs[(int(t)+len(tabs)-1)%len(tabs)]
}

// Update turns a left click on a tab into a SelectMsg.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	mm, ok := msg.(tea.MouseMsg)
	if !ok || mm.Action != tea.MouseActionRelease || mm.Button != tea.MouseButtonLeft {
		return m, nil
	}
	for _, t := range nav.Tabs() {
		if z := zone.Get(tabZone(t)); z != nil && z.InBounds(mm) {
			return m, func() tea.Msg { return SelectMsg{Tab: t} }
		}
	}
	return m, nil
}

func tabZone(t nav.Tab) string { return "tab:" + t.String() }

// View renders the bar with an underline rule.
func (m Model) View() string {
	tabs := nav.Tabs()
	labels := make([]string, len(tabs))
	for i, t := range tabs {
		labels[i] = m.Label(t)
	}
	labels = m.fit(labels)

	parts := make([]string, 0, len(tabs)+1)
	for i, t := range tabs {
		st := styles.TabStyle
		if t == m.active {
			st = styles.ActiveTabStyle
		}
		tab := st.Render(labels[i])
		if t == nav.TabUntracked && m.untracked > 0 {
			tab = lipgloss.JoinHorizontal(lipgloss.Center, tab, styles.CountBadgeStyle.Render(fmt.Sprint(m.untracked)))
		}
		parts = append(parts, zone.Mark(tabZone(t), tab))
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	if m.width <= 0 {
		return row
	}
	rule := lipgloss.NewStyle().Foreground(styles.BorderDefaultColor).Render(strings.Repeat("─", m.width))
	return row + "\n" + rule
}

// fit shortens labels evenly until the bar fits the width. Each tab has
// four cells of padding and the badge needs room too.
func (m Model) fit(labels []string) []string {
	if m.width <= 0 {
		return labels
	}
	overhead := 4 * len(labels)
	if m.untracked > 0 {
		overhead += runewidth.StringWidth(fmt.Sprint(m.untracked)) + 2
	}
	total := overhead
	for _, l := range labels {
		total += runewidth.StringWidth(l)
	}
	if total <= m.width {
		return labels
	}
	per := max((m.width-overhead)/len(labels), 4)
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = styles.TruncateString(l, per)
	}
	return out
}
