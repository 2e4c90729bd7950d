package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/specboard/internal/ui/styles"
	"github.com/zjrosen/specboard/internal/views"
)

var shortHelp = func() help.Model {
	h := help.New()
	h.ShortSeparator = " • "
	return h
}()

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(styles.TruncateString(m.strings.Title, m.width)))
	b.WriteString("\n")
	b.WriteString(m.tabbar.View())
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().
		Width(m.width).
		Height(m.bodyHeight()).
		MaxHeight(m.bodyHeight()).
		Render(m.activeView()))
	if m.showStatusBar {
		b.WriteString("\n")
		b.WriteString(m.statusBar())
	}

	view := b.String()
	switch m.overlay {
	case overlayPrompt:
		view = m.prompt.Overlay(view)
	case overlayTask:
		view = m.task.Overlay(view)
	case overlayMigrate:
		view = m.migrate.Overlay(view)
	case overlayHelp:
		view = m.help.Overlay(view)
	}
	if m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	view = m.toaster.Overlay(view, m.width, m.height)
	return zone.Scan(view)
}

func (m Model) activeView() string {
	switch m.registry.Active() {
	case views.Kanban:
		return m.board.View()
	case views.Artifact:
		return m.artifact.View()
	case views.Untracked:
		return m.untracked.View()
	case views.Constitution:
		return m.constitution.View()
	default:
		return m.features.View()
	}
}

// statusBar shows the spinner while the view loads, the current location
// and the short key help.
func (m Model) statusBar() string {
	left := m.history.Location()
	if m.loading() {
		left = m.spinner.View() + " " + left
	}
	right := shortHelp.ShortHelpView(m.keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return styles.StatusBarStyle.Render(styles.TruncateString(left, m.width-2))
	}
	return styles.StatusBarStyle.Render(left + strings.Repeat(" ", gap) + right)
}
