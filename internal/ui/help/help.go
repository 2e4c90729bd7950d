// Package help contains the keybinding overlay.
package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/ui/overlay"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.AccentColor).
			PaddingLeft(2)

	dividerStyle = lipgloss.NewStyle().
			Foreground(styles.BorderFocusColor)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.AccentColor).
			MarginTop(1)

	keyStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(11)

	descStyle = lipgloss.NewStyle().
			Foreground(styles.TextDescriptionColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(styles.BorderFocusColor)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	footerStyle = lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			MarginTop(1)
)

// Footer is the closing hint at the bottom of the box.
const Footer = "Press ? or Esc to close"

// Model holds the help view state.
type Model struct {
	keys   keys.KeyMap
	width  int
	height int
}

// New creates a help view for km. Disabled bindings are left out.
func New(km keys.KeyMap) Model {
	return Model{keys: km}
}

// SetSize updates dimensions.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}

// View renders the help overlay without a background.
func (m Model) View() string {
	return m.Overlay("")
}

// Overlay renders the help box on top of a background view.
func (m Model) Overlay(background string) string {
	box := m.renderContent()
	if background == "" {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, box, background)
}

func (m Model) renderContent() string {
	columnStyle := lipgloss.NewStyle().MarginRight(4)

	navCol := section("Navigation",
		renderKeyDesc("h/l", "left/right"),
		renderKeyDesc("j/k", "up/down"),
		m.renderBinding(m.keys.PageUp),
		m.renderBinding(m.keys.PageDown),
		m.renderBinding(m.keys.Enter),
		m.renderBinding(m.keys.Walkthroughs),
	)
	historyCol := section("History",
		m.renderBinding(m.keys.Back),
		m.renderBinding(m.keys.Forward),
		m.renderBinding(m.keys.GoTo),
	)
	tabsCol := section("Tabs",
		m.renderBinding(m.keys.NextTab),
		m.renderBinding(m.keys.PrevTab),
		m.renderBinding(m.keys.TabFeatures),
		m.renderBinding(m.keys.TabUntracked),
		m.renderBinding(m.keys.TabConstitution),
	)
	generalCol := section("General",
		m.renderBinding(m.keys.Refresh),
		m.renderBinding(m.keys.Copy),
		m.renderBinding(m.keys.Help),
		m.renderBinding(m.keys.LogPane),
		m.renderBinding(m.keys.Escape),
		m.renderBinding(m.keys.Quit),
	)

	columns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(navCol),
		columnStyle.Render(historyCol),
		columnStyle.Render(tabsCol),
		generalCol,
	)

	boxWidth := lipgloss.Width(columns) + 4
	body := contentStyle.Render(columns + "\n" + footerStyle.Render(Footer))
	divider := dividerStyle.Render(strings.Repeat("─", boxWidth))

	var content strings.Builder
	content.WriteString(titleStyle.Render("Keybindings"))
	content.WriteString("\n")
	content.WriteString(divider)
	content.WriteString("\n")
	content.WriteString(body)

	return boxStyle.Width(boxWidth).Render(content.String())
}

func section(title string, rows ...string) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render(title))
	b.WriteString("\n")
	for _, r := range rows {
		b.WriteString(r)
	}
	return b.String()
}

func (m Model) renderBinding(b key.Binding) string {
	if !b.Enabled() {
		return ""
	}
	h := b.Help()
	return renderKeyDesc(h.Key, h.Desc)
}

func renderKeyDesc(k, desc string) string {
	return keyStyle.Render(k) + descStyle.Render(desc) + "\n"
}
