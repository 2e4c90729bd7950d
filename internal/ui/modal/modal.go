// Package modal provides the boxed dialog chrome shared by the dashboard's
// modals, and a single-line input prompt built on it.
package modal

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/specboard/internal/ui/overlay"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

const minWidth = 40

// Frame wraps body in a rounded box with a title row and divider.
// width is the inner width; values below the minimum are raised.
func Frame(title, body string, width int) string {
	width = max(width, minWidth, lipgloss.Width(title)+2)

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.TextPrimaryColor).
		PaddingLeft(1)
	divider := lipgloss.NewStyle().
		Foreground(styles.BorderDefaultColor).
		Render(strings.Repeat("─", width))

	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(divider)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Padding(1, 1).Render(body))

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BorderFocusColor).
		Width(width).
		Render(b.String())
}

// Config controls the prompt.
type Config struct {
	Title       string
	Message     string
	Placeholder string
	Value       string
	Width       int
}

// SubmitMsg is sent on enter with a non-empty value.
type SubmitMsg struct {
	Value string
}

// CancelMsg is sent on esc.
type CancelMsg struct{}

// Model is the prompt state.
type Model struct {
	config Config
	input  textinput.Model
	width  int
	height int
}

// New creates a focused prompt.
func New(cfg Config) Model {
	cfg.Width = max(cfg.Width, minWidth)
	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	ti.Prompt = "> "
	ti.Width = cfg.Width - 4
	if cfg.Value != "" {
		ti.SetValue(cfg.Value)
	}
	ti.Focus()
	return Model{config: cfg, input: ti}
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Value returns the current input.
func (m Model) Value() string { return m.input.Value() }

// Update handles keys for the prompt.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			v := strings.TrimSpace(m.input.Value())
			if v == "" {
				return m, nil
			}
			return m, func() tea.Msg { return SubmitMsg{Value: v} }
		case "esc":
			return m, func() tea.Msg { return CancelMsg{} }
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the prompt box.
func (m Model) View() string {
	var body strings.Builder
	if m.config.Message != "" {
		body.WriteString(lipgloss.NewStyle().
			Foreground(styles.TextSecondaryColor).
			Width(m.config.Width - 2).
			Render(m.config.Message))
		body.WriteString("\n\n")
	}
	body.WriteString(m.input.View())
	body.WriteString("\n\n")
	body.WriteString(styles.HintStyle.Render("enter go • esc cancel"))
	return Frame(m.config.Title, body.String(), m.config.Width)
}

// Overlay renders the prompt centered on bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// SetSize records the screen size used for centering.
func (m Model) SetSize(width, height int) Model {
	m.width = width
	m.height = height
	return m
}
