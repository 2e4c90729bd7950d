// Package docview is a scrollable pane showing one rendered Markdown
// document, or its loading, empty or error state.
package docview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/ui/markdown"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

type status int

const (
	statusIdle status = iota
	statusLoading
	statusReady
	statusEmpty
	statusError
)

// Model is the document pane.
type Model struct {
	viewport viewport.Model
	renderer *markdown.Renderer
	style    string

	title   string
	source  string
	message string
	content string
	status  status

	width  int
	height int
}

// New returns an idle pane. style is the markdown style name.
func New(style string) Model {
	return Model{viewport: viewport.New(0, 0), style: style}
}

// Title returns the pane title.
func (m Model) Title() string { return m.title }

// Source returns the Markdown of the loaded document.
func (m Model) Source() string { return m.source }

// Loading reports whether a fetch is in flight.
func (m Model) Loading() bool { return m.status == statusLoading }

// Ready reports whether a document is shown.
func (m Model) Ready() bool { return m.status == statusReady }

// Message returns the text of an empty or error state.
func (m Model) Message() string { return m.message }

// SetSize resizes the pane and re-renders the document for the new width.
func (m Model) SetSize(width, height int) Model {
	widthChanged := width != m.width
	m.width, m.height = width, height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
	if widthChanged {
		m.renderer = nil
		m = m.refresh(false)
	}
	return m
}

// SetLoading shows the loading state under title.
func (m Model) SetLoading(title string) Model {
	m.title = title
	m.status = statusLoading
	m.source, m.message = "", ""
	return m.refresh(true)
}

// SetDocument shows source rendered as Markdown. A refresh of the same
// document keeps the scroll position.
func (m Model) SetDocument(title, source string) Model {
	same := m.status == statusReady && m.title == title
	m.title = title
	m.source = source
	m.message = ""
	m.status = statusReady
	return m.refresh(!same)
}

// SetEmpty shows message as an empty state.
func (m Model) SetEmpty(title, message string) Model {
	m.title = title
	m.status = statusEmpty
	m.source, m.message = "", message
	return m.refresh(true)
}

// SetError shows message as an error state.
func (m Model) SetError(title, message string) Model {
	m.title = title
	m.status = statusError
	m.source, m.message = "", message
	return m.refresh(true)
}

func (m Model) refresh(top bool) Model {
	var content string
	switch m.status {
	case statusLoading:
		content = styles.EmptyStyle.Render("Loading...")
	case statusEmpty:
		content = styles.EmptyStyle.Render(m.message)
	case statusError:
		content = styles.ErrorStyle.Render(m.message)
	case statusReady:
		content = m.render(m.source)
	}
	m.content = content
	m.viewport.SetContent(content)
	if top {
		m.viewport.GotoTop()
	}
	return m
}

func (m *Model) render(source string) string {
	if m.width <= 0 {
		return source
	}
	if m.renderer == nil {
		r, err := markdown.New(max(m.width-2, 20), m.style)
		if err != nil {
			log.ErrorErr(log.CatUI, "markdown renderer unavailable", err)
			return source
		}
		m.renderer = r
	}
	return m.renderer.RenderOrRaw(source)
}

// Update scrolls the document.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the title line and the viewport. Before the first SetSize
// the content is written out unscrolled.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.title))
	if m.width <= 0 {
		b.WriteString("\n\n")
		b.WriteString(m.content)
		return b.String()
	}
	if m.status == statusReady && m.viewport.TotalLineCount() > m.viewport.Height {
		b.WriteString("  " + styles.MutedStyle.Render(fmt.Sprintf("%3.f%%", m.viewport.ScrollPercent()*100)))
	}
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	return b.String()
}
