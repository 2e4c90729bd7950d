package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

const (
	cornerTopLeft     = "╭"
	cornerTopRight    = "╮"
	cornerBottomLeft  = "╰"
	cornerBottomRight = "╯"
	lineHorizontal    = "─"
	lineVertical      = "│"
)

// Panel draws content inside a rounded box with title set into the top
// edge: ╭─ Title ─────╮. Content is clipped to the inner area; height < 3
// sizes the box to its content.
func Panel(content, title string, width, height int, focused bool) string {
	var border lipgloss.TerminalColor = BorderDefaultColor
	if focused {
		border = BorderFocusColor
	}
	edge := lipgloss.NewStyle().Foreground(border)
	inner := max(width-2, 1)

	lines := strings.Split(content, "\n")
	if height >= 3 {
		rows := height - 2
		if len(lines) > rows {
			lines = lines[:rows]
		}
		for len(lines) < rows {
			lines = append(lines, "")
		}
	}

	var b strings.Builder
	b.WriteString(topEdge(title, inner, edge))
	for _, line := range lines {
		line = ansi.Truncate(line, inner, "")
		if w := ansi.StringWidth(line); w < inner {
			line += strings.Repeat(" ", inner-w)
		}
		b.WriteString("\n" + edge.Render(lineVertical) + line + edge.Render(lineVertical))
	}
	b.WriteString("\n" + edge.Render(cornerBottomLeft+strings.Repeat(lineHorizontal, inner)+cornerBottomRight))
	return b.String()
}

func topEdge(title string, inner int, edge lipgloss.Style) string {
	if title == "" || inner < 5 {
		return edge.Render(cornerTopLeft + strings.Repeat(lineHorizontal, inner) + cornerTopRight)
	}
	title = TruncateString(title, inner-4)
	rest := max(inner-3-ansi.StringWidth(title), 0)
	return edge.Render(cornerTopLeft+lineHorizontal+" ") +
		TitleStyle.Render(title) +
		edge.Render(" "+strings.Repeat(lineHorizontal, rest)+cornerTopRight)
}
