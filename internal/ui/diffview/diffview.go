// Package diffview renders unified diffs for the terminal: one section per
// file, lines colored by category and changed words highlighted inside
// adjacent removed/added pairs.
package diffview

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/specboard/internal/diff"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// NoDiff is shown for a diff without file sections.
const NoDiff = "No diff available"

const tabWidth = 4

// Sanitize makes raw diff text safe to print: escape sequences are removed,
// tabs expanded and other control characters dropped.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n':
			b.WriteRune(r)
		case r == '\t':
			b.WriteString(strings.Repeat(" ", tabWidth))
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Render renders text at width. Lines longer than width are truncated.
func Render(text string, width int) string {
	files := diff.ParseByFile(Sanitize(text))
	if len(files) == 0 {
		return styles.MutedStyle.Render(NoDiff)
	}
	log.Debug(log.CatDiff, "rendering diff", "files", len(files), "width", width)

	sections := make([]string, 0, len(files))
	for _, f := range files {
		sections = append(sections, renderFile(f, width))
	}
	return strings.Join(sections, "\n\n")
}

func renderFile(f diff.FileDiff, width int) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(styles.DiffFileHeaderColor).Render("▸ " + f.FileName)
	out := []string{title}

	lines := diff.Highlight(f.Content)
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = styles.DiffStyle(l.Category).Render(l.Text)
	}

	pairs := 0
	for i := 0; i+1 < len(lines) && pairs < WordDiffMaxPairs; i++ {
		del, add := lines[i], lines[i+1]
		if del.Category != diff.CategoryRemoved || add.Category != diff.CategoryAdded {
			continue
		}
		if i+2 < len(lines) && lines[i+2].Category == diff.CategoryAdded {
			continue
		}
		if i > 0 && lines[i-1].Category == diff.CategoryRemoved {
			continue
		}
		if len(del.Text) > WordDiffMaxLineLength || len(add.Text) > WordDiffMaxLineLength {
			continue
		}
		oldSegs, newSegs := wordDiff(del.Text[1:], add.Text[1:])
		rendered[i] = renderSegments("-", oldSegs, diff.CategoryRemoved)
		rendered[i+1] = renderSegments("+", newSegs, diff.CategoryAdded)
		pairs++
		i++
	}

	for _, r := range rendered {
		if width > 0 {
			r = ansi.Truncate(r, width, "…")
		}
		out = append(out, r)
	}
	return strings.Join(out, "\n")
}

func renderSegments(marker string, segs []segment, c diff.Category) string {
	base := styles.DiffStyle(c)
	bg := styles.DiffWordRemovedBg
	if c == diff.CategoryAdded {
		bg = styles.DiffWordAddedBg
	}
	var b strings.Builder
	b.WriteString(base.Render(marker))
	for _, s := range segs {
		if s.kind == segmentSame {
			b.WriteString(base.Render(s.text))
			continue
		}
		b.WriteString(base.Background(bg).Bold(true).Render(s.text))
	}
	return b.String()
}

// Plain renders text without color, one line per input line. It backs the
// command line text output.
func Plain(text string) string {
	files := diff.ParseByFile(Sanitize(text))
	if len(files) == 0 {
		return NoDiff
	}
	var b strings.Builder
	for i, f := range files {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== " + f.FileName + " ===\n")
		for _, l := range diff.Highlight(f.Content) {
			b.WriteString(l.Text + "\n")
		}
	}
	return b.String()
}
