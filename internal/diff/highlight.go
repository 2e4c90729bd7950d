package diff

import (
	"html"
	"strings"
)

// Category classifies one line of a diff segment.
type Category int

const (
	CategoryContext Category = iota
	CategoryAdded
	CategoryRemoved
	CategoryHunkHeader
	CategoryFileHeader
	CategoryFilePath
)

func (c Category) String() string {
	switch c {
	case CategoryAdded:
		return "added"
	case CategoryRemoved:
		return "removed"
	case CategoryHunkHeader:
		return "hunkHeader"
	case CategoryFileHeader:
		return "fileHeader"
	case CategoryFilePath:
		return "filePath"
	default:
		return "context"
	}
}

// Class is the CSS class used by the HTML renderer.
func (c Category) Class() string {
	switch c {
	case CategoryAdded:
		return "diff-add"
	case CategoryRemoved:
		return "diff-del"
	case CategoryHunkHeader:
		return "diff-hunk"
	case CategoryFileHeader:
		return "diff-file"
	case CategoryFilePath:
		return "diff-file-path"
	default:
		return "diff-normal"
	}
}

// Line is a classified diff line. Text is the raw, unescaped line.
type Line struct {
	Text     string
	Category Category
}

// Classify returns the category of a single line. The "+++" and "---" path
// headers are tested before the single-character prefixes.
func Classify(line string) Category {
	switch {
	case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		return CategoryFilePath
	case strings.HasPrefix(line, "+"):
		return CategoryAdded
	case strings.HasPrefix(line, "-"):
		return CategoryRemoved
	case strings.HasPrefix(line, "@@"):
		return CategoryHunkHeader
	case strings.HasPrefix(line, "diff --git"), strings.HasPrefix(line, "index "):
		return CategoryFileHeader
	default:
		return CategoryContext
	}
}

// Highlight classifies every line of content. It returns exactly one Line
// per "\n"-separated input line, blank lines included.
func Highlight(content string) []Line {
	raw := strings.Split(content, "\n")
	out := make([]Line, len(raw))
	for i, l := range raw {
		out[i] = Line{Text: l, Category: Classify(l)}
	}
	return out
}

// HighlightHTML escapes each line and wraps it in a span carrying its
// category class. Lines are joined with "\n".
func HighlightHTML(content string) string {
	lines := Highlight(content)
	spans := make([]string, len(lines))
	for i, l := range lines {
		spans[i] = `<span class="` + l.Category.Class() + `">` + html.EscapeString(l.Text) + `</span>`
	}
	return strings.Join(spans, "\n")
}
