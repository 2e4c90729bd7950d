package diff

import (
	"html"
	"strings"
)

// NoDiffHTML is rendered when a commit has no displayable changes.
const NoDiffHTML = `<p class="empty-state">No diff available</p>`

// RenderHTML renders a whole diff as one expandable section per file.
// File names and line text are escaped.
func RenderHTML(text string) string {
	files := ParseByFile(text)
	if strings.TrimSpace(text) == "" || len(files) == 0 {
		return NoDiffHTML
	}

	var b strings.Builder
	for _, f := range files {
		b.WriteString(`<details class="file-diff-section" open>`)
		b.WriteString(`<summary class="file-diff-header"><span class="file-diff-name">`)
		b.WriteString(html.EscapeString(f.FileName))
		b.WriteString(`</span></summary>`)
		b.WriteString(`<pre class="diff-code">`)
		b.WriteString(HighlightHTML(f.Content))
		b.WriteString("</pre></details>\n")
	}
	return b.String()
}
