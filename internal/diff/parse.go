// Package diff splits unified git diffs into per-file segments and classifies
// their lines for display.
package diff

import (
	"regexp"
	"strings"
)

// UnknownFile names a segment whose header carries no recognizable path.
const UnknownFile = "unknown"

const fileMarker = "diff --git "

var fileNameRegex = regexp.MustCompile(`^diff --git a/(.*?) b/`)

// FileDiff is the slice of a diff that belongs to one file. Content starts
// with the file's "diff --git" line and keeps the original line order.
type FileDiff struct {
	FileName string
	Content  string
}

// ParseByFile splits text into one FileDiff per "diff --git " marker, in
// input order. Lines before the first marker are dropped. A trailing newline
// terminates the last line and adds no empty line. Input without any marker
// yields nil.
func ParseByFile(text string) []FileDiff {
	var (
		files []FileDiff
		name  string
		lines []string
		open  bool
	)

	flush := func() {
		if open {
			files = append(files, FileDiff{FileName: name, Content: strings.Join(lines, "\n")})
		}
	}

	for line := range strings.Lines(text) {
		line = strings.TrimSuffix(line, "\n")
		if strings.HasPrefix(line, fileMarker) {
			flush()
			name = fileName(line)
			lines = []string{line}
			open = true
			continue
		}
		if open {
			lines = append(lines, line)
		}
	}
	flush()

	return files
}

// fileName extracts the a/ path of a marker line.
func fileName(marker string) string {
	m := fileNameRegex.FindStringSubmatch(marker)
	if m == nil || m[1] == "" {
		return UnknownFile
	}
	return m[1]
}

// Files returns the file names of the segments, in order.
func Files(diffs []FileDiff) []string {
	names := make([]string, len(diffs))
	for i, d := range diffs {
		names[i] = d.FileName
	}
	return names
}

// Empty reports whether text holds nothing worth displaying. The caller
// shows "No diff available" for it rather than an error.
func Empty(text string) bool {
	return strings.TrimSpace(text) == "" || len(ParseByFile(text)) == 0
}
