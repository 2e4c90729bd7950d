package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestPanel_FixedSize(t *testing.T) {
	out := Panel("one\ntwo\nthree\nfour", "Docs", 20, 4, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	for _, l := range lines {
		require.Equal(t, 20, ansi.StringWidth(l))
	}
	require.Contains(t, ansi.Strip(lines[0]), "╭─ Docs ")
	require.Contains(t, ansi.Strip(lines[2]), "two")
}

func TestPanel_FitsContent(t *testing.T) {
	out := Panel("a\nb\nc", "", 10, 0, true)
	require.Len(t, strings.Split(out, "\n"), 5)
}

func TestPanel_LongTitleTruncated(t *testing.T) {
	out := Panel("", "a very long panel title", 12, 3, false)
	top := ansi.Strip(strings.Split(out, "\n")[0])
	require.Equal(t, 12, ansi.StringWidth(top))
	require.Contains(t, top, "...")
}
