package diffview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

const sample = "diff --git a/x.py b/x.py\nindex 1..2\n--- a/x.py\n+++ b/x.py\n@@ -1 +1 @@\n-a = compute(1)\n+a = compute(2)\n"

func TestSanitize(t *testing.T) {
	assert.Equal(t, "+red text", Sanitize("+\x1b[31mred text\x1b[0m"))
	assert.Equal(t, "+    tab", Sanitize("+\ttab"))
	assert.Equal(t, "bell", Sanitize("be\all"))
	assert.Equal(t, "a\nb", Sanitize("a\r\nb"))
}

func TestRender_NoDiff(t *testing.T) {
	assert.Equal(t, NoDiff, ansi.Strip(Render("", 80)))
	assert.Equal(t, NoDiff, ansi.Strip(Render("commit abc\n", 80)))
}

func TestRender(t *testing.T) {
	out := ansi.Strip(Render(sample, 80))
	lines := strings.Split(out, "\n")
	require.Equal(t, "▸ x.py", lines[0])
	require.Equal(t, "diff --git a/x.py b/x.py", lines[1])
	require.Equal(t, "-a = compute(1)", lines[6])
	require.Equal(t, "+a = compute(2)", lines[7])
}

func TestRender_Truncates(t *testing.T) {
	out := Render("diff --git a/a b/a\n+"+strings.Repeat("x", 50), 10)
	for _, l := range strings.Split(out, "\n") {
		assert.LessOrEqual(t, ansi.StringWidth(l), 10)
	}
}

func TestPlain(t *testing.T) {
	out := Plain(sample + "diff --git a/y b/y\n+z\n")
	assert.True(t, strings.HasPrefix(out, "=== x.py ===\n"))
	assert.Contains(t, out, "+a = compute(2)\n\n=== y ===\ndiff --git a/y b/y\n+z\n")
	assert.Equal(t, NoDiff, Plain(""))
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"foo", ".", "bar", "(", "x", ")"}, tokenize("foo.bar(x)"))
	assert.Equal(t, []string{"a", " ", "b"}, tokenize("a b"))
	assert.Nil(t, tokenize(""))
}

func TestWordDiff(t *testing.T) {
	oldSegs, newSegs := wordDiff("a = compute(1)", "a = compute(2)")
	assert.Equal(t, "a = compute(1)", joinSegments(oldSegs))
	assert.Equal(t, "a = compute(2)", joinSegments(newSegs))

	var changed []string
	for _, s := range newSegs {
		if s.kind == segmentAdded {
			changed = append(changed, s.text)
		}
	}
	assert.Equal(t, []string{"2"}, changed)
}

func TestWordDiff_ReassemblesLines(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.StringMatching(`[a-z (),.=]{0,40}`).Draw(rt, "old")
		b := rapid.StringMatching(`[a-z (),.=]{0,40}`).Draw(rt, "new")
		oldSegs, newSegs := wordDiff(a, b)
		if joinSegments(oldSegs) != a {
			rt.Fatalf("old side %q rebuilt as %q", a, joinSegments(oldSegs))
		}
		if joinSegments(newSegs) != b {
			rt.Fatalf("new side %q rebuilt as %q", b, joinSegments(newSegs))
		}
	})
}
