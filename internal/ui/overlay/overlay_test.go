package overlay

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlace_Center(t *testing.T) {
	out := Place(Config{Width: 5, Height: 3}, "XX\nXX", "AAAAA\nAAAAA\nAAAAA")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "AXXAA", lines[0])
	assert.Equal(t, "AXXAA", lines[1])
	assert.Equal(t, "AAAAA", lines[2])
}

func TestPlace_LargeForegroundStartsAtOrigin(t *testing.T) {
	out := Place(Config{Width: 3, Height: 3}, "XXXXX", "AAA\nAAA\nAAA")
	assert.Equal(t, "XXXXX", strings.Split(out, "\n")[1])
}

func TestPlace_TopAndBottom(t *testing.T) {
	bg := "AAAAA\nAAAAA\nAAAAA\nAAAAA\nAAAAA"

	top := strings.Split(Place(Config{Width: 5, Height: 5, Position: Top, PadY: 1}, "XX", bg), "\n")
	assert.Equal(t, "AAAAA", top[0])
	assert.Equal(t, "AXXAA", top[1])

	bottom := strings.Split(Place(Config{Width: 5, Height: 5, Position: Bottom, PadY: 1}, "XX", bg), "\n")
	assert.Equal(t, "AXXAA", bottom[3])
	assert.Equal(t, "AAAAA", bottom[4])
}

func TestPlace_PadsShortBackground(t *testing.T) {
	out := Place(Config{Width: 4, Height: 3}, "XX", "")
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, " XX ", lines[1])
}

func TestPlace_KeepsStyledBackgroundWidth(t *testing.T) {
	styled := lipgloss.NewStyle().Bold(true).Render("BBBBBB")
	out := Place(Config{Width: 6, Height: 1}, "XX", styled)
	assert.Equal(t, 6, ansi.StringWidth(out))
	assert.Equal(t, "BBXXBB", ansi.Strip(out))
}
