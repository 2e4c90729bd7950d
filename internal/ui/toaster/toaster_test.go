package toaster

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	m := New()
	assert.False(t, m.Visible())
	assert.Empty(t, m.View())
}

func TestShow(t *testing.T) {
	m, cmd := New().Show("Copied to clipboard", StyleSuccess, time.Millisecond)
	require.NotNil(t, cmd)
	assert.True(t, m.Visible())
	assert.Contains(t, m.View(), "✅ Copied to clipboard")
	assert.Contains(t, m.View(), "╭")
}

func TestStyles(t *testing.T) {
	tests := []struct {
		style Style
		icon  string
	}{
		{StyleError, "❌"},
		{StyleInfo, "ℹ️"},
		{StyleWarn, "⚠️"},
	}
	for _, tt := range tests {
		m, _ := New().Show("msg", tt.style, time.Second)
		assert.Contains(t, m.View(), tt.icon)
	}
}

func TestDismiss(t *testing.T) {
	m, cmd := New().Show("first", StyleInfo, time.Millisecond)
	msg := cmd()
	m = m.Update(msg)
	assert.False(t, m.Visible())
}

func TestDismiss_IgnoresEarlierToast(t *testing.T) {
	m, first := New().Show("first", StyleInfo, time.Millisecond)
	m, _ = m.Show("second", StyleInfo, time.Second)

	m = m.Update(first())
	assert.True(t, m.Visible())
	assert.Equal(t, "second", m.Message())
}

func TestOverlay(t *testing.T) {
	bg := strings.Repeat(strings.Repeat(".", 30)+"\n", 9) + strings.Repeat(".", 30)
	assert.Equal(t, bg, New().Overlay(bg, 30, 10))

	m, _ := New().Show("saved", StyleSuccess, time.Second)
	out := m.Overlay(bg, 30, 10)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)
	assert.Contains(t, lines[7], "saved")
	assert.Equal(t, strings.Repeat(".", 30), lines[9])
}
