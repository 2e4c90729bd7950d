package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"
)

func TestNew_RejectsUnknownStyle(t *testing.T) {
	_, err := New(80, "neon")
	require.Error(t, err)
}

func TestRender(t *testing.T) {
	r, err := New(60, "dark")
	require.NoError(t, err)
	require.Equal(t, 60, r.Width())
	require.Equal(t, "dark", r.Style())

	out, err := r.Render("# Plan\n\nShip the **login** flow.")
	require.NoError(t, err)
	plain := ansi.Strip(out)
	require.Contains(t, plain, "Plan")
	require.Contains(t, plain, "Ship the login flow.")
}

func TestRenderOrRaw_NilRenderer(t *testing.T) {
	var r *Renderer
	require.Equal(t, "# raw", r.RenderOrRaw("# raw"))
}
