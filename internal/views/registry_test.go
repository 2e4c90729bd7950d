package views

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/specboard/internal/nav"
)

func TestZeroValueShowsFeatures(t *testing.T) {
	var r Registry
	require.Equal(t, Features, r.Active())
	require.Equal(t, nav.TabFeatures, r.ActiveTab())
	require.True(t, r.Visible(Features))
	require.Equal(t, 1, r.VisibleCount())
}

func TestShowKeepsExactlyOneViewVisible(t *testing.T) {
	var r Registry
	states := []nav.ViewState{
		nav.Kanban("A"),
		nav.Artifact("A", "spec.md"),
		nav.Untracked(),
		nav.Constitution(),
		nav.Features(),
		nav.Kanban("B"),
	}
	for _, s := range states {
		id := r.Show(s)
		require.Equal(t, ForState(s), id)
		require.Equal(t, 1, r.VisibleCount(), "after showing %s", s)
		require.True(t, r.Visible(id))
		require.Equal(t, nav.TabOf(s), r.ActiveTab())
	}
}

func TestSubViewsHighlightFeaturesTab(t *testing.T) {
	var r Registry
	r.Show(nav.Artifact("A", "plan.md"))
	require.Equal(t, Artifact, r.Active())
	require.Equal(t, nav.TabFeatures, r.ActiveTab())
	require.False(t, r.Visible(Features))
}

func TestPolls(t *testing.T) {
	var r Registry
	r.Show(nav.Untracked())
	require.True(t, r.Polls())
	r.Show(nav.Kanban("A"))
	require.False(t, r.Polls())
	r.Show(nav.Constitution())
	require.False(t, r.Polls())
	r.Show(nav.Features())
	require.True(t, r.Polls())
}

func TestVisibleOutOfRange(t *testing.T) {
	var r Registry
	require.False(t, r.Visible(ID(42)))
}
