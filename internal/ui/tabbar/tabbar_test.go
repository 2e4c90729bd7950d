package tabbar

import (
	"os"
	"testing"

	"github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/nav"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

func TestViewShowsTabsAndBadge(t *testing.T) {
	m := New().SetUntrackedCount(3).SetWidth(120)
	out := ansi.Strip(zone.Scan(m.View()))
	require.Contains(t, out, "Features")
	require.Contains(t, out, "Untracked Commits")
	require.Contains(t, out, "Constitution")
	require.Contains(t, out, " 3 ")
}

func TestLabelsFollowStrings(t *testing.T) {
	s := api.DefaultStrings()
	s.Features = "Fonctionnalités"
	m := New().SetStrings(s)
	require.Equal(t, "Fonctionnalités", m.Label(nav.TabFeatures))
	require.Equal(t, "Constitution", m.Label(nav.TabConstitution))
}

func TestNarrowWidthTruncates(t *testing.T) {
	m := New().SetWidth(30)
	out := ansi.Strip(zone.Scan(m.View()))
	require.NotContains(t, out, "Untracked Commits")
	require.Contains(t, out, "...")
}

func TestNextPrevWrap(t *testing.T) {
	require.Equal(t, nav.TabUntracked, Next(nav.TabFeatures))
	require.Equal(t, nav.TabFeatures, Next(nav.TabConstitution))
	require.Equal(t, nav.TabConstitution, Prev(nav.TabFeatures))
}
