package features

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/nav"
)

func sample() []api.Feature {
	return []api.Feature{
		{ID: "001-auth", Name: "Auth", Mode: "pro", TotalTasks: 4,
			Artifacts:   api.Artifacts{"spec": true, "plan": true, "kanban": true},
			KanbanStats: api.KanbanStats{Planned: 1, Doing: 2, Done: 1}},
		{ID: "002-billing", Name: "Billing", Mode: "normal", TotalTasks: 2, IsPhaseMode: true,
			WalkthroughFiles: []string{"walkthrough-phase-1.md"},
			Phases: map[string]api.Phase{
				"Phase1": {ID: "Phase1", PhaseNum: 1, Status: api.LaneDone, Title: "Setup"},
				"Phase2": {ID: "Phase2", PhaseNum: 2, Status: api.LaneDoing, Title: "Invoices"},
			}},
	}
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestBadges(t *testing.T) {
	b := Badges(sample()[0])
	require.Len(t, b, 3)
	require.Equal(t, Badge{Label: "kanban", State: nav.Kanban("001-auth")}, b[0])
	require.Equal(t, Badge{Label: "plan", State: nav.Artifact("001-auth", "plan.md")}, b[1])
	require.Equal(t, nav.Artifact("001-auth", "spec.md"), b[2].State)

	w := Badges(sample()[1])
	require.Equal(t, Badge{Label: "walkthrough-phase-1", State: nav.Artifact("002-billing", "walkthrough-phase-1.md")}, w[1])
}

func TestSetFeatures_SortsAndKeepsSelection(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetFeatures(sample(), time.Now())
	f, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, "002-billing", f.ID)

	m, _ = m.Update(keyPress("j"))
	f, _ = m.Selected()
	require.Equal(t, "001-auth", f.ID)

	m = m.SetFeatures(sample(), time.Now())
	f, _ = m.Selected()
	require.Equal(t, "001-auth", f.ID)
}

func TestEnterOpensFocusedBadge(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetFeatures(sample(), time.Now())
	m, _ = m.Update(keyPress("j"))

	_, cmd := m.Update(keyPress("enter"))
	require.Equal(t, OpenMsg{State: nav.Kanban("001-auth")}, cmd())

	m, _ = m.Update(keyPress("l"))
	m, _ = m.Update(keyPress("l"))
	_, cmd = m.Update(keyPress("enter"))
	require.Equal(t, OpenMsg{State: nav.Artifact("001-auth", "spec.md")}, cmd())

	m, _ = m.Update(keyPress("l"))
	b, _ := m.SelectedBadge()
	require.Equal(t, "spec", b.Label)
}

func TestStats(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetFeatures(sample(), time.Now())
	require.Equal(t, "2 features • 6 tasks", m.Stats())
}

func TestView(t *testing.T) {
	ts := time.Date(2026, 10, 14, 8, 30, 0, 0, time.Local)
	m := New(keys.DefaultKeyMap()).SetSize(80, 40)
	require.Contains(t, ansi.Strip(m.View()), "Loading...")

	m = m.SetFeatures(sample(), ts)
	out := ansi.Strip(zoneScan(m.View()))
	require.Contains(t, out, "Updated: 08:30:00")
	require.Contains(t, out, "📊 1/2 phases")
	require.Contains(t, out, "⏳ Invoices")
	require.Contains(t, out, "🔨 2 doing")
	require.Contains(t, out, "Pro Mode")
	require.Contains(t, out, "Normal Mode")

	m = m.SetFeatures(nil, ts)
	require.Contains(t, ansi.Strip(m.View()), "No features found")
}

func TestView_Error(t *testing.T) {
	m := New(keys.DefaultKeyMap()).SetError(errors.New("connection refused"))
	require.Contains(t, ansi.Strip(m.View()), "Failed to load features: connection refused")

	m = m.SetFeatures(sample(), time.Now()).SetError(errors.New("timeout"))
	out := ansi.Strip(zoneScan(m.View()))
	require.Contains(t, out, "Refresh failed: timeout")
	require.Contains(t, out, "Auth")
}
