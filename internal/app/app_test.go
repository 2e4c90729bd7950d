package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/nav"
	"github.com/zjrosen/specboard/internal/poll"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/board"
	"github.com/zjrosen/specboard/internal/ui/features"
	"github.com/zjrosen/specboard/internal/ui/migrate"
	"github.com/zjrosen/specboard/internal/ui/modal"
	"github.com/zjrosen/specboard/internal/ui/tabbar"
	"github.com/zjrosen/specboard/internal/ui/untracked"
	"github.com/zjrosen/specboard/internal/views"
)

func TestMain(m *testing.M) {
	zone.NewGlobal()
	os.Exit(m.Run())
}

// fakeService serves canned data and counts calls per endpoint.
type fakeService struct {
	mu           sync.Mutex
	calls        map[string]int
	features     []api.Feature
	boards       map[string]api.Board
	artifacts    map[string]string
	untracked    []api.UntrackedCommit
	constitution string
	diffs        map[string]string
}

func newFakeService() *fakeService {
	return &fakeService{
		calls: map[string]int{},
		features: []api.Feature{
			{ID: "001-auth", Name: "Auth", Artifacts: api.Artifacts{"spec": true}},
			{ID: "002-search", Name: "Search"},
		},
		boards: map[string]api.Board{
			"001-auth": {Lanes: map[string][]api.Task{
				api.LaneDoing: {{ID: "WP01", Title: "Login form"}},
			}},
		},
		artifacts: map[string]string{"001-auth/spec.md": "# Auth spec"},
		untracked: []api.UntrackedCommit{{SHA: "0123456789abcdef", Message: "quick fix", Author: "dev"}},
		diffs:     map[string]string{"0123456789abcdef": "diff --git a/x.py b/x.py\n+print(1)\n"},
	}
}

func (f *fakeService) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeService) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

var errNotFound = &api.StatusError{Path: "/api", Code: 404}

func (f *fakeService) Health(context.Context) (api.Health, error) {
	f.hit("health")
	return api.Health{Status: "ok"}, nil
}

func (f *fakeService) Features(context.Context) ([]api.Feature, error) {
	f.hit("features")
	return f.features, nil
}

func (f *fakeService) Kanban(_ context.Context, id string) (api.Board, error) {
	f.hit("kanban")
	b, ok := f.boards[id]
	if !ok {
		return api.Board{}, errNotFound
	}
	return b, nil
}

func (f *fakeService) Artifact(_ context.Context, id, name string) (string, error) {
	f.hit("artifact")
	text, ok := f.artifacts[id+"/"+name]
	if !ok {
		return "", errNotFound
	}
	return text, nil
}

func (f *fakeService) Task(_ context.Context, ref api.TaskRef) (api.TaskDetail, error) {
	f.hit("task")
	return api.TaskDetail{ID: ref.TaskID, Title: "Login form", Lane: ref.Lane}, nil
}

func (f *fakeService) TaskCommits(context.Context, api.TaskRef) ([]api.Commit, error) {
	f.hit("commits")
	return nil, nil
}

func (f *fakeService) TaskFiles(context.Context, api.TaskRef) ([]api.FileChange, error) {
	f.hit("files")
	return nil, nil
}

func (f *fakeService) TaskReviews(context.Context, api.TaskRef) ([]api.Review, error) {
	f.hit("reviews")
	return nil, nil
}

func (f *fakeService) Diff(_ context.Context, sha string) (string, error) {
	f.hit("diff")
	return f.diffs[sha], nil
}

func (f *fakeService) Untracked(context.Context) ([]api.UntrackedCommit, error) {
	f.hit("untracked")
	return f.untracked, nil
}

func (f *fakeService) Constitution(context.Context) (string, bool, error) {
	f.hit("constitution")
	return f.constitution, f.constitution != "", nil
}

func (f *fakeService) Strings(context.Context) (api.Strings, error) {
	f.hit("strings")
	return api.DefaultStrings(), nil
}

func newModel(t *testing.T, svc api.Service, location string) Model {
	t.Helper()
	m := New(Options{
		Service:       svc,
		Location:      location,
		ShowStatusBar: true,
		Clipboard:     &shared.MockClipboard{},
		Clock:         shared.FixedClock{T: time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)},
	})
	t.Cleanup(m.Close)
	return settle(t, m, tea.Batch(m.initCmds...))
}

// collect runs cmd and flattens batches.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds the results of cmd back into m until nothing is left.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		next, c := update(t, m, msg)
		m = settle(t, next, c)
	}
	return m
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

// send delivers msg and settles the commands it yields.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := update(t, m, msg)
	return settle(t, next, cmd)
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestDeepLinkLoadsWithSingleReplace(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#kanban/001-auth")

	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Equal(t, 1, m.History().Len())
	cur := m.History().Current()
	require.NotNil(t, cur.State)
	require.Equal(t, nav.Kanban("001-auth"), *cur.State)
	require.Equal(t, "#kanban/001-auth", cur.Location)

	require.Equal(t, 1, svc.count("kanban"))
	require.Equal(t, 1, svc.count("features"))
	require.True(t, m.board.Loaded())
	require.False(t, m.board.NotFound())
	require.Equal(t, views.Kanban, m.registry.Active())
	require.Equal(t, 1, m.registry.VisibleCount())
	require.Equal(t, nav.TabFeatures, m.tabbar.Active())
}

func TestEmptyLocationOpensFeatureList(t *testing.T) {
	m := newModel(t, newFakeService(), "")

	require.Equal(t, nav.Features(), m.Current())
	require.Equal(t, 1, m.History().Len())
	require.True(t, m.features.Loaded())
	require.Len(t, m.features.Features(), 2)
	require.Equal(t, 1, m.tabbar.UntrackedCount())
}

func TestMalformedLocationDegradesToFeatures(t *testing.T) {
	m := newModel(t, newFakeService(), "#kanban/")
	require.Equal(t, nav.Features(), m.Current())
}

func TestOpenPushesAndBackPops(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "")

	m = send(t, m, features.OpenMsg{State: nav.Kanban("001-auth")})
	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Equal(t, 2, m.History().Len())

	m = send(t, m, keyPress("esc"))
	require.Equal(t, nav.Features(), m.Current())
	require.Equal(t, 2, m.History().Len())
	require.Equal(t, 0, m.History().Index())

	m = send(t, m, keyPress("f"))
	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Equal(t, 2, svc.count("kanban"))
}

func TestBackAtFirstEntryIsNoop(t *testing.T) {
	m := newModel(t, newFakeService(), "")
	m, cmd := update(t, m, keyPress("b"))
	require.Nil(t, cmd)
	require.Equal(t, nav.Features(), m.Current())
}

func TestPopToCurrentStateIsIdempotent(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#kanban/001-auth")
	before := svc.count("kanban")

	state := nav.Kanban("001-auth")
	for range 2 {
		var cmd tea.Cmd
		m, cmd = m.navigate(nav.Popped{State: &state, Location: state.Location()})
		require.Nil(t, cmd)
	}
	require.Equal(t, before, svc.count("kanban"))
	require.Equal(t, state, m.Current())
	require.Equal(t, 1, m.History().Len())
}

func TestFeaturesTabRestoresKanban(t *testing.T) {
	m := newModel(t, newFakeService(), "")

	m = send(t, m, features.OpenMsg{State: nav.Kanban("001-auth")})
	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabUntracked})
	require.Equal(t, nav.Untracked(), m.Current())
	require.Len(t, m.untracked.Commits(), 1)

	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabFeatures})
	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Equal(t, 4, m.History().Len())
	require.Equal(t, "#kanban/001-auth", m.History().Location())
}

func TestFeaturesTabRestoresTypedKanban(t *testing.T) {
	m := newModel(t, newFakeService(), "")

	m = send(t, m, modal.SubmitMsg{Value: "#kanban/001-auth"})
	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Nil(t, m.History().Current().State)

	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabUntracked})
	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabFeatures})
	require.Equal(t, nav.Kanban("001-auth"), m.Current())
	require.Equal(t, "#kanban/001-auth", m.History().Location())
}

func TestFeaturesTabKeepsTypedList(t *testing.T) {
	m := newModel(t, newFakeService(), "")

	m = send(t, m, features.OpenMsg{State: nav.Kanban("001-auth")})
	m = send(t, m, modal.SubmitMsg{Value: "#features"})
	require.Equal(t, nav.Features(), m.Current())

	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabUntracked})
	m = send(t, m, tabbar.SelectMsg{Tab: nav.TabFeatures})
	require.Equal(t, nav.Features(), m.Current())
	require.Equal(t, "#features", m.History().Location())
}

func TestOlderFeatureListNeverReplacesNewer(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "")

	older := collect(m.fetchFeatures(m.Current()))
	svc.features = append(svc.features, api.Feature{ID: "003-export", Name: "Export"})
	newer := collect(m.fetchFeatures(m.Current()))
	require.Len(t, older, 1)
	require.Len(t, newer, 1)

	m = send(t, m, newer[0])
	require.Len(t, m.features.Features(), 3)
	m = send(t, m, older[0])
	require.Len(t, m.features.Features(), 3)
}

func TestOlderUntrackedListNeverReplacesNewer(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#untracked")

	older := collect(m.fetchUntracked(m.Current()))
	svc.untracked = nil
	newer := collect(m.fetchUntracked(m.Current()))

	m = send(t, m, newer[0])
	require.Empty(t, m.untracked.Commits())
	m = send(t, m, older[0])
	require.Empty(t, m.untracked.Commits())
}

func TestReselectingTabDoesNotPush(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#untracked")
	m = send(t, m, keyPress("2"))

	require.Equal(t, nav.Untracked(), m.Current())
	require.Equal(t, 1, m.History().Len())
	require.Equal(t, 3, svc.count("untracked"), "view, badge and the reload")
}

func TestStaleResponsesAreDropped(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "")

	m, pending := update(t, m, features.OpenMsg{State: nav.Kanban("001-auth")})
	require.Equal(t, nav.Kanban("001-auth"), m.Current())

	m = send(t, m, keyPress("b"))
	require.Equal(t, nav.Features(), m.Current())

	m = settle(t, m, pending)
	require.False(t, m.board.Loaded())
	require.Equal(t, nav.Features(), m.Current())
	require.Equal(t, views.Features, m.registry.Active())
}

func TestFeatureNotFound(t *testing.T) {
	m := newModel(t, newFakeService(), "#kanban/999-gone")
	require.True(t, m.board.NotFound())

	m = newModel(t, newFakeService(), "#artifact/999-gone/spec.md")
	require.Equal(t, "Feature not found: 999-gone", m.artifact.Message())
}

func TestArtifactStates(t *testing.T) {
	m := newModel(t, newFakeService(), "#artifact/001-auth/spec.md")
	require.True(t, m.artifact.Ready())
	require.Equal(t, "# Auth spec", m.artifact.Source())

	m = newModel(t, newFakeService(), "#artifact/001-auth/plan.md")
	require.Equal(t, "Artifact not found", m.artifact.Message())
}

func TestConstitution(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#constitution")
	require.Equal(t, "No constitution found. Create one with /speckit.constitution", m.constitution.Message())

	svc.constitution = "# Principles"
	m = send(t, m, keyPress("r"))
	require.True(t, m.constitution.Ready())
	require.Equal(t, "# Principles", m.constitution.Source())
}

func TestLocationPromptBehavesLikeAddressBar(t *testing.T) {
	m := newModel(t, newFakeService(), "")

	m, _ = update(t, m, keyPress("g"))
	require.Equal(t, overlayPrompt, m.overlay)

	m = send(t, m, modal.SubmitMsg{Value: "#artifact/001-auth/spec.md"})
	require.Equal(t, overlayNone, m.overlay)
	require.Equal(t, nav.Artifact("001-auth", "spec.md"), m.Current())
	require.Equal(t, 2, m.History().Len())
	require.Nil(t, m.History().Current().State)

	m = send(t, m, keyPress("b"))
	require.Equal(t, nav.Features(), m.Current())
}

func TestTaskModalLoadsDetail(t *testing.T) {
	svc := newFakeService()
	m := newModel(t, svc, "#kanban/001-auth")
	ref := api.TaskRef{FeatureID: "001-auth", Lane: api.LaneDoing, TaskID: "WP01"}

	m = send(t, m, board.OpenTaskMsg{Ref: ref})
	require.Equal(t, overlayTask, m.overlay)
	require.Equal(t, ref, m.task.Ref())
	require.Equal(t, 1, svc.count("task"))

	m = send(t, m, keyPress("esc"))
	require.Equal(t, overlayNone, m.overlay)
	require.Equal(t, nav.Kanban("001-auth"), m.Current(), "closing the modal keeps the view")
}

func TestMigrateCopiesCommand(t *testing.T) {
	clip := &shared.MockClipboard{}
	svc := newFakeService()
	m := New(Options{Service: svc, Location: "#untracked", Clipboard: clip})
	t.Cleanup(m.Close)
	m = settle(t, m, tea.Batch(m.initCmds...))

	c := svc.untracked[0]
	m = send(t, m, untracked.OpenMigrateMsg{Commit: c})
	require.Equal(t, overlayMigrate, m.overlay)
	require.True(t, m.migrate.DiffLoaded())

	m, _ = update(t, m, migrate.CopyMsg{Text: c.MigrateCommand()})
	require.Equal(t, "/spec-mix.migrate 0123456", clip.Last())
	require.Equal(t, "Command copied to clipboard", m.toaster.Message())

	clip.Err = errors.New("no display")
	m, _ = update(t, m, migrate.CopyMsg{Text: c.MigrateCommand()})
	require.Contains(t, m.toaster.Message(), "no display")
}

func TestPollTickRefreshesActiveView(t *testing.T) {
	svc := newFakeService()
	m := New(Options{Service: svc, AutoRefresh: true, PollInterval: time.Millisecond})
	t.Cleanup(m.Close)
	require.True(t, m.poller.Running())

	m, cmd := update(t, m, poll.TickMsg{Gen: 1})
	kinds := msgKinds(collect(cmd))
	assert.Equal(t, 1, kinds["tick"])
	assert.Equal(t, 1, kinds["badge"])
	assert.Equal(t, 1, kinds["features"])

	m = m.withState(nav.Constitution())
	_, cmd = update(t, m, poll.TickMsg{Gen: 1})
	kinds = msgKinds(collect(cmd))
	assert.Equal(t, 1, kinds["badge"])
	assert.Zero(t, kinds["features"])
	assert.Zero(t, kinds["untracked"])

	_, cmd = update(t, m, poll.TickMsg{Gen: 42})
	require.Nil(t, cmd, "ticks from another run are dropped")
}

// withState shows state without fetching.
func (m Model) withState(state nav.ViewState) Model {
	m.current = state
	m.registry.Show(state)
	return m
}

func msgKinds(msgs []tea.Msg) map[string]int {
	out := map[string]int{}
	for _, msg := range msgs {
		switch msg.(type) {
		case poll.TickMsg:
			out["tick"]++
		case badgeMsg:
			out["badge"]++
		case featuresMsg:
			out["features"]++
		case untrackedMsg:
			out["untracked"]++
		}
	}
	return out
}

func TestQuitStopsPoller(t *testing.T) {
	m := New(Options{Service: newFakeService(), AutoRefresh: true})
	t.Cleanup(m.Close)
	m, cmd := update(t, m, keyPress("q"))
	require.False(t, m.poller.Running())
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestCloseCancelsRequests(t *testing.T) {
	m := New(Options{Service: newFakeService()})
	require.NoError(t, m.ctx.Err())
	m.Close()
	require.ErrorIs(t, m.ctx.Err(), context.Canceled)
}

func TestProgramRendersAndQuits(t *testing.T) {
	m := New(Options{Service: newFakeService(), ShowStatusBar: true, Clipboard: &shared.MockClipboard{}})
	t.Cleanup(m.Close)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(120, 40))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Auth"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	tm.WaitFinished(t, teatest.WithFinalTimeout(3*time.Second))

	final, ok := tm.FinalModel(t).(Model)
	require.True(t, ok)
	require.Equal(t, nav.Features(), final.Current())
}
