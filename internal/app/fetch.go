package app

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/nav"
)

// Every view fetch carries the state it was issued for. Results whose state
// is no longer current are dropped. Polled fetches also carry a sequence
// number so an older result never replaces a newer one.

// fetchSeq numbers polled fetches. It is shared by every copy of the model.
type fetchSeq struct{ n uint64 }

func (s *fetchSeq) next() uint64 {
	s.n++
	return s.n
}

type featuresMsg struct {
	state    nav.ViewState
	seq      uint64
	features []api.Feature
	err      error
	at       time.Time
}

type boardMsg struct {
	state nav.ViewState
	board api.Board
	err   error
}

type artifactMsg struct {
	state nav.ViewState
	text  string
	err   error
}

type walkthroughMsg struct {
	state nav.ViewState
	file  string
	text  string
	err   error
}

type untrackedMsg struct {
	state   nav.ViewState
	seq     uint64
	commits []api.UntrackedCommit
	err     error
}

type constitutionMsg struct {
	state nav.ViewState
	text  string
	found bool
	err   error
}

// badgeMsg updates the untracked count on the tab bar whatever view is
// active.
type badgeMsg struct {
	count int
	err   error
}

type stringsMsg struct {
	strings api.Strings
	err     error
}

type taskDetailMsg struct {
	ref    api.TaskRef
	detail api.TaskDetail
	err    error
}

type taskCommitsMsg struct {
	ref     api.TaskRef
	commits []api.Commit
	err     error
}

type taskFilesMsg struct {
	ref   api.TaskRef
	files []api.FileChange
	err   error
}

type taskReviewsMsg struct {
	ref     api.TaskRef
	reviews []api.Review
	err     error
}

type diffMsg struct {
	ref  api.TaskRef // zero for the migrate modal
	sha  string
	text string
	err  error
}

func (m Model) fetchFeatures(state nav.ViewState) tea.Cmd {
	svc, ctx, clock := m.svc, m.ctx, m.clock
	seq := m.seq.next()
	return func() tea.Msg {
		fs, err := svc.Features(ctx)
		return featuresMsg{state: state, seq: seq, features: fs, err: err, at: clock.Now()}
	}
}

func (m Model) fetchBoard(state nav.ViewState) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		b, err := svc.Kanban(ctx, state.FeatureID)
		return boardMsg{state: state, board: b, err: err}
	}
}

func (m Model) fetchArtifact(state nav.ViewState) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, err := svc.Artifact(ctx, state.FeatureID, state.ArtifactName)
		return artifactMsg{state: state, text: text, err: err}
	}
}

func (m Model) fetchWalkthrough(state nav.ViewState, file string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, err := svc.Artifact(ctx, state.FeatureID, file)
		return walkthroughMsg{state: state, file: file, text: text, err: err}
	}
}

func (m Model) fetchUntracked(state nav.ViewState) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	seq := m.seq.next()
	return func() tea.Msg {
		cs, err := svc.Untracked(ctx)
		return untrackedMsg{state: state, seq: seq, commits: cs, err: err}
	}
}

func (m Model) fetchConstitution(state nav.ViewState) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, found, err := svc.Constitution(ctx)
		return constitutionMsg{state: state, text: text, found: found, err: err}
	}
}

func (m Model) fetchBadge() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		cs, err := svc.Untracked(ctx)
		return badgeMsg{count: len(cs), err: err}
	}
}

func (m Model) fetchStrings() tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		s, err := svc.Strings(ctx)
		return stringsMsg{strings: s, err: err}
	}
}

func (m Model) fetchTask(ref api.TaskRef) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		d, err := svc.Task(ctx, ref)
		return taskDetailMsg{ref: ref, detail: d, err: err}
	}
}

func (m Model) fetchTaskCommits(ref api.TaskRef) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		cs, err := svc.TaskCommits(ctx, ref)
		return taskCommitsMsg{ref: ref, commits: cs, err: err}
	}
}

func (m Model) fetchTaskFiles(ref api.TaskRef) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		fs, err := svc.TaskFiles(ctx, ref)
		return taskFilesMsg{ref: ref, files: fs, err: err}
	}
}

func (m Model) fetchTaskReviews(ref api.TaskRef) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		rs, err := svc.TaskReviews(ctx, ref)
		return taskReviewsMsg{ref: ref, reviews: rs, err: err}
	}
}

func (m Model) fetchDiff(ref api.TaskRef, sha string) tea.Cmd {
	svc, ctx := m.svc, m.ctx
	return func() tea.Msg {
		text, err := svc.Diff(ctx, sha)
		return diffMsg{ref: ref, sha: sha, text: text, err: err}
	}
}
