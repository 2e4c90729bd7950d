package app

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/nav"
	"github.com/zjrosen/specboard/internal/views"
)

// navigate runs ev through the transition function, applies the history
// operation and shows the target view. A pop to the state already on screen
// changes nothing; selecting a tab always reloads it.
func (m Model) navigate(ev nav.Event) (Model, tea.Cmd) {
	d := nav.Transition(m.history.Snapshot(), ev)
	m.history.Apply(d)
	log.Debug(log.CatNav, "transition",
		"event", eventName(ev),
		"location", d.State.Location(),
		"op", d.Op,
		"restore", d.Restore)

	if _, tab := ev.(nav.TabSelected); m.shown && !tab && d.State == m.current {
		return m, nil
	}
	return m.show(d.State)
}

func eventName(ev nav.Event) string {
	switch ev.(type) {
	case nav.TabSelected:
		return "tab"
	case nav.Opened:
		return "open"
	case nav.Popped:
		return "pop"
	case nav.Loaded:
		return "load"
	}
	return "unknown"
}

// show makes state's view the only visible one and loads its data.
func (m Model) show(state nav.ViewState) (Model, tea.Cmd) {
	m.current = state
	m.shown = true
	m.missing = false
	id := m.registry.Show(state)
	m.tabbar = m.tabbar.SetActive(m.registry.ActiveTab())
	log.Info(log.CatNav, "show", "view", id, "location", state.Location())
	return m.load(state)
}

// load issues the fetches of state's view. Every command is tagged with
// state so late results for another view are dropped.
func (m Model) load(state nav.ViewState) (Model, tea.Cmd) {
	switch views.ForState(state) {
	case views.Kanban:
		m.board = m.board.Reset(state.FeatureID)
		return m, tea.Batch(m.fetchBoard(state), m.fetchFeatures(state))
	case views.Artifact:
		m.artifact = m.artifact.SetLoading(artifactTitle(state))
		return m, tea.Batch(m.fetchArtifact(state), m.fetchFeatures(state))
	case views.Untracked:
		return m, m.fetchUntracked(state)
	case views.Constitution:
		m.constitution = m.constitution.SetLoading(m.strings.Constitution)
		return m, m.fetchConstitution(state)
	default:
		m.features = m.features.SetLoading()
		return m, m.fetchFeatures(state)
	}
}

func artifactTitle(state nav.ViewState) string {
	return state.FeatureID + " / " + state.ArtifactName
}

// handleResult applies fetch results. View results are kept only while
// their state is current; task and diff results only while their modal is
// open on the same task or commit.
func (m Model) handleResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stringsMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading strings", msg.err)
		}
		m.strings = msg.strings
		m.tabbar = m.tabbar.SetStrings(msg.strings)
		m.features = m.features.SetStrings(msg.strings)
		m.board = m.board.SetStrings(msg.strings)
		return m, nil

	case badgeMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading untracked count", msg.err)
			return m, nil
		}
		m.tabbar = m.tabbar.SetUntrackedCount(msg.count)
		return m, nil

	case featuresMsg:
		if !m.isCurrent(msg.state, "features") || !m.isLatest(msg.seq, m.featuresSeq, "features") {
			return m, nil
		}
		m.featuresSeq = msg.seq
		return m.applyFeatures(msg), nil

	case boardMsg:
		if !m.isCurrent(msg.state, "kanban") {
			return m, nil
		}
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading board", msg.err, "feature", msg.state.FeatureID)
			m.board = m.board.SetError(msg.err)
			return m, nil
		}
		m.board = m.board.SetBoard(msg.board)
		return m, nil

	case walkthroughMsg:
		if !m.isCurrent(msg.state, "walkthrough") {
			return m, nil
		}
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading walkthrough", msg.err, "file", msg.file)
			m.board = m.board.SetWalkthroughError(msg.file, msg.err)
			return m, nil
		}
		m.board = m.board.SetWalkthrough(msg.file, msg.text)
		return m, nil

	case artifactMsg:
		if !m.isCurrent(msg.state, "artifact") || m.missing {
			return m, nil
		}
		title := artifactTitle(msg.state)
		switch {
		case api.IsNotFound(msg.err):
			m.artifact = m.artifact.SetEmpty(title, "Artifact not found")
		case msg.err != nil:
			log.ErrorErr(log.CatAPI, "loading artifact", msg.err, "location", msg.state.Location())
			m.artifact = m.artifact.SetError(title, "Failed to load artifact: "+msg.err.Error())
		default:
			m.artifact = m.artifact.SetDocument(title, msg.text)
		}
		return m, nil

	case untrackedMsg:
		if !m.isCurrent(msg.state, "untracked") || !m.isLatest(msg.seq, m.untrackedSeq, "untracked") {
			return m, nil
		}
		m.untrackedSeq = msg.seq
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading untracked commits", msg.err)
			m.untracked = m.untracked.SetError(msg.err)
			return m, nil
		}
		m.untracked = m.untracked.SetCommits(msg.commits)
		m.tabbar = m.tabbar.SetUntrackedCount(len(msg.commits))
		return m, nil

	case constitutionMsg:
		if !m.isCurrent(msg.state, "constitution") {
			return m, nil
		}
		title := m.strings.Constitution
		switch {
		case msg.err != nil:
			log.ErrorErr(log.CatAPI, "loading constitution", msg.err)
			m.constitution = m.constitution.SetError(title, "Failed to load constitution")
		case !msg.found:
			m.constitution = m.constitution.SetEmpty(title, "No constitution found. Create one with /speckit.constitution")
		default:
			m.constitution = m.constitution.SetDocument(title, msg.text)
		}
		return m, nil

	case taskDetailMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading task", msg.err, "task", msg.ref.TaskID)
		}
		m.task = m.task.SetDetail(msg.ref, msg.detail, msg.err)
		return m, nil

	case taskCommitsMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading task commits", msg.err, "task", msg.ref.TaskID)
		}
		m.task = m.task.SetCommits(msg.ref, msg.commits, msg.err)
		return m, nil

	case taskFilesMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading task files", msg.err, "task", msg.ref.TaskID)
		}
		m.task = m.task.SetFiles(msg.ref, msg.files, msg.err)
		return m, nil

	case taskReviewsMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatAPI, "loading task reviews", msg.err, "task", msg.ref.TaskID)
		}
		m.task = m.task.SetReviews(msg.ref, msg.reviews, msg.err)
		return m, nil

	case diffMsg:
		if msg.err != nil {
			log.ErrorErr(log.CatDiff, "loading diff", msg.err, "sha", msg.sha)
		}
		if msg.ref == (api.TaskRef{}) {
			if msg.err != nil {
				m.migrate = m.migrate.SetDiffError(msg.sha, msg.err)
			} else {
				m.migrate = m.migrate.SetDiff(msg.sha, msg.text)
			}
			return m, nil
		}
		m.task = m.task.SetDiff(msg.ref, msg.sha, msg.text, msg.err)
		return m, nil
	}

	// Cursor blinks and the like belong to the open prompt
	if m.overlay == overlayPrompt {
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	}
	return m, nil
}

// isCurrent reports whether a result issued for state may still be shown.
func (m Model) isCurrent(state nav.ViewState, what string) bool {
	if state == m.current {
		return true
	}
	log.Debug(log.CatNav, "stale response dropped",
		"result", what,
		"for", state.Location(),
		"current", m.current.Location())
	return false
}

// applyFeatures stores the feature list and resolves the feature of a
// kanban or artifact view against it.
func (m Model) applyFeatures(msg featuresMsg) Model {
	if msg.err != nil {
		log.ErrorErr(log.CatAPI, "loading features", msg.err)
		if msg.state.Kind == nav.KindFeatures {
			m.features = m.features.SetError(msg.err)
		}
		return m
	}
	m.features = m.features.SetFeatures(msg.features, msg.at)

	switch msg.state.Kind {
	case nav.KindKanban:
		f, ok := api.FindFeature(msg.features, msg.state.FeatureID)
		if !ok {
			log.Warn(log.CatNav, "feature not found", "feature", msg.state.FeatureID)
		}
		m.board = m.board.SetFeature(f, ok)
	case nav.KindArtifact:
		if _, ok := api.FindFeature(msg.features, msg.state.FeatureID); !ok {
			log.Warn(log.CatNav, "feature not found", "feature", msg.state.FeatureID)
			m.missing = true
			m.artifact = m.artifact.SetEmpty(artifactTitle(msg.state), "Feature not found: "+msg.state.FeatureID)
		}
	}
	return m
}

// isLatest reports whether a polled result is newer than the last one
// applied for the same view.
func (m Model) isLatest(seq, applied uint64, what string) bool {
	if seq > applied {
		return true
	}
	log.Debug(log.CatPoll, "out of order response dropped",
		"result", what,
		"seq", seq,
		"applied", applied)
	return false
}
