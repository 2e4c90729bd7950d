// Package app contains the root application model.
package app

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/history"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/nav"
	"github.com/zjrosen/specboard/internal/poll"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/board"
	"github.com/zjrosen/specboard/internal/ui/docview"
	"github.com/zjrosen/specboard/internal/ui/features"
	"github.com/zjrosen/specboard/internal/ui/help"
	"github.com/zjrosen/specboard/internal/ui/logpane"
	"github.com/zjrosen/specboard/internal/ui/migrate"
	"github.com/zjrosen/specboard/internal/ui/modal"
	"github.com/zjrosen/specboard/internal/ui/styles"
	"github.com/zjrosen/specboard/internal/ui/tabbar"
	"github.com/zjrosen/specboard/internal/ui/taskmodal"
	"github.com/zjrosen/specboard/internal/ui/toaster"
	"github.com/zjrosen/specboard/internal/ui/untracked"
	"github.com/zjrosen/specboard/internal/views"
)

// overlayKind is the modal drawn over the active view, if any.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayPrompt
	overlayTask
	overlayMigrate
	overlayHelp
)

// Options configures the root model.
type Options struct {
	Service api.Service
	// Location is the deep link the session starts at, such as
	// "#kanban/001-auth". Empty opens the feature list.
	Location      string
	PollInterval  time.Duration
	AutoRefresh   bool
	MarkdownStyle string
	Debug         bool
	ShowStatusBar bool
	Clipboard     shared.Clipboard
	Clock         shared.Clock
}

// Model is the root application state. It is the only owner of the
// current view state; fetch results are applied only while the state they
// were issued for is still current.
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	svc    api.Service
	keys   keys.KeyMap
	style  string

	// Navigation
	history  *history.Stack
	registry views.Registry
	current  nav.ViewState
	shown    bool
	missing  bool

	// Last applied sequence numbers of the polled fetches
	seq          *fetchSeq
	featuresSeq  uint64
	untrackedSeq uint64

	// Views
	strings      api.Strings
	tabbar       tabbar.Model
	features     features.Model
	board        board.Model
	artifact     docview.Model
	constitution docview.Model
	untracked    untracked.Model

	// Overlays
	overlay overlayKind
	prompt  modal.Model
	task    taskmodal.Model
	migrate migrate.Model
	help    help.Model

	toaster  toaster.Model
	debug    bool
	logs     logpane.Model
	listener *log.Listener

	poller        poll.Poller
	spinner       spinner.Model
	showStatusBar bool
	clipboard     shared.Clipboard
	clock         shared.Clock

	width  int
	height int

	initCmds []tea.Cmd
}

// New creates the root model and resolves the initial location. The fetches
// for the first view are issued by Init.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	km := keys.DefaultKeyMap().WithDebug(opts.Debug)
	style := opts.MarkdownStyle
	if style == "" {
		style = "dark"
	}
	clock := opts.Clock
	if clock == nil {
		clock = shared.RealClock{}
	}
	clip := opts.Clipboard
	if clip == nil {
		clip = shared.SystemClipboard{}
	}

	m := Model{
		ctx:           ctx,
		cancel:        cancel,
		svc:           opts.Service,
		keys:          km,
		style:         style,
		history:       history.New(opts.Location),
		seq:           &fetchSeq{},
		strings:       api.DefaultStrings(),
		tabbar:        tabbar.New(),
		features:      features.New(km),
		board:         board.New(km, style),
		artifact:      docview.New(style),
		constitution:  docview.New(style),
		untracked:     untracked.New(km, clock),
		help:          help.New(km),
		toaster:       toaster.New(),
		debug:         opts.Debug,
		logs:          logpane.New(),
		poller:        poll.New(opts.PollInterval),
		showStatusBar: opts.ShowStatusBar,
		clipboard:     clip,
		clock:         clock,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(styles.SpinnerColor)),
		),
	}
	if opts.Debug {
		m.listener = log.NewListener(ctx)
	}

	var cmd tea.Cmd
	m, cmd = m.navigate(nav.Loaded{})
	m.initCmds = append(m.initCmds, cmd, m.fetchStrings(), m.fetchBadge())

	if opts.AutoRefresh {
		var tick tea.Cmd
		m.poller, tick = m.poller.Start()
		m.initCmds = append(m.initCmds, tick)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := append([]tea.Cmd{}, m.initCmds...)
	if m.listener != nil {
		cmds = append(cmds, m.listener.Listen())
	}
	cmds = append(cmds, m.spinner.Tick)
	return tea.Batch(cmds...)
}

// Close abandons requests in flight. Polling ends with the program; quit
// stops the poller first.
func (m Model) Close() {
	m.cancel()
}

// Current returns the state of the visible view.
func (m Model) Current() nav.ViewState { return m.current }

// History returns the navigation history.
func (m Model) History() *history.Stack { return m.history }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.resize(), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case log.LogEvent:
		m.logs = m.logs.Append(msg.Payload)
		if m.listener == nil {
			return m, nil
		}
		return m, m.listener.Listen()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case toaster.DismissMsg:
		m.toaster = m.toaster.Update(msg)
		return m, nil

	case poll.TickMsg:
		return m.handleTick(msg)

	// Navigation intents

	case tabbar.SelectMsg:
		return m.navigate(nav.TabSelected{Tab: msg.Tab})

	case features.OpenMsg:
		return m.navigate(nav.Opened{State: msg.State})

	case modal.SubmitMsg:
		m.overlay = overlayNone
		return m.navigate(m.history.PushLocation(msg.Value))

	case modal.CancelMsg:
		m.overlay = overlayNone
		return m, nil

	case logpane.CloseMsg:
		return m, nil

	// Task modal

	case board.OpenTaskMsg:
		return m.openTask(msg.Ref)

	case taskmodal.OpenMsg:
		return m.openTask(msg.Ref)

	case taskmodal.CloseMsg:
		m.overlay = overlayNone
		return m, nil

	case taskmodal.LoadDetailMsg:
		m.task = m.task.SetDetailLoading()
		return m, m.fetchTask(msg.Ref)

	case taskmodal.LoadCommitsMsg:
		return m, m.fetchTaskCommits(msg.Ref)

	case taskmodal.LoadFilesMsg:
		return m, m.fetchTaskFiles(msg.Ref)

	case taskmodal.LoadReviewsMsg:
		return m, m.fetchTaskReviews(msg.Ref)

	case taskmodal.LoadDiffMsg:
		return m, m.fetchDiff(msg.Ref, msg.SHA)

	// Untracked commits

	case untracked.OpenMigrateMsg:
		m.migrate = migrate.New(m.keys, msg.Commit).SetSize(m.width, m.height)
		m.overlay = overlayMigrate
		return m, m.migrate.Init()

	case migrate.LoadDiffMsg:
		m.migrate = m.migrate.SetDiffLoading()
		return m, m.fetchDiff(api.TaskRef{}, msg.SHA)

	case migrate.CopyMsg:
		return m.copy(msg.Text)

	case migrate.CloseMsg:
		m.overlay = overlayNone
		return m, nil

	case board.LoadWalkthroughMsg:
		if m.current.Kind != nav.KindKanban || m.current.FeatureID != msg.FeatureID {
			return m, nil
		}
		m.board = m.board.SetWalkthroughLoading(msg.File)
		return m, m.fetchWalkthrough(m.current, msg.File)
	}

	return m.handleResult(msg)
}

// resize propagates the window size. Views get the area between the tab bar
// and the status bar.
func (m Model) resize() Model {
	w, h := m.width, m.bodyHeight()
	m.tabbar = m.tabbar.SetWidth(w)
	m.features = m.features.SetSize(w, h)
	m.board = m.board.SetSize(w, h)
	m.artifact = m.artifact.SetSize(w, h)
	m.constitution = m.constitution.SetSize(w, h)
	m.untracked = m.untracked.SetSize(w, h)
	m.prompt = m.prompt.SetSize(m.width, m.height)
	m.task = m.task.SetSize(m.width, m.height)
	m.migrate = m.migrate.SetSize(m.width, m.height)
	m.help = m.help.SetSize(m.width, m.height)
	m.logs = m.logs.SetSize(m.width, m.height)
	return m
}

func (m Model) bodyHeight() int {
	h := m.height - 3
	if m.showStatusBar {
		h--
	}
	return max(h, 1)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.debug && key.Matches(msg, m.keys.LogPane) {
		m.logs = m.logs.Toggle()
		return m, nil
	}

	// The debug log pane takes precedence over everything else
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch m.overlay {
	case overlayPrompt:
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		return m, cmd
	case overlayTask:
		var cmd tea.Cmd
		m.task, cmd = m.task.Update(msg)
		return m, cmd
	case overlayMigrate:
		var cmd tea.Cmd
		m.migrate, cmd = m.migrate.Update(msg)
		return m, cmd
	case overlayHelp:
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Escape) {
			m.overlay = overlayNone
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.quit()
	case key.Matches(msg, m.keys.Help):
		m.overlay = overlayHelp
		return m, nil
	case key.Matches(msg, m.keys.Back):
		return m.back()
	case key.Matches(msg, m.keys.Escape):
		if m.current.Kind == nav.KindKanban || m.current.Kind == nav.KindArtifact {
			return m.back()
		}
		return m, nil
	case key.Matches(msg, m.keys.Forward):
		ev, ok := m.history.Forward()
		if !ok {
			return m, nil
		}
		return m.navigate(ev)
	case key.Matches(msg, m.keys.GoTo):
		return m.openPrompt()
	case key.Matches(msg, m.keys.NextTab):
		return m.navigate(nav.TabSelected{Tab: tabbar.Next(m.registry.ActiveTab())})
	case key.Matches(msg, m.keys.PrevTab):
		return m.navigate(nav.TabSelected{Tab: tabbar.Prev(m.registry.ActiveTab())})
	case key.Matches(msg, m.keys.TabFeatures):
		return m.navigate(nav.TabSelected{Tab: nav.TabFeatures})
	case key.Matches(msg, m.keys.TabUntracked):
		return m.navigate(nav.TabSelected{Tab: nav.TabUntracked})
	case key.Matches(msg, m.keys.TabConstitution):
		return m.navigate(nav.TabSelected{Tab: nav.TabConstitution})
	case key.Matches(msg, m.keys.Refresh):
		return m.refresh()
	}

	return m.updateActive(msg)
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.logs.Visible():
		return m, nil
	case m.overlay == overlayTask:
		var cmd tea.Cmd
		m.task, cmd = m.task.Update(msg)
		return m, cmd
	case m.overlay != overlayNone:
		return m, nil
	}

	var cmd tea.Cmd
	m.tabbar, cmd = m.tabbar.Update(msg)
	if cmd != nil {
		return m, cmd
	}
	return m.updateActive(msg)
}

// updateActive hands msg to the visible view.
func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.registry.Active() {
	case views.Features:
		m.features, cmd = m.features.Update(msg)
	case views.Kanban:
		m.board, cmd = m.board.Update(msg)
	case views.Artifact:
		m.artifact, cmd = m.artifact.Update(msg)
	case views.Untracked:
		m.untracked, cmd = m.untracked.Update(msg)
	case views.Constitution:
		m.constitution, cmd = m.constitution.Update(msg)
	}
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.poller = m.poller.Stop()
	log.Info(log.CatUI, "quit", "location", m.history.Location())
	return m, tea.Quit
}

// back is a history back; at the first entry there is nowhere to go.
func (m Model) back() (tea.Model, tea.Cmd) {
	ev, ok := m.history.Back()
	if !ok {
		log.Debug(log.CatHistory, "back at first entry")
		return m, nil
	}
	return m.navigate(ev)
}

func (m Model) openPrompt() (tea.Model, tea.Cmd) {
	m.prompt = modal.New(modal.Config{
		Title:       "Go to location",
		Message:     "features, kanban/<feature>, artifact/<feature>/<name>, untracked or constitution",
		Placeholder: "#kanban/001-feature",
		Value:       m.history.Location(),
		Width:       60,
	}).SetSize(m.width, m.height)
	m.overlay = overlayPrompt
	return m, m.prompt.Init()
}

func (m Model) openTask(ref api.TaskRef) (tea.Model, tea.Cmd) {
	m.task = taskmodal.New(m.keys, m.style, ref).SetSize(m.width, m.height)
	m.overlay = overlayTask
	log.Debug(log.CatUI, "open task", "feature", ref.FeatureID, "lane", ref.Lane, "task", ref.TaskID)
	return m, m.task.Init()
}

func (m Model) copy(text string) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if err := m.clipboard.Copy(text); err != nil {
		log.ErrorErr(log.CatClipboard, "copy failed", err)
		m.toaster, cmd = m.toaster.Show("Failed to copy: "+err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}
	m.toaster, cmd = m.toaster.Show("Command copied to clipboard", toaster.StyleSuccess, toaster.DefaultDuration)
	return m, cmd
}

// refresh reloads the active view, the feature list and the untracked badge.
func (m Model) refresh() (tea.Model, tea.Cmd) {
	log.Debug(log.CatUI, "refresh", "location", m.current.Location())
	var cmd tea.Cmd
	m, cmd = m.load(m.current)
	cmds := []tea.Cmd{cmd, m.fetchBadge()}
	switch m.current.Kind {
	case nav.KindUntracked, nav.KindConstitution:
		cmds = append(cmds, m.fetchFeatures(m.current))
	}
	return m, tea.Batch(cmds...)
}

// handleTick refreshes the views that poll. A tick only reaches the view
// that is active when it fires.
func (m Model) handleTick(msg poll.TickMsg) (tea.Model, tea.Cmd) {
	ok, next := m.poller.Accept(msg)
	if !ok {
		log.Debug(log.CatPoll, "stale tick dropped", "gen", msg.Gen)
		return m, nil
	}
	cmds := []tea.Cmd{next, m.fetchBadge()}
	if m.registry.Polls() {
		switch m.registry.Active() {
		case views.Features:
			cmds = append(cmds, m.fetchFeatures(m.current))
		case views.Untracked:
			cmds = append(cmds, m.fetchUntracked(m.current))
		}
	}
	return m, tea.Batch(cmds...)
}

// loading reports whether the visible view waits for its data.
func (m Model) loading() bool {
	switch m.registry.Active() {
	case views.Features:
		return m.features.Loading()
	case views.Kanban:
		return m.board.Loading()
	case views.Artifact:
		return m.artifact.Loading()
	case views.Untracked:
		return m.untracked.Loading()
	case views.Constitution:
		return m.constitution.Loading()
	}
	return false
}
