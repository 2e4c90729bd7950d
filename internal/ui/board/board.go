// Package board renders a feature's kanban board and its walkthrough
// documents.
package board

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/ui/docview"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// OpenTaskMsg asks for the task modal of Ref.
type OpenTaskMsg struct {
	Ref api.TaskRef
}

// LoadWalkthroughMsg asks for a walkthrough document to be fetched.
type LoadWalkthroughMsg struct {
	FeatureID string
	File      string
}

// Tab is a sub-view of the board.
type Tab int

const (
	TabBoard Tab = iota
	TabWalkthroughs
)

var phaseTitles = map[string]string{
	api.LanePlanned:   "📋 Pending",
	api.LaneDoing:     "⏳ In Progress",
	api.LaneForReview: "👀 Review",
	api.LaneDone:      "✅ Completed",
}

const (
	walkListWidth = 28
	headerHeight  = 3
)

// Model is the board of one feature.
type Model struct {
	keys    keys.KeyMap
	strings api.Strings
	style   string

	featureID string
	feature   api.Feature
	notFound  bool

	board   api.Board
	loaded  bool
	loading bool
	err     error

	lanes   []Lane
	focused int

	tab         Tab
	walkCursor  int
	walkLoaded  string
	walkthrough docview.Model

	width  int
	height int
}

// New returns an empty board. style is the Markdown style of walkthroughs.
func New(km keys.KeyMap, style string) Model {
	return Model{
		keys:        km,
		strings:     api.DefaultStrings(),
		style:       style,
		walkthrough: docview.New(style),
	}
}

// Reset points the board at a feature and clears what was shown for the
// previous one. Resetting to the same feature only marks a fetch in flight.
func (m Model) Reset(featureID string) Model {
	if featureID == m.featureID {
		m.loading = true
		return m
	}
	n := New(m.keys, m.style)
	n.strings = m.strings
	n.featureID = featureID
	n.loading = true
	return n.SetSize(m.width, m.height)
}

// FeatureID returns the feature shown.
func (m Model) FeatureID() string { return m.featureID }

// Loaded reports whether a board has been received.
func (m Model) Loaded() bool { return m.loaded }

// Loading reports whether a board fetch is in flight.
func (m Model) Loading() bool { return m.loading }

// SetStrings sets the UI string bundle.
func (m Model) SetStrings(s api.Strings) Model {
	m.strings = s
	if m.loaded {
		m = m.SetBoard(m.board)
	}
	return m
}

// SetFeature records the feature's listing. ok is false when the service no
// longer lists it.
func (m Model) SetFeature(f api.Feature, ok bool) Model {
	m.feature = f
	m.notFound = !ok
	if n := len(f.Walkthroughs()); m.walkCursor >= n {
		m.walkCursor = max(n-1, 0)
	}
	return m
}

// NotFound reports whether the feature is missing from the service.
func (m Model) NotFound() bool { return m.notFound }

// SetError records a failed board fetch.
func (m Model) SetError(err error) Model {
	m.err = err
	m.loading = false
	return m
}

// SetBoard shows a fetched board, keeping focus and selection.
func (m Model) SetBoard(b api.Board) Model {
	m.board = b
	m.loaded, m.loading, m.err = true, false, nil

	phases := b.IsPhaseMode && len(b.Phases) > 0
	byPhase := b.PhaseLanes()
	old := m.lanes
	m.lanes = make([]Lane, 0, len(api.Lanes()))
	for i, name := range api.Lanes() {
		title := m.strings.Lane(name)
		if phases {
			title = phaseTitles[name]
		}
		var lane Lane
		if i < len(old) && old[i].phases == phases {
			lane = old[i]
			lane.title = title
		} else {
			lane = newLane(name, title, phases)
		}

		var cards []card
		if phases {
			for _, p := range byPhase[name] {
				cards = append(cards, card{ID: p.ID, Title: p.Title, Detail: "Progress: " + p.Progress, Lane: name})
			}
		} else {
			for _, t := range b.Lanes[name] {
				cards = append(cards, card{ID: t.ID, Title: t.Title, Lane: name})
			}
		}
		m.lanes = append(m.lanes, lane.setCards(cards))
	}
	if len(old) == 0 {
		m.focused = 0
		for i, l := range m.lanes {
			if l.Len() > 0 {
				m.focused = i
				break
			}
		}
	}
	return m.layout()
}

// Lanes returns the lanes in display order.
func (m Model) Lanes() []Lane { return m.lanes }

// Focused returns the index of the focused lane.
func (m Model) Focused() int { return m.focused }

// Selected returns the task under the cursor of the focused lane.
func (m Model) Selected() (api.TaskRef, bool) {
	if m.focused < 0 || m.focused >= len(m.lanes) {
		return api.TaskRef{}, false
	}
	c, ok := m.lanes[m.focused].selected()
	if !ok {
		return api.TaskRef{}, false
	}
	return api.TaskRef{FeatureID: m.featureID, Lane: c.Lane, TaskID: c.ID}, true
}

// Select moves focus to the lane and card of ref.
func (m Model) Select(ref api.TaskRef) Model {
	for i, l := range m.lanes {
		if l.name != ref.Lane {
			continue
		}
		if lane, ok := l.selectID(ref.TaskID); ok {
			m.lanes[i] = lane
			m.focused = i
		}
	}
	return m.layout()
}

// Tab returns the active sub-view.
func (m Model) Tab() Tab { return m.tab }

// Walkthroughs lists the feature's walkthrough files in display order.
func (m Model) Walkthroughs() []string { return m.feature.Walkthroughs() }

// SelectedWalkthrough returns the walkthrough under the cursor.
func (m Model) SelectedWalkthrough() (string, bool) {
	files := m.Walkthroughs()
	if m.walkCursor < 0 || m.walkCursor >= len(files) {
		return "", false
	}
	return files[m.walkCursor], true
}

// SetWalkthroughLoading marks a walkthrough fetch in flight.
func (m Model) SetWalkthroughLoading(file string) Model {
	m.walkLoaded = file
	m.walkthrough = m.walkthrough.SetLoading(api.WalkthroughTitle(file))
	return m
}

// SetWalkthrough shows a fetched walkthrough. Documents other than the last
// one requested are dropped.
func (m Model) SetWalkthrough(file, source string) Model {
	if file != m.walkLoaded {
		return m
	}
	m.walkthrough = m.walkthrough.SetDocument(api.WalkthroughTitle(file), source)
	return m
}

// SetWalkthroughError records a failed walkthrough fetch.
func (m Model) SetWalkthroughError(file string, err error) Model {
	if file != m.walkLoaded {
		return m
	}
	m.walkthrough = m.walkthrough.SetError(api.WalkthroughTitle(file), "Failed to load walkthrough: "+err.Error())
	return m
}

// Walkthrough returns the walkthrough pane.
func (m Model) Walkthrough() docview.Model { return m.walkthrough }

// SetSize updates the render area.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m.layout()
}

func (m Model) layout() Model {
	if m.width <= 0 || m.height <= 0 {
		return m
	}
	bodyHeight := max(m.height-headerHeight, 3)
	if n := len(m.lanes); n > 0 {
		w := m.width / n
		for i := range m.lanes {
			lw := w
			if i == n-1 {
				lw = m.width - w*(n-1)
			}
			m.lanes[i] = m.lanes[i].setSize(lw, bodyHeight).setFocused(i == m.focused)
		}
	}
	m.walkthrough = m.walkthrough.SetSize(max(m.width-walkListWidth-1, 10), bodyHeight)
	return m
}

// Update handles navigation keys and clicks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Walkthroughs) {
			return m.toggleTab()
		}
		if m.tab == TabWalkthroughs {
			return m.updateWalkthroughs(msg)
		}
		return m.updateBoard(msg)
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if z := zone.Get(subTabZone(TabBoard)); z != nil && z.InBounds(msg) && m.tab != TabBoard {
			return m.toggleTab()
		}
		if z := zone.Get(subTabZone(TabWalkthroughs)); z != nil && z.InBounds(msg) && m.tab != TabWalkthroughs {
			return m.toggleTab()
		}
		if m.tab == TabBoard {
			for _, l := range m.lanes {
				for _, c := range l.cards {
					if z := zone.Get(cardZone(l.name, c.ID)); z != nil && z.InBounds(msg) {
						ref := api.TaskRef{FeatureID: m.featureID, Lane: c.Lane, TaskID: c.ID}
						return m.Select(ref), openTask(ref)
					}
				}
			}
		}
	}
	return m, nil
}

func (m Model) updateBoard(msg tea.KeyMsg) (Model, tea.Cmd) {
	if len(m.lanes) == 0 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.focused > 0 {
			m.focused--
		}
	case key.Matches(msg, m.keys.Right):
		if m.focused < len(m.lanes)-1 {
			m.focused++
		}
	case key.Matches(msg, m.keys.Up):
		m.lanes[m.focused] = m.lanes[m.focused].up()
	case key.Matches(msg, m.keys.Down):
		m.lanes[m.focused] = m.lanes[m.focused].down()
	case key.Matches(msg, m.keys.Enter):
		if ref, ok := m.Selected(); ok {
			return m, openTask(ref)
		}
	}
	return m.layout(), nil
}

func (m Model) updateWalkthroughs(msg tea.KeyMsg) (Model, tea.Cmd) {
	files := m.Walkthroughs()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.walkCursor > 0 {
			m.walkCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.walkCursor < len(files)-1 {
			m.walkCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if file, ok := m.SelectedWalkthrough(); ok {
			return m, m.loadWalkthrough(file)
		}
	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.walkthrough, cmd = m.walkthrough.Update(msg)
		return m, cmd
	}
	return m, nil
}

// toggleTab switches sub-views. Opening the walkthroughs for the first time
// loads the first one.
func (m Model) toggleTab() (Model, tea.Cmd) {
	if m.tab == TabWalkthroughs {
		m.tab = TabBoard
		return m, nil
	}
	m.tab = TabWalkthroughs
	if m.walkLoaded == "" {
		if file, ok := m.SelectedWalkthrough(); ok {
			return m, m.loadWalkthrough(file)
		}
	}
	return m, nil
}

func (m Model) loadWalkthrough(file string) tea.Cmd {
	id := m.featureID
	return func() tea.Msg { return LoadWalkthroughMsg{FeatureID: id, File: file} }
}

func openTask(ref api.TaskRef) tea.Cmd {
	return func() tea.Msg { return OpenTaskMsg{Ref: ref} }
}

func subTabZone(t Tab) string { return fmt.Sprintf("board:tab:%d", t) }

// View renders the header, sub-tabs and the active sub-view.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(m.strings.Kanban+": "+m.featureID) + "\n")
	b.WriteString(m.subTabs() + "\n\n")

	switch {
	case m.notFound:
		b.WriteString(styles.EmptyStyle.Render("Feature not found: " + m.featureID))
	case m.tab == TabWalkthroughs:
		b.WriteString(m.walkthroughView())
	case m.err != nil && !m.loaded:
		b.WriteString(styles.ErrorStyle.Render("Failed to load board: " + m.err.Error()))
	case !m.loaded:
		b.WriteString(styles.EmptyStyle.Render("Loading..."))
	default:
		b.WriteString(m.boardView())
	}
	return b.String()
}

func (m Model) subTabs() string {
	board, walk := styles.TabStyle, styles.TabStyle
	if m.tab == TabBoard {
		board = styles.ActiveTabStyle
	} else {
		walk = styles.ActiveTabStyle
	}
	label := "Walkthroughs"
	if n := len(m.Walkthroughs()); n > 0 {
		label += " " + styles.CountBadgeStyle.Background(styles.AccentColor).Render(fmt.Sprint(n))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top,
		zone.Mark(subTabZone(TabBoard), board.Render("Board")),
		zone.Mark(subTabZone(TabWalkthroughs), walk.Render(label)),
	)
}

func (m Model) boardView() string {
	empty := "No tasks"
	if m.board.IsPhaseMode {
		empty = "No phases"
	}
	cols := make([]string, len(m.lanes))
	for i, l := range m.lanes {
		cols[i] = l.view(empty)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) walkthroughView() string {
	files := m.Walkthroughs()
	if len(files) == 0 {
		return styles.EmptyStyle.Render("No walkthroughs available for this feature")
	}
	lines := make([]string, len(files))
	for i, f := range files {
		title := styles.TruncateString(api.WalkthroughTitle(f), walkListWidth-4)
		if i == m.walkCursor {
			lines[i] = styles.SelectionIndicatorStyle.Render(">") + " " + styles.TitleStyle.Render(title)
		} else {
			lines[i] = "  " + title
		}
	}
	list := styles.Panel(strings.Join(lines, "\n"), "Walkthroughs", walkListWidth, max(m.height-headerHeight, 3), true)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, " ", m.walkthrough.View())
}
