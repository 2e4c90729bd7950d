// Package taskmodal shows one task: its details and dependencies, the
// commits that mention it and its review history.
package taskmodal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/specboard/internal/api"
	"github.com/zjrosen/specboard/internal/keys"
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/shared"
	"github.com/zjrosen/specboard/internal/ui/diffview"
	"github.com/zjrosen/specboard/internal/ui/markdown"
	"github.com/zjrosen/specboard/internal/ui/modal"
	"github.com/zjrosen/specboard/internal/ui/overlay"
	"github.com/zjrosen/specboard/internal/ui/styles"
)

// Tab is a section of the modal.
type Tab int

const (
	TabDetails Tab = iota
	TabCommits
	TabReviews
)

func (t Tab) String() string {
	switch t {
	case TabCommits:
		return "Commits"
	case TabReviews:
		return "Reviews"
	default:
		return "Details"
	}
}

// LoadDetailMsg asks for the task itself.
type LoadDetailMsg struct{ Ref api.TaskRef }

// LoadCommitsMsg asks for the task's commits.
type LoadCommitsMsg struct{ Ref api.TaskRef }

// LoadFilesMsg asks for the files changed by the task's commits.
type LoadFilesMsg struct{ Ref api.TaskRef }

// LoadDiffMsg asks for the diff of one of the task's commits.
type LoadDiffMsg struct {
	Ref api.TaskRef
	SHA string
}

// LoadReviewsMsg asks for the review history.
type LoadReviewsMsg struct{ Ref api.TaskRef }

// OpenMsg asks for the modal to be reopened on a dependency.
type OpenMsg struct{ Ref api.TaskRef }

// CloseMsg is sent when the modal closes itself.
type CloseMsg struct{}

type status int

const (
	idle status = iota
	loading
	ready
	failed
)

type resource[T any] struct {
	status status
	value  T
	err    error
}

func (r resource[T]) requested() bool { return r.status != idle }

func (r resource[T]) set(v T, err error) resource[T] {
	if err != nil {
		return resource[T]{status: failed, err: err}
	}
	return resource[T]{status: ready, value: v}
}

// Model is the modal state.
type Model struct {
	keys  keys.KeyMap
	style string
	ref   api.TaskRef
	tab   Tab

	detail  resource[api.TaskDetail]
	commits resource[[]api.Commit]
	files   resource[[]api.FileChange]
	reviews resource[[]api.Review]
	diffs   map[string]resource[string]

	depCursor    int
	commitCursor int
	expanded     map[string]bool

	renderer *markdown.Renderer
	view     viewport.Model
	width    int
	height   int
}

// New opens the modal on ref with the details tab active.
func New(km keys.KeyMap, style string, ref api.TaskRef) Model {
	return Model{
		keys:     km,
		style:    style,
		ref:      ref,
		diffs:    map[string]resource[string]{},
		expanded: map[string]bool{},
		view:     viewport.New(0, 0),
	}
}

// Init requests the task details.
func (m Model) Init() tea.Cmd {
	ref := m.ref
	return func() tea.Msg { return LoadDetailMsg{Ref: ref} }
}

// Ref returns the task shown.
func (m Model) Ref() api.TaskRef { return m.ref }

// Tab returns the active tab.
func (m Model) Tab() Tab { return m.tab }

// SetSize records the screen size.
func (m Model) SetSize(width, height int) Model {
	m.width, m.height = width, height
	return m.refresh()
}

// SetDetailLoading marks the details fetch in flight.
func (m Model) SetDetailLoading() Model {
	m.detail.status = loading
	return m.refresh()
}

// SetDetail stores the task details. Results for another task are ignored.
func (m Model) SetDetail(ref api.TaskRef, d api.TaskDetail, err error) Model {
	if ref != m.ref {
		return m
	}
	m.detail = m.detail.set(d, err)
	m.depCursor = 0
	return m.refresh()
}

// SetCommits stores the task's commits.
func (m Model) SetCommits(ref api.TaskRef, cs []api.Commit, err error) Model {
	if ref != m.ref {
		return m
	}
	m.commits = m.commits.set(cs, err)
	return m.refresh()
}

// SetFiles stores the files changed by the task's commits.
func (m Model) SetFiles(ref api.TaskRef, fs []api.FileChange, err error) Model {
	if ref != m.ref {
		return m
	}
	m.files = m.files.set(fs, err)
	return m.refresh()
}

// SetDiff stores a commit diff.
func (m Model) SetDiff(ref api.TaskRef, sha, text string, err error) Model {
	if ref != m.ref {
		return m
	}
	m.diffs = cloneMap(m.diffs)
	m.diffs[sha] = m.diffs[sha].set(text, err)
	return m.refresh()
}

// SetReviews stores the review history.
func (m Model) SetReviews(ref api.TaskRef, rs []api.Review, err error) Model {
	if ref != m.ref {
		return m
	}
	m.reviews = m.reviews.set(rs, err)
	return m.refresh()
}

func cloneMap[V any](in map[string]V) map[string]V {
	out := make(map[string]V, len(in)+1)
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Update handles keys while the modal is open.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Back):
			return m, func() tea.Msg { return CloseMsg{} }
		case key.Matches(msg, m.keys.NextTab):
			return m.selectTab((m.tab + 1) % 3)
		case key.Matches(msg, m.keys.PrevTab):
			return m.selectTab((m.tab + 2) % 3)
		case key.Matches(msg, m.keys.PageDown):
			m.view.HalfPageDown()
			return m, nil
		case key.Matches(msg, m.keys.PageUp):
			m.view.HalfPageUp()
			return m, nil
		}
		switch m.tab {
		case TabDetails:
			return m.updateDetails(msg)
		case TabCommits:
			return m.updateCommits(msg)
		default:
			return m.scroll(msg), nil
		}
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionRelease || msg.Button != tea.MouseButtonLeft {
			var cmd tea.Cmd
			m.view, cmd = m.view.Update(msg)
			return m, cmd
		}
		for _, t := range []Tab{TabDetails, TabCommits, TabReviews} {
			if z := zone.Get(tabZone(t)); z != nil && z.InBounds(msg) {
				return m.selectTab(t)
			}
		}
	}
	return m, nil
}

func (m Model) scroll(msg tea.KeyMsg) Model {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.view.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.view.ScrollUp(1)
	}
	return m
}

// selectTab switches tabs, requesting commits or reviews on first access.
func (m Model) selectTab(t Tab) (Model, tea.Cmd) {
	m.tab = t
	m.view.GotoTop()
	ref := m.ref
	var cmd tea.Cmd
	switch t {
	case TabCommits:
		if !m.commits.requested() {
			m.commits.status = loading
			cmd = func() tea.Msg { return LoadCommitsMsg{Ref: ref} }
		}
	case TabReviews:
		if !m.reviews.requested() {
			m.reviews.status = loading
			cmd = func() tea.Msg { return LoadReviewsMsg{Ref: ref} }
		}
	}
	log.Debug(log.CatUI, "task modal tab", "task", m.ref.TaskID, "tab", t)
	return m.refresh(), cmd
}

func (m Model) dependencies() []api.Dependency {
	if m.detail.status != ready {
		return nil
	}
	return m.detail.value.Dependencies
}

func (m Model) updateDetails(msg tea.KeyMsg) (Model, tea.Cmd) {
	deps := m.dependencies()
	switch {
	case key.Matches(msg, m.keys.Left):
		if m.depCursor > 0 {
			m.depCursor--
		}
	case key.Matches(msg, m.keys.Right):
		if m.depCursor < len(deps)-1 {
			m.depCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.depCursor < len(deps) {
			ref := DependencyRef(m.ref.FeatureID, deps[m.depCursor])
			return m, func() tea.Msg { return OpenMsg{Ref: ref} }
		}
		return m, nil
	default:
		return m.scroll(msg), nil
	}
	return m.refresh(), nil
}

// DependencyRef addresses a dependency. An id of the form "feature/task"
// points into another feature.
func DependencyRef(featureID string, d api.Dependency) api.TaskRef {
	ref := api.TaskRef{FeatureID: featureID, Lane: d.Lane, TaskID: d.ID}
	if f, t, ok := strings.Cut(d.ID, "/"); ok && f != "" && t != "" {
		ref.FeatureID, ref.TaskID = f, t
	}
	return ref
}

func (m Model) updateCommits(msg tea.KeyMsg) (Model, tea.Cmd) {
	cs := m.commits.value
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.commitCursor > 0 {
			m.commitCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.commitCursor < len(cs)-1 {
			m.commitCursor++
		}
	case key.Matches(msg, m.keys.Enter):
		if m.commitCursor < len(cs) {
			return m.toggleCommit(cs[m.commitCursor].SHA)
		}
		return m, nil
	default:
		return m, nil
	}
	return m.refresh(), nil
}

// toggleCommit expands or collapses a commit. The first expansion loads
// the task's files and the commit's diff; later ones reuse them.
func (m Model) toggleCommit(sha string) (Model, tea.Cmd) {
	m.expanded = cloneMap(m.expanded)
	m.expanded[sha] = !m.expanded[sha]
	if !m.expanded[sha] {
		return m.refresh(), nil
	}

	ref := m.ref
	var cmds []tea.Cmd
	if !m.files.requested() {
		m.files.status = loading
		cmds = append(cmds, func() tea.Msg { return LoadFilesMsg{Ref: ref} })
	}
	if !m.diffs[sha].requested() {
		m.diffs = cloneMap(m.diffs)
		m.diffs[sha] = resource[string]{status: loading}
		cmds = append(cmds, func() tea.Msg { return LoadDiffMsg{Ref: ref, SHA: sha} })
	}
	return m.refresh(), tea.Batch(cmds...)
}

// Expanded reports whether a commit is expanded.
func (m Model) Expanded(sha string) bool { return m.expanded[sha] }

func (m Model) boxWidth() int {
	return max(min(m.width-8, 120), 50)
}

func (m Model) bodyWidth() int { return m.boxWidth() - 4 }

func (m Model) refresh() Model {
	w := m.bodyWidth()
	m.view.Width = w
	m.view.Height = max(m.height-12, 5)
	if m.renderer == nil || m.renderer.Width() != w {
		r, err := markdown.New(w, m.style)
		if err != nil {
			log.ErrorErr(log.CatUI, "markdown renderer", err)
		}
		m.renderer = r
	}

	offset := m.view.YOffset
	switch m.tab {
	case TabCommits:
		m.view.SetContent(m.commitsBody(w))
	case TabReviews:
		m.view.SetContent(m.reviewsBody(w))
	default:
		m.view.SetContent(m.detailsBody())
	}
	m.view.SetYOffset(offset)
	return m
}

func emptyState(text, hint string) string {
	out := styles.MutedStyle.Render(text)
	if hint != "" {
		out += "\n" + styles.HintStyle.Render(hint)
	}
	return out
}

func errorText(text string) string {
	return styles.ErrorStyle.UnsetPadding().Render(text)
}

func heading(text string) string {
	return styles.TitleStyle.Render(text)
}

func (m Model) detailsBody() string {
	switch m.detail.status {
	case failed:
		return errorText("Failed to load task details")
	case ready:
	default:
		return styles.MutedStyle.Render("Loading task details...")
	}

	var b strings.Builder
	if deps := m.detail.value.Dependencies; len(deps) > 0 {
		b.WriteString(heading("📦 Dependencies") + "\n")
		badges := make([]string, len(deps))
		for i, d := range deps {
			st := styles.BadgeStyle
			if i == m.depCursor {
				st = styles.ActiveBadgeStyle
			}
			badges[i] = st.Render(d.ID)
		}
		b.WriteString(strings.Join(badges, " ") + "\n")
		b.WriteString(styles.HintStyle.Render("h/l select • enter open") + "\n\n")
	}
	b.WriteString(m.renderer.RenderOrRaw(m.detail.value.Content))
	return b.String()
}

func (m Model) commitsBody(width int) string {
	switch m.commits.status {
	case failed:
		return errorText("Failed to load git commits")
	case ready:
	default:
		return styles.MutedStyle.Render("Loading commits...")
	}
	cs := m.commits.value
	if len(cs) == 0 {
		return emptyState("No git commits found for this task",
			fmt.Sprintf("Commits must include [%s] in the message", m.ref.TaskID))
	}

	var blocks []string
	for i, c := range cs {
		var b strings.Builder
		marker := "  "
		if i == m.commitCursor {
			marker = styles.SelectionIndicatorStyle.Render("> ")
		}
		short := c.ShortSHA
		if short == "" {
			short = api.ShortSHA(c.SHA)
		}
		ts, ok := c.Time()
		b.WriteString(marker +
			lipgloss.NewStyle().Foreground(styles.AccentColor).Bold(true).Render(short) + " " +
			styles.MutedStyle.Render(c.Author+" • "+shared.FormatDate(ts, ok, c.Date)) + "\n")
		b.WriteString(indent(wordwrap.String(c.Message, width-2), "  "))

		if m.expanded[c.SHA] {
			b.WriteString("\n\n" + indent(m.filesFor(c.SHA), "  "))
			b.WriteString("\n\n" + indent(m.diffFor(c.SHA, width-2), "  "))
		}
		blocks = append(blocks, b.String())
	}
	hint := styles.HintStyle.Render("j/k select • enter files and diff")
	return hint + "\n\n" + strings.Join(blocks, "\n\n")
}

func (m Model) filesFor(sha string) string {
	switch m.files.status {
	case failed:
		return errorText("Failed to load files")
	case ready:
	default:
		return styles.MutedStyle.Render("Loading files...")
	}
	var lines []string
	for _, f := range m.files.value {
		if !matchesCommit(f, sha) {
			continue
		}
		action := lipgloss.NewStyle().Foreground(actionColor(f.Action)).Render(fmt.Sprintf("%-8s", f.ActionLabel()))
		lines = append(lines, action+" "+f.Path)
	}
	if len(lines) == 0 {
		return styles.MutedStyle.Render("No files found")
	}
	return heading("Files") + "\n" + strings.Join(lines, "\n")
}

// matchesCommit reports whether f belongs to the commit sha. The service
// reports the short sha, the full one, or both.
func matchesCommit(f api.FileChange, sha string) bool {
	switch {
	case f.CommitSHA != "":
		return f.CommitSHA == sha
	case f.Commit != "":
		return strings.HasPrefix(sha, f.Commit)
	default:
		return true
	}
}

func actionColor(action string) lipgloss.TerminalColor {
	switch action {
	case "A":
		return styles.DiffAddedColor
	case "M":
		return styles.StatusWarningColor
	default:
		return styles.DiffRemovedColor
	}
}

func (m Model) diffFor(sha string, width int) string {
	d := m.diffs[sha]
	switch d.status {
	case failed:
		return errorText("Failed to load diff")
	case ready:
		return diffview.Render(d.value, width)
	default:
		return styles.MutedStyle.Render("Loading diff...")
	}
}

func (m Model) reviewsBody(width int) string {
	switch m.reviews.status {
	case failed:
		return errorText("Failed to load review history")
	case ready:
	default:
		return styles.MutedStyle.Render("Loading review history...")
	}
	rs := m.reviews.value
	if len(rs) == 0 {
		return emptyState("No reviews found for this task",
			"Reviews appear here when tasks are reviewed with /spec-mix.review")
	}

	blocks := make([]string, 0, len(rs))
	for _, r := range rs {
		var b strings.Builder
		decision := lipgloss.NewStyle().Bold(true).Foreground(styles.StatusWarningColor).Render("🔄 CHANGES REQUESTED")
		if r.Approved() {
			decision = lipgloss.NewStyle().Bold(true).Foreground(styles.StatusSuccessColor).Render("✅ APPROVED")
		}
		ts, ok := r.Time()
		b.WriteString(decision + " " + styles.MutedStyle.Render("by "+r.Reviewer+" • "+shared.FormatDate(ts, ok, r.Timestamp)))
		b.WriteString(bullets("Issues", r.Issues, width))
		b.WriteString(bullets("Positives", r.Positives, width))
		b.WriteString(bullets("Notes", r.Notes, width))
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func bullets(title string, items []string, width int) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n" + heading(title))
	for _, it := range items {
		b.WriteString("\n" + indent(wordwrap.String("• "+it, width-2), "  "))
	}
	return b.String()
}

func indent(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

func tabZone(t Tab) string { return "taskmodal:" + t.String() }

func (m Model) title() string {
	if m.detail.status == ready {
		return m.detail.value.ID + ": " + m.detail.value.Title
	}
	return m.ref.TaskID
}

func (m Model) tabs() string {
	parts := make([]string, 0, 3)
	for _, t := range []Tab{TabDetails, TabCommits, TabReviews} {
		label := t.String()
		switch {
		case t == TabCommits && m.commits.status == ready:
			label += fmt.Sprintf(" (%d)", len(m.commits.value))
		case t == TabReviews && m.reviews.status == ready:
			label += fmt.Sprintf(" (%d)", len(m.reviews.value))
		}
		st := styles.TabStyle
		if t == m.tab {
			st = styles.ActiveTabStyle
		}
		parts = append(parts, zone.Mark(tabZone(t), st.Render(label)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// View renders the box.
func (m Model) View() string {
	body := m.tabs() + "\n\n" + m.view.View() + "\n\n" +
		styles.HintStyle.Render("tab switch • ctrl+d/ctrl+u scroll • esc close")
	return modal.Frame(m.title(), body, m.boxWidth())
}

// Overlay draws the modal centered over bg.
func (m Model) Overlay(bg string) string {
	return overlay.Place(overlay.Config{Width: m.width, Height: m.height, Position: overlay.Center}, m.View(), bg)
}
