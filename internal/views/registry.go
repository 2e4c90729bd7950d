// Package views tracks which dashboard view is on screen and which tab is
// highlighted. Exactly one view is visible at any time.
package views

import "github.com/zjrosen/specboard/internal/nav"

// ID names a view.
type ID int

const (
	Features ID = iota
	Kanban
	Artifact
	Untracked
	Constitution
	count
)

func (id ID) String() string {
	switch id {
	case Features:
		return "features"
	case Kanban:
		return "kanban"
	case Artifact:
		return "artifact"
	case Untracked:
		return "untracked"
	case Constitution:
		return "constitution"
	default:
		return "unknown"
	}
}

// All lists every view.
func All() []ID {
	return []ID{Features, Kanban, Artifact, Untracked, Constitution}
}

// ForState returns the view that renders a state.
func ForState(s nav.ViewState) ID {
	switch s.Kind {
	case nav.KindKanban:
		return Kanban
	case nav.KindArtifact:
		return Artifact
	case nav.KindUntracked:
		return Untracked
	case nav.KindConstitution:
		return Constitution
	default:
		return Features
	}
}

// Registry holds view visibility and the active tab. The zero value shows
// the feature list.
type Registry struct {
	hidden [count]bool
	active ID
	tab    nav.Tab
	shown  bool
}

// Show makes the view for state the only visible one and highlights its tab.
// Every other view is hidden whether or not it was visible before.
func (r *Registry) Show(state nav.ViewState) ID {
	id := ForState(state)
	for i := range r.hidden {
		r.hidden[i] = ID(i) != id
	}
	r.active = id
	r.tab = nav.TabOf(state)
	r.shown = true
	return id
}

// Visible reports whether a view is on screen.
func (r *Registry) Visible(id ID) bool {
	if id < 0 || id >= count {
		return false
	}
	if !r.shown {
		return id == Features
	}
	return !r.hidden[id]
}

// Active returns the visible view.
func (r *Registry) Active() ID { return r.active }

// ActiveTab returns the highlighted tab.
func (r *Registry) ActiveTab() nav.Tab { return r.tab }

// VisibleCount returns how many views are on screen.
func (r *Registry) VisibleCount() int {
	n := 0
	for _, id := range All() {
		if r.Visible(id) {
			n++
		}
	}
	return n
}

// Polls reports whether the active view refreshes on each poll tick.
func (r *Registry) Polls() bool {
	return r.active == Features || r.active == Untracked
}
