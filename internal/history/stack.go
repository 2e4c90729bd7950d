// Package history models the browser-style history the dashboard navigates:
// an ordered list of entries, each with an optional structured state and a
// location, plus a cursor for back and forward.
package history

import (
	"github.com/zjrosen/specboard/internal/log"
	"github.com/zjrosen/specboard/internal/nav"
)

// Entry is a single history entry. State is nil for entries created from a
// bare location (the initial document or a hand-edited address).
type Entry struct {
	State    *nav.ViewState
	Location string
}

// Stack holds the entries and the index of the current one.
// It is not safe for concurrent use; the update loop owns it.
type Stack struct {
	entries []Entry
	index   int
}

// New returns a stack with a single stateless entry at location.
func New(location string) *Stack {
	return &Stack{entries: []Entry{{Location: location}}}
}

// Current returns the current entry.
func (s *Stack) Current() Entry {
	return s.entries[s.index]
}

// Location returns the current entry's location.
func (s *Stack) Location() string {
	return s.entries[s.index].Location
}

// Len returns the number of entries.
func (s *Stack) Len() int { return len(s.entries) }

// Index returns the position of the current entry.
func (s *Stack) Index() int { return s.index }

// Entries returns a copy of all entries, oldest first.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Push drops any forward entries and appends state as the new current entry.
func (s *Stack) Push(state nav.ViewState) {
	s.entries = append(s.entries[:s.index+1], entryFor(state))
	s.index = len(s.entries) - 1
	log.Debug(log.CatHistory, "push", "location", state.Location(), "len", len(s.entries))
}

// Replace rewrites the current entry.
func (s *Stack) Replace(state nav.ViewState) {
	s.entries[s.index] = entryFor(state)
	log.Debug(log.CatHistory, "replace", "location", state.Location(), "index", s.index)
}

// PushLocation appends a stateless entry, the way editing the address bar
// does. It returns the pop event the edit delivers.
func (s *Stack) PushLocation(location string) nav.Popped {
	s.entries = append(s.entries[:s.index+1], Entry{Location: location})
	s.index = len(s.entries) - 1
	log.Debug(log.CatHistory, "push location", "location", location)
	return nav.Popped{Location: location}
}

// Back moves to the previous entry and returns its pop event.
// It reports false at the first entry.
func (s *Stack) Back() (nav.Popped, bool) {
	if s.index == 0 {
		return nav.Popped{}, false
	}
	s.index--
	return s.popped(), true
}

// Forward moves to the next entry and returns its pop event.
// It reports false at the last entry.
func (s *Stack) Forward() (nav.Popped, bool) {
	if s.index >= len(s.entries)-1 {
		return nav.Popped{}, false
	}
	s.index++
	return s.popped(), true
}

func (s *Stack) popped() nav.Popped {
	e := s.entries[s.index]
	ev := nav.Popped{Location: e.Location}
	if e.State != nil {
		st := *e.State
		ev.State = &st
	}
	return ev
}

// Snapshot exposes the current entry and the states behind it. Entries
// without structured state enter the trail as their parsed location.
func (s *Stack) Snapshot() nav.Snapshot {
	cur := s.entries[s.index]
	snap := nav.Snapshot{Location: cur.Location}
	if cur.State != nil {
		st := *cur.State
		snap.Current = &st
	}
	for _, e := range s.entries[:s.index+1] {
		snap.Trail = append(snap.Trail, e.resolve())
	}
	return snap
}

// Apply performs the history operation of a decision.
func (s *Stack) Apply(d nav.Decision) {
	switch d.Op {
	case nav.OpPush:
		s.Push(d.State)
	case nav.OpReplace:
		s.Replace(d.State)
	}
}

// resolve returns the entry's state, parsing the location when it has none.
func (e Entry) resolve() nav.ViewState {
	if e.State != nil {
		return *e.State
	}
	return nav.Parse(e.Location)
}

func entryFor(state nav.ViewState) Entry {
	st := state
	return Entry{State: &st, Location: state.Location()}
}
