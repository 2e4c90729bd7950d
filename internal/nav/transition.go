package nav

// Op is the history operation a transition asks for.
type Op int

const (
	OpNone Op = iota
	OpPush
	OpReplace
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpReplace:
		return "replace"
	default:
		return "none"
	}
}

// Snapshot is the part of the history a transition may consult.
type Snapshot struct {
	// Current is the structured state of the current entry, nil when the
	// entry carries none (first load, hand-edited location).
	Current *ViewState
	// Location is the serialized location of the current entry.
	Location string
	// Trail holds the states at or before the current entry, oldest first.
	// Entries without structured state appear as their parsed location.
	Trail []ViewState
}

// State is the current entry's structured state, or its parsed location
// when it has none.
func (s Snapshot) State() ViewState {
	if s.Current != nil {
		return *s.Current
	}
	return Parse(s.Location)
}

// Event is a navigation trigger.
type Event interface {
	navEvent()
}

// TabSelected is a click or key press on a top-level tab.
type TabSelected struct {
	Tab Tab
}

// Opened is a user-intentional navigation, such as opening a feature card
// or an artifact badge.
type Opened struct {
	State ViewState
}

// Popped is a back/forward delivery. State is the entry's structured
// state; when absent the location is parsed instead.
type Popped struct {
	State    *ViewState
	Location string
}

// Loaded is the initial load reading the location already present.
type Loaded struct{}

func (TabSelected) navEvent() {}
func (Opened) navEvent()      {}
func (Popped) navEvent()      {}
func (Loaded) navEvent()      {}

// Decision is the outcome of a transition.
type Decision struct {
	State ViewState
	Op    Op
	// Restore is set when the state came from history rather than from a
	// fresh choice by the user.
	Restore bool
}

// Transition decides the target view and history operation for an event.
// It has no side effects.
func Transition(snap Snapshot, ev Event) Decision {
	switch ev := ev.(type) {
	case TabSelected:
		return selectTab(snap, ev.Tab)
	case Opened:
		return Decision{State: ev.State, Op: OpPush}
	case Popped:
		state := Parse(ev.Location)
		if ev.State != nil {
			state = *ev.State
		}
		return Decision{State: state, Op: OpNone, Restore: true}
	case Loaded:
		d := Decision{State: Parse(snap.Location), Op: OpNone, Restore: true}
		if snap.Current == nil {
			d.Op = OpReplace
		}
		return d
	}

	if snap.Current != nil {
		return Decision{State: *snap.Current}
	}
	return Decision{State: Parse(snap.Location)}
}

// selectTab targets the tab's root view, except for the features tab,
// which restores the most recent kanban or artifact view found in history.
func selectTab(snap Snapshot, tab Tab) Decision {
	d := Decision{State: tab.Root(), Op: OpPush}
	if tab == TabFeatures {
		if last, ok := lastInTab(snap.Trail, TabFeatures); ok && last.Kind != KindFeatures {
			d.State = last
			d.Restore = true
		}
	}
	if snap.State() == d.State {
		d.Op = OpNone
	}
	return d
}

func lastInTab(trail []ViewState, tab Tab) (ViewState, bool) {
	for i := len(trail) - 1; i >= 0; i-- {
		if TabOf(trail[i]) == tab {
			return trail[i], true
		}
	}
	return ViewState{}, false
}
