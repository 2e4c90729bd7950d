// Package nav defines the dashboard's view states, their location encoding,
// and the transition rules that map navigation events to a target state and
// a history operation.
package nav

// Kind discriminates the variants of ViewState.
type Kind int

const (
	KindFeatures Kind = iota
	KindKanban
	KindArtifact
	KindUntracked
	KindConstitution
)

func (k Kind) String() string {
	switch k {
	case KindFeatures:
		return "features"
	case KindKanban:
		return "kanban"
	case KindArtifact:
		return "artifact"
	case KindUntracked:
		return "untracked"
	case KindConstitution:
		return "constitution"
	default:
		return "unknown"
	}
}

// ViewState identifies exactly one dashboard view and its payload.
// Values are comparable with == and never mutated after construction.
type ViewState struct {
	Kind         Kind
	FeatureID    string
	ArtifactName string
}

// Features is the feature list.
func Features() ViewState { return ViewState{Kind: KindFeatures} }

// Kanban is the board of a single feature.
func Kanban(featureID string) ViewState {
	return ViewState{Kind: KindKanban, FeatureID: featureID}
}

// Artifact is a Markdown document of a feature. The name may contain "/".
func Artifact(featureID, name string) ViewState {
	return ViewState{Kind: KindArtifact, FeatureID: featureID, ArtifactName: name}
}

// Untracked is the list of commits not linked to any feature.
func Untracked() ViewState { return ViewState{Kind: KindUntracked} }

// Constitution is the project constitution document.
func Constitution() ViewState { return ViewState{Kind: KindConstitution} }

// Location returns the serialized location of the state.
func (s ViewState) Location() string { return Serialize(s) }

// String implements fmt.Stringer for log fields.
func (s ViewState) String() string { return Serialize(s) }

// Tab returns the tab the state belongs to.
func (s ViewState) Tab() Tab { return TabOf(s) }

// Tab is one of the top-level dashboard tabs.
type Tab int

const (
	TabFeatures Tab = iota
	TabUntracked
	TabConstitution
)

// Tabs lists the tabs in display order.
func Tabs() []Tab {
	return []Tab{TabFeatures, TabUntracked, TabConstitution}
}

func (t Tab) String() string {
	switch t {
	case TabFeatures:
		return "features"
	case TabUntracked:
		return "untracked"
	case TabConstitution:
		return "constitution"
	default:
		return "unknown"
	}
}

// Root is the view a tab shows when nothing more specific applies.
func (t Tab) Root() ViewState {
	switch t {
	case TabUntracked:
		return Untracked()
	case TabConstitution:
		return Constitution()
	default:
		return Features()
	}
}

// TabOf maps a state to its owning tab. The feature list, kanban boards and
// artifacts all live under the features tab.
func TabOf(s ViewState) Tab {
	switch s.Kind {
	case KindUntracked:
		return TabUntracked
	case KindConstitution:
		return TabConstitution
	default:
		return TabFeatures
	}
}
