package nav

import "strings"

// route maps one location shape to a constructor. Exact routes match the
// whole location, the others match a prefix and receive the remainder.
type route struct {
	pattern string
	exact   bool
	build   func(rest string) (ViewState, bool)
}

var routes = []route{
	{pattern: "features", exact: true, build: func(string) (ViewState, bool) { return Features(), true }},
	{pattern: "untracked", exact: true, build: func(string) (ViewState, bool) { return Untracked(), true }},
	{pattern: "constitution", exact: true, build: func(string) (ViewState, bool) { return Constitution(), true }},
	{pattern: "kanban/", build: parseKanban},
	{pattern: "artifact/", build: parseArtifact},
}

func parseKanban(rest string) (ViewState, bool) {
	if rest == "" {
		return ViewState{}, false
	}
	return Kanban(rest), true
}

func parseArtifact(rest string) (ViewState, bool) {
	featureID, name, ok := strings.Cut(rest, "/")
	if !ok || featureID == "" || name == "" {
		return ViewState{}, false
	}
	return Artifact(featureID, name), true
}

// Parse decodes a location into a ViewState. The leading "#" is optional.
// Parse never fails: empty, unknown or malformed locations yield Features().
func Parse(location string) ViewState {
	loc := strings.TrimPrefix(location, "#")
	for _, r := range routes {
		if r.exact {
			if loc != r.pattern {
				continue
			}
		} else if !strings.HasPrefix(loc, r.pattern) {
			continue
		}
		if s, ok := r.build(strings.TrimPrefix(loc, r.pattern)); ok {
			return s
		}
		break
	}
	return Features()
}

// Serialize encodes a ViewState as a location. For every state with a
// non-empty feature id free of "/" and a non-empty artifact name,
// Parse(Serialize(s)) == s.
func Serialize(s ViewState) string {
	switch s.Kind {
	case KindKanban:
		return "#kanban/" + s.FeatureID
	case KindArtifact:
		return "#artifact/" + s.FeatureID + "/" + s.ArtifactName
	case KindUntracked:
		return "#untracked"
	case KindConstitution:
		return "#constitution"
	default:
		return "#features"
	}
}
