package api

import (
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Lane names used by the service.
const (
	LanePlanned   = "planned"
	LaneDoing     = "doing"
	LaneForReview = "for_review"
	LaneDone      = "done"
)

// Lanes lists the lanes in board order.
func Lanes() []string {
	return []string{LanePlanned, LaneDoing, LaneForReview, LaneDone}
}

// Feature is one entry of GET /api/features.
type Feature struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Path             string           `json:"path"`
	Worktree         string           `json:"worktree"`
	Mode             string           `json:"mode"`
	Artifacts        Artifacts        `json:"artifacts"`
	KanbanStats      KanbanStats      `json:"kanban_stats"`
	TotalTasks       int              `json:"total_tasks"`
	IsPhaseMode      bool             `json:"is_phase_mode"`
	Phases           map[string]Phase `json:"phases"`
	WalkthroughFiles []string         `json:"walkthrough_files"`
	FixesCount       int              `json:"fixes_count"`
}

// Artifacts maps an artifact base name ("spec", "plan", ...) to whether it
// exists. Numeric values, such as the walkthrough count, count as present
// when non-zero.
type Artifacts map[string]bool

// UnmarshalJSON accepts booleans and numbers.
func (a *Artifacts) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Artifacts, len(raw))
	for k, v := range raw {
		var b bool
		if err := json.Unmarshal(v, &b); err == nil {
			out[k] = b
			continue
		}
		var n float64
		if err := json.Unmarshal(v, &n); err == nil {
			out[k] = n != 0
		}
	}
	*a = out
	return nil
}

// Documents returns the file names of the Markdown artifacts that exist,
// sorted. The kanban and walkthrough-count pseudo artifacts are skipped.
func (a Artifacts) Documents() []string {
	var names []string
	for name, ok := range a {
		if !ok || name == "kanban" || name == "phase_walkthroughs" {
			continue
		}
		names = append(names, name+".md")
	}
	sort.Strings(names)
	return names
}

// KanbanStats counts tasks per lane.
type KanbanStats struct {
	Planned   int `json:"planned"`
	Doing     int `json:"doing"`
	ForReview int `json:"for_review"`
	Done      int `json:"done"`
}

// Phase is a phase of a phase-mode feature.
type Phase struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Path     string `json:"path"`
	PhaseNum int    `json:"phase_num"`
	Status   string `json:"status"`
	Progress string `json:"progress"`
}

// SortedPhases returns phases ordered by phase number.
func SortedPhases(phases map[string]Phase) []Phase {
	out := make([]Phase, 0, len(phases))
	for _, p := range phases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PhaseNum != out[j].PhaseNum {
			return out[i].PhaseNum < out[j].PhaseNum
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// PhaseProgress summarizes a phase-mode feature.
func (f Feature) PhaseProgress() (done, total int, current *Phase) {
	for _, p := range SortedPhases(f.Phases) {
		total++
		switch p.Status {
		case LaneDone:
			done++
		case LaneDoing:
			if current == nil {
				p := p
				current = &p
			}
		}
	}
	return done, total, current
}

// Walkthroughs lists the feature's walkthrough documents in display order.
func (f Feature) Walkthroughs() []string {
	var files []string
	if f.Artifacts["walkthrough"] {
		files = append(files, "walkthrough.md")
	}
	files = append(files, f.WalkthroughFiles...)
	SortWalkthroughs(files)
	return files
}

var (
	phaseNumRegex   = regexp.MustCompile(`walkthrough-phase-(\d+)`)
	featureNumRegex = regexp.MustCompile(`^(\d+)`)
)

// SortWalkthroughs orders files in place: walkthrough.md first, then phase
// walkthroughs by phase number, then the rest by name.
func SortWalkthroughs(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		a, b := files[i], files[j]
		if a == "walkthrough.md" || b == "walkthrough.md" {
			return a == "walkthrough.md" && b != "walkthrough.md"
		}
		am, bm := phaseNumRegex.FindStringSubmatch(a), phaseNumRegex.FindStringSubmatch(b)
		if am != nil && bm != nil {
			an, _ := strconv.Atoi(am[1])
			bn, _ := strconv.Atoi(bm[1])
			if an != bn {
				return an < bn
			}
		}
		return a < b
	})
}

// WalkthroughTitle is the label shown for a walkthrough file.
func WalkthroughTitle(file string) string {
	if file == "walkthrough.md" {
		return "Summary"
	}
	name := strings.TrimSuffix(file, ".md")
	name = strings.TrimPrefix(name, "walkthrough-")
	return strings.Replace(name, "-", " ", 1)
}

// FeatureNumber is the numeric prefix of a feature id, 0 when absent.
func FeatureNumber(id string) int {
	m := featureNumRegex.FindStringSubmatch(id)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// SortFeatures orders features by numeric id prefix, highest first.
// Features with equal numbers keep their service order.
func SortFeatures(features []Feature) []Feature {
	out := append([]Feature(nil), features...)
	sort.SliceStable(out, func(i, j int) bool {
		return FeatureNumber(out[i].ID) > FeatureNumber(out[j].ID)
	})
	return out
}

// FindFeature returns the feature with id.
func FindFeature(features []Feature, id string) (Feature, bool) {
	for _, f := range features {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Board is GET /api/kanban/{id}.
type Board struct {
	Lanes       map[string][]Task `json:"lanes"`
	Phases      map[string]Phase  `json:"phases"`
	Mode        string            `json:"mode"`
	IsPhaseMode bool              `json:"is_phase_mode"`
	Error       string            `json:"error"`
}

// PhaseLanes groups phases by status in board lane order.
func (b Board) PhaseLanes() map[string][]Phase {
	out := make(map[string][]Phase, 4)
	for _, p := range SortedPhases(b.Phases) {
		out[p.Status] = append(out[p.Status], p)
	}
	return out
}

// Task is a card on a kanban lane.
type Task struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// TaskRef addresses a task.
type TaskRef struct {
	FeatureID string
	Lane      string
	TaskID    string
}

// TaskDetail is GET /api/task/{feature}/{lane}/{task}.
type TaskDetail struct {
	ID           string       `json:"id"`
	Title        string       `json:"title"`
	Lane         string       `json:"lane"`
	Content      string       `json:"content"`
	Dependencies []Dependency `json:"dependencies"`
	Path         string       `json:"path"`
	Type         string       `json:"type"`
}

// Dependency is a task this task waits on.
type Dependency struct {
	ID   string `json:"id"`
	Lane string `json:"lane"`
}

// Commit is a commit linked to a task.
type Commit struct {
	SHA      string `json:"sha"`
	ShortSHA string `json:"short_sha"`
	Message  string `json:"message"`
	Date     string `json:"date"`
	Author   string `json:"author"`
}

// Time parses Date.
func (c Commit) Time() (time.Time, bool) { return parseTime(c.Date) }

// FileChange is a file touched by a task's commits.
type FileChange struct {
	Commit    string `json:"commit"`
	CommitSHA string `json:"commit_sha"`
	Path      string `json:"path"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
}

// ActionLabel spells out the git status letter.
func (f FileChange) ActionLabel() string {
	switch f.Action {
	case "A":
		return "Added"
	case "M":
		return "Modified"
	default:
		return "Deleted"
	}
}

// Review is one review from a task's activity log.
type Review struct {
	Timestamp string   `json:"timestamp"`
	Decision  string   `json:"decision"`
	Reviewer  string   `json:"reviewer"`
	Issues    []string `json:"issues"`
	Positives []string `json:"positives"`
	Notes     []string `json:"notes"`
}

// Approved reports whether the review approved the task.
func (r Review) Approved() bool { return r.Decision == "APPROVED" }

// Time parses Timestamp.
func (r Review) Time() (time.Time, bool) { return parseTime(r.Timestamp) }

// UntrackedCommit is a commit without a work package id.
type UntrackedCommit struct {
	SHA     string      `json:"sha"`
	Message string      `json:"message"`
	Date    string      `json:"date"`
	Author  string      `json:"author"`
	Files   []string    `json:"files"`
	Stats   CommitStats `json:"stats"`
}

// CommitStats is the diffstat of a commit.
type CommitStats struct {
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
	FilesChanged int `json:"files_changed"`
}

// ShortSHA is the first seven characters of the sha.
func (c UntrackedCommit) ShortSHA() string { return ShortSHA(c.SHA) }

// Time parses Date.
func (c UntrackedCommit) Time() (time.Time, bool) { return parseTime(c.Date) }

// MigrateCommand is the command that attaches the commit to a feature.
func (c UntrackedCommit) MigrateCommand() string {
	return "/spec-mix.migrate " + c.ShortSHA()
}

// FindUntracked returns the commit with sha.
func FindUntracked(commits []UntrackedCommit, sha string) (UntrackedCommit, bool) {
	for _, c := range commits {
		if c.SHA == sha {
			return c, true
		}
	}
	return UntrackedCommit{}, false
}

// ShortSHA abbreviates a sha to seven characters.
func ShortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

// Strings is the UI string bundle of GET /api/i18n/current.
type Strings struct {
	Title        string      `json:"title"`
	Features     string      `json:"features"`
	Kanban       string      `json:"kanban"`
	Artifacts    string      `json:"artifacts"`
	Constitution string      `json:"constitution"`
	NoFeatures   string      `json:"no_features"`
	Lanes        LaneStrings `json:"lanes"`
}

// LaneStrings holds lane titles.
type LaneStrings struct {
	Planned   string `json:"planned"`
	Doing     string `json:"doing"`
	ForReview string `json:"for_review"`
	Done      string `json:"done"`
}

// DefaultStrings is the English bundle used when the service has none.
func DefaultStrings() Strings {
	return Strings{
		Title:        "Spec Mix Dashboard",
		Features:     "Features",
		Kanban:       "Kanban Board",
		Artifacts:    "Artifacts",
		Constitution: "Constitution",
		NoFeatures:   "No features found",
		Lanes: LaneStrings{
			Planned:   "Planned",
			Doing:     "Doing",
			ForReview: "For Review",
			Done:      "Done",
		},
	}
}

// WithDefaults fills empty fields from DefaultStrings.
func (s Strings) WithDefaults() Strings {
	d := DefaultStrings()
	fill := func(v *string, def string) {
		if *v == "" {
			*v = def
		}
	}
	fill(&s.Title, d.Title)
	fill(&s.Features, d.Features)
	fill(&s.Kanban, d.Kanban)
	fill(&s.Artifacts, d.Artifacts)
	fill(&s.Constitution, d.Constitution)
	fill(&s.NoFeatures, d.NoFeatures)
	fill(&s.Lanes.Planned, d.Lanes.Planned)
	fill(&s.Lanes.Doing, d.Lanes.Doing)
	fill(&s.Lanes.ForReview, d.Lanes.ForReview)
	fill(&s.Lanes.Done, d.Lanes.Done)
	return s
}

// Lane returns the title of a lane.
func (s Strings) Lane(lane string) string {
	switch lane {
	case LanePlanned:
		return s.Lanes.Planned
	case LaneDoing:
		return s.Lanes.Doing
	case LaneForReview:
		return s.Lanes.ForReview
	case LaneDone:
		return s.Lanes.Done
	default:
		return lane
	}
}

// Health is GET /api/health.
type Health struct {
	Status      string `json:"status"`
	ProjectPath string `json:"project_path"`
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05 -0700", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
