// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/specboard/internal/diff"
)

var (
	// Text hierarchy
	TextPrimaryColor     = lipgloss.AdaptiveColor{Light: "#1F2328", Dark: "#CCCCCC"}
	TextSecondaryColor   = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"}
	TextMutedColor       = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"}
	TextDescriptionColor = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#999999"}

	// Borders
	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	// Status
	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}
	AccentColor        = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#7D56F4"}

	// Lanes
	LanePlannedColor   = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#AAAAAA"}
	LaneDoingColor     = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}
	LaneForReviewColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	LaneDoneColor      = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}

	// Diff
	DiffAddedColor      = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	DiffRemovedColor    = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}
	DiffHunkColor       = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#CBA6F7"}
	DiffFileHeaderColor = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#89B4FA"}
	DiffFilePathColor   = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"}
	DiffWordAddedBg     = lipgloss.AdaptiveColor{Light: "#ACEEBB", Dark: "#1F4D2C"}
	DiffWordRemovedBg   = lipgloss.AdaptiveColor{Light: "#FFCECB", Dark: "#5C1F24"}

	// Toast notification colors
	ToastBorderSuccessColor = StatusSuccessColor
	ToastBorderErrorColor   = StatusErrorColor
	ToastBorderInfoColor    = BorderFocusColor
	ToastBorderWarnColor    = StatusWarningColor

	// Selection indicator style (used for ">" prefix in lists)
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(BorderFocusColor)

	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(TextPrimaryColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	HintStyle  = lipgloss.NewStyle().Foreground(TextMutedColor).Italic(true)

	TabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(TextSecondaryColor)
	ActiveTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).
			Foreground(BorderFocusColor).Underline(true)

	BadgeStyle       = lipgloss.NewStyle().Padding(0, 1).Foreground(TextSecondaryColor).Background(lipgloss.AdaptiveColor{Light: "#EAEEF2", Dark: "#2D3436"})
	ActiveBadgeStyle = BadgeStyle.Foreground(lipgloss.Color("#FFFFFF")).Background(BorderFocusColor).Bold(true)
	CountBadgeStyle  = lipgloss.NewStyle().Padding(0, 1).Bold(true).
				Foreground(lipgloss.Color("#FFFFFF")).Background(StatusErrorColor)

	StatusBarStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Padding(0, 1)

	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true).Padding(1, 2)
	EmptyStyle = lipgloss.NewStyle().Foreground(TextMutedColor).Padding(1, 2)

	SpinnerColor = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#FFF"}
)

// LaneColor returns the accent color of a kanban lane.
func LaneColor(lane string) lipgloss.AdaptiveColor {
	switch lane {
	case "doing":
		return LaneDoingColor
	case "for_review":
		return LaneForReviewColor
	case "done":
		return LaneDoneColor
	default:
		return LanePlannedColor
	}
}

// DiffStyle returns the style for a classified diff line.
func DiffStyle(c diff.Category) lipgloss.Style {
	s := lipgloss.NewStyle()
	switch c {
	case diff.CategoryAdded:
		return s.Foreground(DiffAddedColor)
	case diff.CategoryRemoved:
		return s.Foreground(DiffRemovedColor)
	case diff.CategoryHunkHeader:
		return s.Foreground(DiffHunkColor)
	case diff.CategoryFileHeader:
		return s.Foreground(DiffFileHeaderColor).Bold(true)
	case diff.CategoryFilePath:
		return s.Foreground(DiffFilePathColor).Bold(true)
	default:
		return s.Foreground(TextPrimaryColor)
	}
}
