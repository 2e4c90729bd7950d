// Package overlay draws modal content over an already rendered view.
package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Position is where the foreground lands on the screen.
type Position int

const (
	Center Position = iota
	Top
	Bottom
)

// Config describes the screen and placement.
type Config struct {
	Width    int
	Height   int
	Position Position
	// PadY keeps Top and Bottom placements this many rows from the edge.
	PadY int
}

// Place splices fg into bg line by line. Both may carry ANSI styling; the
// cut points are computed on display cells so background styling on either
// side of the modal survives.
func Place(cfg Config, fg, bg string) string {
	front := strings.Split(fg, "\n")
	back := strings.Split(bg, "\n")
	for len(back) < cfg.Height {
		back = append(back, strings.Repeat(" ", cfg.Width))
	}

	fgWidth := 0
	for _, l := range front {
		fgWidth = max(fgWidth, ansi.StringWidth(l))
	}
	x, y := origin(cfg, fgWidth, len(front))

	for i, line := range front {
		row := y + i
		if row >= len(back) {
			break
		}
		under := back[row]
		left := ansi.Truncate(under, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		var right string
		if end := x + ansi.StringWidth(line); end < ansi.StringWidth(under) {
			right = ansi.TruncateLeft(under, end, "")
		}
		back[row] = left + line + right
	}
	return strings.Join(back, "\n")
}

func origin(cfg Config, w, h int) (x, y int) {
	x = (cfg.Width - w) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - h - cfg.PadY
	default:
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
