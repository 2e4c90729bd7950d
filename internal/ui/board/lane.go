package board

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/specboard/internal/ui/styles"
)

// card is one entry of a lane: a task, or a phase in phase mode.
type card struct {
	ID     string
	Title  string
	Detail string
	Lane   string
}

func (c card) FilterValue() string { return c.Title }

// cardDelegate renders cards with the lane color and a selection marker.
type cardDelegate struct {
	focused *bool // shared with the lane so it survives value copies
	lane    string
	height  int
}

func (d cardDelegate) Height() int  { return d.height }
func (d cardDelegate) Spacing() int { return 0 }

func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	c, ok := item.(card)
	if !ok {
		return
	}
	selected := index == m.Index() && d.focused != nil && *d.focused
	width := max(m.Width()-1, 4)

	id := lipgloss.NewStyle().Foreground(styles.LaneColor(d.lane)).Render("[" + c.ID + "]")
	line := id + " " + styles.TruncateString(c.Title, max(width-lipgloss.Width(id)-1, 1))
	if selected {
		line = styles.SelectionIndicatorStyle.Render(">") + line
	} else {
		line = " " + line
	}
	if d.height > 1 {
		line += "\n  " + styles.MutedStyle.Render(styles.TruncateString(c.Detail, width-1))
	}
	_, _ = fmt.Fprint(w, zone.Mark(cardZone(d.lane, c.ID), line))
}

func cardZone(lane, id string) string { return "card:" + lane + ":" + id }

// Lane is a single kanban column.
type Lane struct {
	name    string
	title   string
	phases  bool
	list    list.Model
	cards   []card
	focused *bool
	width   int
	height  int
}

// newLane creates an empty lane. Phase lanes show two lines per card.
func newLane(name, title string, phases bool) Lane {
	focused := new(bool)
	d := cardDelegate{focused: focused, lane: name, height: 1}
	if phases {
		d.height = 2
	}
	l := list.New(nil, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	return Lane{name: name, title: title, phases: phases, list: l, focused: focused}
}

// Name returns the lane's service name.
func (l Lane) Name() string { return l.name }

// Title returns the header with the card count.
func (l Lane) Title() string {
	return fmt.Sprintf("%s (%d)", l.title, len(l.cards))
}

// Len returns the number of cards.
func (l Lane) Len() int { return len(l.cards) }

func (l Lane) setCards(cards []card) Lane {
	sel := ""
	if c, ok := l.selected(); ok {
		sel = c.ID
	}
	l.cards = cards
	items := make([]list.Item, len(cards))
	for i, c := range cards {
		items[i] = c
	}
	l.list.SetItems(items)
	for i, c := range cards {
		if c.ID == sel {
			l.list.Select(i)
			break
		}
	}
	return l
}

func (l Lane) setSize(width, height int) Lane {
	l.width, l.height = width, height
	l.list.SetSize(max(width-2, 1), max(height-2, 1))
	return l
}

func (l Lane) setFocused(focused bool) Lane {
	*l.focused = focused
	return l
}

func (l Lane) selected() (card, bool) {
	if item, ok := l.list.SelectedItem().(card); ok {
		return item, true
	}
	return card{}, false
}

func (l Lane) up() Lane {
	l.list.CursorUp()
	return l
}

func (l Lane) down() Lane {
	l.list.CursorDown()
	return l
}

func (l Lane) selectID(id string) (Lane, bool) {
	for i, c := range l.cards {
		if c.ID == id {
			l.list.Select(i)
			return l, true
		}
	}
	return l, false
}

func (l Lane) view(empty string) string {
	content := styles.HintStyle.Padding(1, 1).Render(empty)
	if len(l.cards) > 0 {
		content = l.list.View()
	}
	return styles.Panel(strings.TrimRight(content, "\n"), l.Title(), l.width, l.height, *l.focused)
}
