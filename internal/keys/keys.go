// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the application.
type KeyMap struct {
	// Navigation
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// History
	Back    key.Binding
	Forward key.Binding
	GoTo    key.Binding

	// Tabs
	NextTab         key.Binding
	PrevTab         key.Binding
	TabFeatures     key.Binding
	TabUntracked    key.Binding
	TabConstitution key.Binding

	// Actions
	Enter        key.Binding
	Refresh      key.Binding
	Copy         key.Binding
	Walkthroughs key.Binding

	// General
	Escape  key.Binding
	Help    key.Binding
	LogPane key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "move down"),
		),
		Left: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "move left"),
		),
		Right: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "move right"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "page down"),
		),

		Back: key.NewBinding(
			key.WithKeys("backspace", "b"),
			key.WithHelp("b", "back"),
		),
		Forward: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "forward"),
		),
		GoTo: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "go to location"),
		),

		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "previous tab"),
		),
		TabFeatures: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "features"),
		),
		TabUntracked: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "untracked"),
		),
		TabConstitution: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "constitution"),
		),

		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy command"),
		),
		Walkthroughs: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "board/walkthroughs"),
		),

		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		LogPane: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("ctrl+x", "debug log"),
			key.WithDisabled(),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Back, k.NextTab, k.Refresh, k.Help, k.Quit}
}

// FullHelp returns keybindings for the help overlay.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown}, // Navigation
		{k.Back, k.Forward, k.GoTo},                           // History
		{k.NextTab, k.PrevTab, k.TabFeatures, k.TabUntracked, k.TabConstitution},
		{k.Enter, k.Refresh, k.Copy, k.Walkthroughs},
		{k.Escape, k.Help, k.LogPane, k.Quit},
	}
}

// WithDebug enables bindings that only make sense with a debug log.
func (k KeyMap) WithDebug(enabled bool) KeyMap {
	k.LogPane.SetEnabled(enabled)
	return k
}
