package termui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the viewer's keyboard bindings.
type keyMap struct {
	Quit       key.Binding
	NextWindow key.Binding

	NextTab    key.Binding
	PrevTab    key.Binding
	NextUnread key.Binding

	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Top      key.Binding
	Bottom   key.Binding

	Search    key.Binding
	NextMatch key.Binding
	PrevMatch key.Binding
	Command   key.Binding

	Confirm key.Binding
	Escape  key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		NextWindow: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w", "Next window"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "Next tab"),
		),
		PrevTab: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("shift+tab", "Previous tab"),
		),
		NextUnread: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "Next unread tab"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "f", " "),
			key.WithHelp("pgdn", "Page down"),
		),
		Top: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "Oldest"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "Follow"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		NextMatch: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "Next match"),
		),
		PrevMatch: key.NewBinding(
			key.WithKeys("N"),
			key.WithHelp("N", "Previous match"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "Command"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Cancel / clear search"),
		),
	}
}

func (k keyMap) hints() []key.Binding {
	return []key.Binding{k.Quit, k.NextWindow, k.NextTab, k.NextUnread, k.Search, k.Command}
}
