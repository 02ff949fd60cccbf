package dashboard

import "charm.land/bubbles/v2/key"

// keyMap holds the normal-mode bindings. Change-state keys come from
// config and are matched separately.
type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Select  key.Binding
	Tab     key.Binding
	Filter  key.Binding
	Refresh key.Binding
	State   key.Binding
	Move    key.Binding
	Open    key.Binding
	Copy    key.Binding
	Cancel  key.Binding
	Quit    key.Binding
	Backlog key.Binding

	// Picker navigation leaves letters to the filter.
	PickUp   key.Binding
	PickDown key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		State:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "state")),
		Move:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move")),
		Open:    key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy url")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Backlog: key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "backlog")),

		PickUp:   key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
		PickDown: key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	}
}

// sprintHelp is shown while the sprint pane has focus.
type sprintHelp struct{ k keyMap }

func (h sprintHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.Select, h.k.Filter, h.k.Tab, h.k.Refresh, h.k.Quit}
}

func (h sprintHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// cardHelp is shown while the card pane has focus.
type cardHelp struct{ k keyMap }

func (h cardHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.Up, h.k.Down, h.k.State, h.k.Move, h.k.Open, h.k.Copy, h.k.Tab, h.k.Refresh, h.k.Quit}
}

func (h cardHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }

// pickerHelp is shown while the move picker is open.
type pickerHelp struct{ k keyMap }

func (h pickerHelp) ShortHelp() []key.Binding {
	return []key.Binding{h.k.PickUp, h.k.PickDown, h.k.Select, h.k.Backlog, h.k.Cancel}
}

func (h pickerHelp) FullHelp() [][]key.Binding { return [][]key.Binding{h.ShortHelp()} }
