package tui

import "github.com/charmbracelet/bubbles/key"

type helpMode int

const (
	helpForm helpMode = iota
	helpLists
	helpDrag
)

type keyMap struct {
	mode helpMode

	Next      key.Binding
	Prev      key.Binding
	Submit    key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Grab      key.Binding
	Drop      key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add project")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "active")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "finished")),
		Grab:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "move project")),
		Drop:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	switch k.mode {
	case helpDrag:
		return []key.Binding{k.Left, k.Right, k.Drop, k.Cancel}
	case helpLists:
		return []key.Binding{k.Next, k.Grab, k.Left, k.Right, k.Help, k.Quit}
	default:
		return []key.Binding{k.Next, k.Prev, k.Submit, k.ForceQuit}
	}
}

func (k keyMap) FullHelp() [][]key.Binding {
	switch k.mode {
	case helpDrag:
		return [][]key.Binding{{k.Left, k.Right}, {k.Drop, k.Cancel}}
	case helpLists:
		return [][]key.Binding{
			{k.Up, k.Down, k.Left, k.Right},
			{k.Grab, k.Next, k.Prev},
			{k.Help, k.Quit, k.ForceQuit},
		}
	default:
		return [][]key.Binding{{k.Next, k.Prev}, {k.Submit, k.ForceQuit}}
	}
}
