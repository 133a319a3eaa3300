package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the key bindings of the tree browser.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Select      key.Binding
	Collapse    key.Binding
	Focus       key.Binding
	RestoreFull key.Binding
	Reroot      key.Binding
	ExpandAll   key.Binding
	CycleMode   key.Binding
	Phylogram   key.Binding
	Labels      key.Binding
	FastMode    key.Binding
	Undo        key.Binding
	Redo        key.Binding
	ZoomIn      key.Binding
	ZoomOut     key.Binding
	PanLeft     key.Binding
	PanRight    key.Binding
	Export      key.Binding
	ExportPNG   key.Binding
	SaveSession key.Binding
	LoadSession key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		Select:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Collapse:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "collapse/expand")),
		Focus:       key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "focus subtree")),
		RestoreFull: key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "restore full tree")),
		Reroot:      key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reroot here")),
		ExpandAll:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "expand all")),
		CycleMode:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "layout mode")),
		Phylogram:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "phylogram")),
		Labels:      key.NewBinding(key.WithKeys("L"), key.WithHelp("L", "tip labels")),
		FastMode:    key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "fast mode")),
		Undo:        key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Redo:        key.NewBinding(key.WithKeys("U", "ctrl+r"), key.WithHelp("U", "redo")),
		ZoomIn:      key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:     key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "zoom out")),
		PanLeft:     key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("←/h", "pan left")),
		PanRight:    key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("→/l", "pan right")),
		Export:      key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export SVG")),
		ExportPNG:   key.NewBinding(key.WithKeys("E"), key.WithHelp("E", "export PNG")),
		SaveSession: key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save session")),
		LoadSession: key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "load session")),
		Help:        key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
