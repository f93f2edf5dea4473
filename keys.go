package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	SelectTool  key.Binding
	StickyTool  key.Binding
	ConnectTool key.Binding
	Palette     key.Binding

	Click  key.Binding
	Edit   key.Binding
	Move   key.Binding
	Delete key.Binding
	Copy   key.Binding
	Paste  key.Binding
	Undo   key.Binding
	Cancel key.Binding

	Export   key.Binding
	Import   key.Binding
	SavePNG  key.Binding
	SaveText key.Binding
	Clear    key.Binding

	Navigate key.Binding
	Pan      key.Binding
	Help     key.Binding
	Quit     key.Binding

	Commit  key.Binding
	Discard key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		SelectTool:  key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "select tool")),
		StickyTool:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sticky tool: click empty canvas to add a note")),
		ConnectTool: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "connect tool: click source, then target")),
		Palette: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "place rectangle, circle, diamond, star, triangle, speech bubble")),

		Click:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "click at cursor")),
		Edit:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit label under cursor (or double-click)")),
		Move:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "move node under cursor (or drag)")),
		Delete: key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d/del", "delete selected node")),
		Copy:   key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy selected label to clipboard")),
		Paste:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "paste clipboard as a sticky note")),
		Undo:   key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Cancel: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear selection / cancel connection")),

		Export:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "export board as JSON")),
		Import:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "import board from JSON")),
		SavePNG:  key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "export PNG image")),
		SaveText: key.NewBinding(key.WithKeys("T"), key.WithHelp("T", "export text picture")),
		Clear:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "clear board")),

		Navigate: key.NewBinding(
			key.WithKeys("h", "j", "k", "l", "left", "down", "up", "right",
				"H", "J", "K", "L", "shift+left", "shift+down", "shift+up", "shift+right"),
			key.WithHelp("hjkl/arrows", "move cursor (shift for 2x)")),
		Pan:  key.NewBinding(key.WithKeys("z"), key.WithHelp("z", "toggle pan mode (arrows scroll the board)")),
		Help: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "toggle this help screen")),
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q/ctrl+c", "quit")),

		Commit:  key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save label")),
		Discard: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "discard edit")),
	}
}

type helpSection struct {
	title    string
	bindings []key.Binding
}

func (k keyMap) sections() []helpSection {
	return []helpSection{
		{"Tools", []key.Binding{k.SelectTool, k.StickyTool, k.ConnectTool, k.Palette}},
		{"Nodes", []key.Binding{k.Click, k.Edit, k.Move, k.Delete, k.Copy, k.Paste, k.Undo, k.Cancel}},
		{"Editing", []key.Binding{k.Commit, k.Discard}},
		{"Files", []key.Binding{k.Export, k.Import, k.SavePNG, k.SaveText, k.Clear}},
		{"General", []key.Binding{k.Navigate, k.Pan, k.Help, k.Quit}},
	}
}
