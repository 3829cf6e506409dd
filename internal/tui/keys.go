package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit    key.Binding
	Newline key.Binding
	Tab     key.Binding
	Space   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		Newline: key.NewBinding(
			key.WithKeys("enter", "ctrl+j"),
			key.WithHelp("enter", "new line"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
		),
		Space: key.NewBinding(
			key.WithKeys(" "),
		),
	}
}
