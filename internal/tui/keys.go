package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
	Potty  key.Binding
	Back   key.Binding
	Quit   key.Binding
	screen screen
}

func newKeyMap() keyMap {
	return keyMap{
		Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Potty:  key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "potty mode")),
		Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "menu")),
		Quit:   key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// forScreen relabels the bindings that change meaning between screens.
func (k keyMap) forScreen(s screen) keyMap {
	k.screen = s
	switch s {
	case screenTyping, screenBoss:
		k.Select.SetHelp("enter", "submit")
	case screenChoice:
		k.Select.SetHelp("enter", "choose")
	case screenResult, screenSummary:
		k.Select.SetHelp("enter", "continue")
	}
	return k
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	if k.screen == screenMenu {
		return []key.Binding{k.Up, k.Down, k.Select, k.Potty, k.Quit}
	}
	return []key.Binding{k.Select, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
