package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit          key.Binding
	UpDown        key.Binding
	Activate      key.Binding
	NewTab        key.Binding
	CloseTab      key.Binding
	PinTab        key.Binding
	DiscardTab    key.Binding
	NextWorkspace key.Binding
	PrevWorkspace key.Binding
	NewWorkspace  key.Binding
	NextProfile   key.Binding
	Switcher      key.Binding
	Cancel        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		UpDown:        key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("j/k", "move")),
		Activate:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "activate")),
		NewTab:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new tab")),
		CloseTab:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "close")),
		PinTab:        key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin")),
		DiscardTab:    key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "discard")),
		NextWorkspace: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next workspace")),
		PrevWorkspace: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev workspace")),
		NewWorkspace:  key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "new workspace")),
		NextProfile:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "next profile")),
		Switcher:      key.NewBinding(key.WithKeys("/", "ctrl+p"), key.WithHelp("/", "find tab")),
		Cancel:        key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NewTab, k.CloseTab, k.Switcher, k.NextWorkspace, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.UpDown, k.Activate, k.NewTab, k.CloseTab, k.PinTab, k.DiscardTab},
		{k.NextWorkspace, k.PrevWorkspace, k.NewWorkspace, k.NextProfile, k.Switcher, k.Quit},
	}
}
