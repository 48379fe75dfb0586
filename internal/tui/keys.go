package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab         key.Binding
	ShiftTab    key.Binding
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Close       key.Binding
	Later       key.Binding
	Help        key.Binding
	QuickLog    key.Binding
	DetailedLog key.Binding
	Craving     key.Binding
	Refresh     key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.QuickLog, k.Refresh, k.Tab, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.QuickLog, k.DetailedLog, k.Craving, k.Refresh},
		{k.Tab, k.ShiftTab, k.Up, k.Down},
		{k.Enter, k.Close, k.Later, k.Help, k.Quit},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "continue"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Later: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "remind me later"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		QuickLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "quick log"),
		),
		DetailedLog: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "detailed log"),
		),
		Craving: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "log craving"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
	}
}
