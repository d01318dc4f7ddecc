package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the reader key bindings.
type keyMap struct {
	PlayPause  key.Binding
	Stop       key.Binding
	Next       key.Binding
	Previous   key.Binding
	RateUp     key.Binding
	RateDown   key.Binding
	PitchUp    key.Binding
	PitchDown  key.Binding
	Voices     key.Binding
	AutoScroll key.Binding
	Copy       key.Binding
	Reload     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PlayPause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "play/pause"),
		),
		Stop: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stop"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n/→", "next sentence"),
		),
		Previous: key.NewBinding(
			key.WithKeys("b", "left"),
			key.WithHelp("b/←", "previous sentence"),
		),
		RateUp: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		RateDown: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "slower"),
		),
		PitchUp: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "pitch up"),
		),
		PitchDown: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "pitch down"),
		),
		Voices: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "voices"),
		),
		AutoScroll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "auto-scroll"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy sentence"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Stop, k.Next, k.Previous, k.Voices, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.Stop, k.Next, k.Previous},
		{k.RateUp, k.RateDown, k.PitchUp, k.PitchDown},
		{k.Voices, k.AutoScroll, k.Copy, k.Reload},
		{k.Help, k.Quit},
	}
}
