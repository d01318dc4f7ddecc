package reading

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Messages for Bubble Tea communication between the controller and the UI.

// SnapshotMsg carries a transport state update.
type SnapshotMsg struct {
	Snapshot Snapshot
}

// TransportErrorMsg indicates a transport command failed.
type TransportErrorMsg struct {
	Op  string
	Err error
}

// Commands wrapping transport operations. Each command runs the operation
// and reports the resulting snapshot, or the failure.

// StartCmd begins a reading session over content.
func StartCmd(c *Controller, content string) tea.Cmd {
	return transportCmd(c, "start", func() error { return c.Start(content) })
}

// ToggleCmd pauses or resumes depending on the current state.
func ToggleCmd(c *Controller) tea.Cmd {
	return transportCmd(c, "toggle", c.Toggle)
}

// StopCmd tears the session down.
func StopCmd(c *Controller) tea.Cmd {
	return transportCmd(c, "stop", c.Stop)
}

// NextCmd seeks forward one sentence.
func NextCmd(c *Controller) tea.Cmd {
	return transportCmd(c, "next", c.Next)
}

// PreviousCmd seeks back one sentence.
func PreviousCmd(c *Controller) tea.Cmd {
	return transportCmd(c, "previous", c.Previous)
}

// SetVoiceCmd applies new voice settings.
func SetVoiceCmd(c *Controller, v VoiceSettings) tea.Cmd {
	return func() tea.Msg {
		c.SetVoice(v)
		return SnapshotMsg{Snapshot: c.Snapshot()}
	}
}

func transportCmd(c *Controller, op string, fn func() error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(); err != nil {
			return TransportErrorMsg{Op: op, Err: err}
		}
		return SnapshotMsg{Snapshot: c.Snapshot()}
	}
}
