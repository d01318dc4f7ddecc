package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/termenv"

	"github.com/recite-cli/recite/reading"
)

var (
	statusBarStyle = newStatusBarStyle()

	statusStateStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("5")).
				Foreground(lipgloss.Color("15")).
				Padding(0, 1)

	statusNoteStyle = lipgloss.NewStyle().Padding(0, 1)
)

func newStatusBarStyle() lipgloss.Style {
	// Match the terminal: a light bar on dark backgrounds and vice versa.
	if termenv.HasDarkBackground() {
		return lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("250"))
	}
	return lipgloss.NewStyle().
		Background(lipgloss.Color("253")).
		Foreground(lipgloss.Color("238"))
}

// statusBar renders the transport state line at the bottom of the reader.
func statusBar(width int, snap reading.Snapshot, engine string, voice reading.VoiceSettings, note string) string {
	glyph := "■"
	label := "idle"
	switch snap.State {
	case reading.StateReading:
		glyph, label = "▶", "reading"
	case reading.StatePaused:
		glyph, label = "❚❚", "paused"
	case reading.StateStopping:
		glyph, label = "■", "stopping"
	}
	state := statusStateStyle.Render(fmt.Sprintf("%s %s", glyph, label))

	var position string
	if snap.Active() {
		position = fmt.Sprintf(" %d/%d · %d%% ",
			snap.CurrentIndex+1, snap.TotalSentences, snap.ProgressPercent)
	} else if snap.ProgressPercent == 100 {
		position = " done "
	}

	voiceID := voice.VoiceID
	if voiceID == "" {
		voiceID = "default"
	}
	settings := fmt.Sprintf(" %s · %s · %.1fx · pitch %.1f ", engine, voiceID, voice.Rate, voice.Pitch)

	if note != "" {
		note = statusNoteStyle.Render(note)
	}

	left := state + statusBarStyle.Render(position) + note
	right := statusBarStyle.Render(settings)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		line := truncate.StringWithTail(left+right, uint(max(0, width)), "…")
		return statusBarStyle.Render(padToWidth(line, width))
	}
	return left + statusBarStyle.Render(padToWidth("", gap)) + right
}

func padToWidth(s string, width int) string {
	for runewidth.StringWidth(s) < width {
		s += " "
	}
	return s
}
