package ui

import (
	"strings"
	"testing"

	"github.com/recite-cli/recite/reading"
)

func testVoice() reading.VoiceSettings {
	return reading.VoiceSettings{VoiceID: "en-us", Rate: 1.0, Pitch: 1.0}
}

// TestStatusBarStates verifies the transport glyphs and labels per state.
func TestStatusBarStates(t *testing.T) {
	tests := []struct {
		name string
		snap reading.Snapshot
		want []string
	}{
		{
			name: "idle",
			snap: reading.Snapshot{State: reading.StateIdle},
			want: []string{"idle"},
		},
		{
			name: "reading shows position and progress",
			snap: reading.Snapshot{
				State: reading.StateReading, CurrentIndex: 1,
				TotalSentences: 5, ProgressPercent: 20,
			},
			want: []string{"▶", "reading", "2/5", "20%"},
		},
		{
			name: "paused",
			snap: reading.Snapshot{
				State: reading.StatePaused, CurrentIndex: 0,
				TotalSentences: 3,
			},
			want: []string{"❚❚", "paused", "1/3"},
		},
		{
			name: "finished shows done",
			snap: reading.Snapshot{State: reading.StateIdle, ProgressPercent: 100},
			want: []string{"done"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := statusBar(120, tt.snap, "espeak", testVoice(), "")
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("status bar missing %q in %q", want, out)
				}
			}
		})
	}
}

// TestStatusBarSettings verifies engine and voice settings appear.
func TestStatusBarSettings(t *testing.T) {
	voice := reading.VoiceSettings{VoiceID: "en-gb", Rate: 1.5, Pitch: 0.8}
	out := statusBar(120, reading.Snapshot{State: reading.StateReading, TotalSentences: 1}, "espeak", voice, "")

	for _, want := range []string{"espeak", "en-gb", "1.5x", "pitch 0.8"} {
		if !strings.Contains(out, want) {
			t.Errorf("status bar missing %q in %q", want, out)
		}
	}

	out = statusBar(120, reading.Snapshot{}, "mock", reading.VoiceSettings{Rate: 1, Pitch: 1}, "")
	if !strings.Contains(out, "default") {
		t.Errorf("status bar missing default voice label in %q", out)
	}
}

// TestStatusBarNote verifies transient notes are shown.
func TestStatusBarNote(t *testing.T) {
	out := statusBar(120, reading.Snapshot{}, "mock", testVoice(), "copied")
	if !strings.Contains(out, "copied") {
		t.Errorf("status bar missing note in %q", out)
	}
}

// TestStatusBarNarrow verifies narrow widths truncate without panicking.
func TestStatusBarNarrow(t *testing.T) {
	for _, width := range []int{0, 1, 10, 25} {
		out := statusBar(width, reading.Snapshot{State: reading.StateReading, TotalSentences: 9}, "espeak", testVoice(), "a long note that cannot fit")
		if out == "" && width > 0 {
			t.Errorf("status bar empty at width %d", width)
		}
	}
}
