package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/recite-cli/recite/reading"
)

func pickerVoices() []reading.Voice {
	return []reading.Voice{
		{ID: "en-us-1", Name: "American", Language: "en-US", Gender: "female"},
		{ID: "en-gb-1", Name: "British", Language: "en-GB", Gender: "male"},
		{ID: "de-1", Name: "German", Language: "de-DE", Gender: "neutral"},
	}
}

func typeInto(p voicePicker, s string) voicePicker {
	for _, r := range s {
		p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return p
}

// TestVoicePickerShowsAll verifies an empty query lists every voice.
func TestVoicePickerShowsAll(t *testing.T) {
	p := newVoicePicker(pickerVoices())
	view := p.View()
	for _, name := range []string{"American", "British", "German"} {
		if !strings.Contains(view, name) {
			t.Errorf("picker view missing %q", name)
		}
	}
}

// TestVoicePickerFilters verifies fuzzy filtering narrows the list.
func TestVoicePickerFilters(t *testing.T) {
	p := typeInto(newVoicePicker(pickerVoices()), "brit")

	view := p.View()
	if !strings.Contains(view, "British") {
		t.Errorf("filtered view missing British: %q", view)
	}
	if strings.Contains(view, "German") {
		t.Errorf("filtered view still shows German: %q", view)
	}
}

// TestVoicePickerNoMatches verifies the empty-result message.
func TestVoicePickerNoMatches(t *testing.T) {
	p := typeInto(newVoicePicker(pickerVoices()), "zzzzzz")
	if !strings.Contains(p.View(), "no matching voices") {
		t.Error("picker missing the no-match message")
	}
}

// TestVoicePickerSelection verifies cursor movement and enter.
func TestVoicePickerSelection(t *testing.T) {
	p := newVoicePicker(pickerVoices())

	// Up at the top stays put.
	p, chosen, _ := p.Update(tea.KeyMsg{Type: tea.KeyUp})
	if chosen != nil {
		t.Fatal("up arrow selected a voice")
	}

	p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	p, chosen, _ = p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if chosen == nil {
		t.Fatal("enter selected nothing")
	}
	if chosen.ID != "en-gb-1" {
		t.Errorf("selected voice = %q, want en-gb-1", chosen.ID)
	}
}

// TestVoicePickerCursorClamped verifies the cursor cannot run past the end.
func TestVoicePickerCursorClamped(t *testing.T) {
	p := newVoicePicker(pickerVoices())
	for i := 0; i < 10; i++ {
		p, _, _ = p.Update(tea.KeyMsg{Type: tea.KeyDown})
	}
	_, chosen, _ := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if chosen == nil || chosen.ID != "de-1" {
		t.Errorf("selection after over-scrolling = %+v, want de-1", chosen)
	}
}
