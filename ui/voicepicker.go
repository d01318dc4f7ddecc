package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/recite-cli/recite/reading"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)

	pickerItemStyle = lipgloss.NewStyle().PaddingLeft(2)

	pickerSelectedStyle = lipgloss.NewStyle().
				PaddingLeft(1).
				Foreground(lipgloss.Color("170")).
				SetString(">")
)

// voiceHaystack adapts voices to fuzzy.Source.
type voiceHaystack []reading.Voice

func (h voiceHaystack) String(i int) string {
	return h[i].Name + " " + h[i].Language
}

func (h voiceHaystack) Len() int { return len(h) }

// voicePicker is a fuzzy-filterable voice selection overlay.
type voicePicker struct {
	input    textinput.Model
	voices   []reading.Voice
	filtered []reading.Voice
	cursor   int
	height   int
}

func newVoicePicker(voices []reading.Voice) voicePicker {
	input := textinput.New()
	input.Placeholder = "filter voices"
	input.Prompt = "/ "
	input.Focus()

	return voicePicker{
		input:    input,
		voices:   voices,
		filtered: voices,
		height:   10,
	}
}

// Update handles filtering and cursor movement. The second return value is
// the chosen voice when enter is pressed.
func (p voicePicker) Update(msg tea.Msg) (voicePicker, *reading.Voice, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "up":
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil, nil
		case "down":
			if p.cursor < len(p.filtered)-1 {
				p.cursor++
			}
			return p, nil, nil
		case "enter":
			if p.cursor < len(p.filtered) {
				voice := p.filtered[p.cursor]
				return p, &voice, nil
			}
			return p, nil, nil
		}
	}

	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	p.filter()
	return p, nil, cmd
}

func (p *voicePicker) filter() {
	query := strings.TrimSpace(p.input.Value())
	if query == "" {
		p.filtered = p.voices
	} else {
		matches := fuzzy.FindFrom(query, voiceHaystack(p.voices))
		p.filtered = make([]reading.Voice, len(matches))
		for i, m := range matches {
			p.filtered[i] = p.voices[m.Index]
		}
	}
	if p.cursor >= len(p.filtered) {
		p.cursor = 0
	}
}

func (p voicePicker) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Select voice"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	start := 0
	if p.cursor >= p.height {
		start = p.cursor - p.height + 1
	}
	end := min(start+p.height, len(p.filtered))

	for i := start; i < end; i++ {
		v := p.filtered[i]
		line := fmt.Sprintf("%s (%s, %s)", v.Name, v.Language, v.Gender)
		if i == p.cursor {
			b.WriteString(pickerSelectedStyle.String() + pickerItemStyle.Render(line))
		} else {
			b.WriteString(pickerItemStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if len(p.filtered) == 0 {
		b.WriteString(pickerItemStyle.Render("no matching voices"))
		b.WriteString("\n")
	}
	return b.String()
}
