// Package ui implements the terminal reader: a viewport over the extracted
// sentences with transport controls, a status bar, and a voice picker.
package ui

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/muesli/reflow/wordwrap"

	"github.com/recite-cli/recite/reading"
	"github.com/recite-cli/recite/reading/extract"
	"github.com/recite-cli/recite/utils"
)

var (
	sentenceStyle = lipgloss.NewStyle()

	highlightStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("11")).
			Foreground(lipgloss.Color("0"))

	spokenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	errNoteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))
)

type (
	snapshotMsg      reading.Snapshot
	fileChangedMsg   struct{}
	noteTimeoutMsg   struct{}
	contentReloadMsg struct {
		content   string
		sentences []string
		err       error
	}
)

type model struct {
	cfg  Config
	ctrl *reading.Controller
	keys keyMap
	help help.Model

	viewport viewport.Model
	ready    bool

	content   string   // article HTML handed to the controller on start
	sentences []string // preview extraction, shown in the viewport
	lineOf    []int    // first rendered line of each sentence

	snap       reading.Snapshot
	voice      reading.VoiceSettings
	autoScroll bool

	showPicker bool
	picker     voicePicker

	note    string
	noteErr bool

	updates chan reading.Snapshot
	watcher *fsnotify.Watcher
}

// NewProgram assembles the reader program around a controller and the
// article content (HTML).
func NewProgram(cfg Config, ctrl *reading.Controller, content string) *tea.Program {
	updates := make(chan reading.Snapshot, 8)
	ctrl.OnChange(func(s reading.Snapshot) {
		select {
		case updates <- s:
		default:
		}
	})

	var watcher *fsnotify.Watcher
	if cfg.Path != "" {
		w, err := fsnotify.NewWatcher()
		if err == nil && w.Add(cfg.Path) == nil {
			watcher = w
		} else {
			log.Debug("file watching unavailable", "path", cfg.Path, "err", err)
		}
	}

	m := model{
		cfg:        cfg,
		ctrl:       ctrl,
		keys:       defaultKeyMap(),
		help:       help.New(),
		content:    content,
		sentences:  extract.New(cfg.Filters).Sentences(content),
		snap:       ctrl.Snapshot(),
		voice:      ctrl.VoiceSettings(),
		autoScroll: cfg.AutoScroll,
		updates:    updates,
		watcher:    watcher,
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	return tea.NewProgram(m, opts...)
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForSnapshot(m.updates)}
	if m.watcher != nil {
		cmds = append(cmds, waitForFileChange(m.watcher))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := msg.Height - 2 // status bar and help line
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.help.Width = msg.Width
		m.renderContent()
		return m, nil

	case snapshotMsg:
		prev := m.snap
		m.snap = reading.Snapshot(msg)
		m.voice = m.ctrl.VoiceSettings()
		if prev.Active() && !m.snap.Active() && m.snap.ProgressPercent == 100 {
			m.setNote("finished", false, &cmds)
		}
		m.renderContent()
		m.scrollToCurrent()
		cmds = append(cmds, waitForSnapshot(m.updates))
		return m, tea.Batch(cmds...)

	case reading.SnapshotMsg:
		m.snap = msg.Snapshot
		m.voice = m.ctrl.VoiceSettings()
		m.renderContent()
		m.scrollToCurrent()
		return m, nil

	case reading.TransportErrorMsg:
		m.setNote(fmt.Sprintf("%s: %v", msg.Op, msg.Err), true, &cmds)
		return m, tea.Batch(cmds...)

	case fileChangedMsg:
		cmds = append(cmds, waitForFileChange(m.watcher))
		if !m.snap.Active() {
			cmds = append(cmds, reloadContent(m.cfg.Path, m.cfg.Filters))
		}
		return m, tea.Batch(cmds...)

	case contentReloadMsg:
		if msg.err != nil {
			m.setNote(fmt.Sprintf("reload failed: %v", msg.err), true, &cmds)
			return m, tea.Batch(cmds...)
		}
		m.content = msg.content
		m.sentences = msg.sentences
		m.renderContent()
		m.setNote("reloaded", false, &cmds)
		return m, tea.Batch(cmds...)

	case noteTimeoutMsg:
		m.note = ""
		return m, nil

	case tea.KeyMsg:
		if m.showPicker {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		if m.snap.Active() {
			return m, reading.ToggleCmd(m.ctrl)
		}
		return m, reading.StartCmd(m.ctrl, m.content)

	case key.Matches(msg, m.keys.Stop):
		return m, reading.StopCmd(m.ctrl)

	case key.Matches(msg, m.keys.Next):
		return m, reading.NextCmd(m.ctrl)

	case key.Matches(msg, m.keys.Previous):
		return m, reading.PreviousCmd(m.ctrl)

	case key.Matches(msg, m.keys.RateUp):
		v := m.voice
		v.Rate += 0.1
		return m, reading.SetVoiceCmd(m.ctrl, v)

	case key.Matches(msg, m.keys.RateDown):
		v := m.voice
		v.Rate -= 0.1
		return m, reading.SetVoiceCmd(m.ctrl, v)

	case key.Matches(msg, m.keys.PitchUp):
		v := m.voice
		v.Pitch += 0.1
		return m, reading.SetVoiceCmd(m.ctrl, v)

	case key.Matches(msg, m.keys.PitchDown):
		v := m.voice
		v.Pitch -= 0.1
		return m, reading.SetVoiceCmd(m.ctrl, v)

	case key.Matches(msg, m.keys.Voices):
		voices := m.ctrl.Voices()
		if len(voices) == 0 {
			m.setNote("engine reports no voices", true, &cmds)
			return m, tea.Batch(cmds...)
		}
		m.picker = newVoicePicker(voices)
		m.showPicker = true
		return m, nil

	case key.Matches(msg, m.keys.AutoScroll):
		m.autoScroll = !m.autoScroll
		if m.autoScroll {
			m.setNote("auto-scroll on", false, &cmds)
		} else {
			m.setNote("auto-scroll off", false, &cmds)
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Copy):
		text := m.currentSentence()
		if text == "" {
			text = strings.Join(m.sentences, " ")
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.setNote(fmt.Sprintf("copy failed: %v", err), true, &cmds)
		} else {
			m.setNote("copied", false, &cmds)
		}
		return m, tea.Batch(cmds...)

	case key.Matches(msg, m.keys.Reload):
		if m.cfg.Path == "" {
			m.setNote("nothing to reload", true, &cmds)
			return m, tea.Batch(cmds...)
		}
		if m.snap.Active() {
			m.setNote("stop playback before reloading", true, &cmds)
			return m, tea.Batch(cmds...)
		}
		return m, reloadContent(m.cfg.Path, m.cfg.Filters)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.showPicker = false
		return m, nil
	}

	picker, chosen, cmd := m.picker.Update(msg)
	m.picker = picker
	if chosen != nil {
		m.showPicker = false
		v := m.voice
		v.VoiceID = chosen.ID
		return m, reading.SetVoiceCmd(m.ctrl, v)
	}
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "loading…"
	}

	body := m.viewport.View()
	if m.showPicker {
		body = lipgloss.Place(m.viewport.Width, m.viewport.Height,
			lipgloss.Center, lipgloss.Center, m.picker.View())
	}

	note := m.note
	if m.noteErr {
		note = errNoteStyle.Render(note)
	}

	return body + "\n" +
		statusBar(m.viewport.Width, m.snap, m.ctrl.Engine(), m.voice, note) + "\n" +
		m.help.View(m.keys)
}

// renderContent lays the sentences out in the viewport, one block each, and
// records the first line of every sentence for auto-scroll.
func (m *model) renderContent() {
	if !m.ready {
		return
	}
	width := m.viewport.Width - 2
	if m.cfg.MaxWidth > 0 && width > int(m.cfg.MaxWidth) {
		width = int(m.cfg.MaxWidth)
	}
	if width < 10 {
		width = 10
	}

	sentences := m.sentences
	if m.snap.Active() {
		// The controller's session sequence is authoritative while reading.
		sentences = m.ctrl.Sentences()
	}

	var b strings.Builder
	m.lineOf = make([]int, len(sentences))
	line := 0
	for i, s := range sentences {
		m.lineOf[i] = line
		block := wordwrap.String(s, width)

		style := sentenceStyle
		if m.snap.Active() {
			switch {
			case i == m.snap.CurrentIndex:
				style = highlightStyle
			case i < m.snap.CurrentIndex:
				style = spokenStyle
			}
		}
		for _, l := range strings.Split(block, "\n") {
			b.WriteString(style.Render(l))
			b.WriteString("\n")
			line++
		}
		b.WriteString("\n")
		line++
	}

	if len(sentences) == 0 {
		b.WriteString("no readable content found")
	}
	m.viewport.SetContent(b.String())
}

// scrollToCurrent keeps the active sentence visible when auto-scroll is on.
func (m *model) scrollToCurrent() {
	if !m.autoScroll || !m.ready || !m.snap.Active() {
		return
	}
	idx := m.snap.CurrentIndex
	if idx < 0 || idx >= len(m.lineOf) {
		return
	}
	target := m.lineOf[idx]
	top := m.viewport.YOffset
	bottom := top + m.viewport.Height - 1
	if target < top || target > bottom {
		offset := target - m.viewport.Height/3
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	}
}

func (m *model) currentSentence() string {
	if !m.snap.Active() {
		return ""
	}
	if s, ok := m.ctrl.Sentence(m.snap.CurrentIndex); ok {
		return s
	}
	return ""
}

func (m *model) setNote(note string, isErr bool, cmds *[]tea.Cmd) {
	m.note = note
	m.noteErr = isErr
	timeout := time.Duration(m.cfg.StatusTimeout) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	*cmds = append(*cmds, tea.Tick(timeout, func(time.Time) tea.Msg {
		return noteTimeoutMsg{}
	}))
}

func waitForSnapshot(ch chan reading.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(<-ch)
	}
}

func waitForFileChange(w *fsnotify.Watcher) tea.Cmd {
	return func() tea.Msg {
		for ev := range w.Events {
			if ev.Op.Has(fsnotify.Write) || ev.Op.Has(fsnotify.Create) {
				return fileChangedMsg{}
			}
		}
		return nil
	}
}

func reloadContent(path string, filters reading.FilterConfig) tea.Cmd {
	return func() tea.Msg {
		b, err := os.ReadFile(path)
		if err != nil {
			return contentReloadMsg{err: err}
		}
		content := string(b)
		if utils.IsMarkdownFile(path) {
			content, err = utils.MarkdownToHTML(content)
			if err != nil {
				return contentReloadMsg{err: err}
			}
		}
		return contentReloadMsg{
			content:   content,
			sentences: extract.New(filters).Sentences(content),
		}
	}
}
