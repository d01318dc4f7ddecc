// Package mock provides a scripted speech engine for tests and for running
// the UI without a synthesizer installed.
package mock

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/recite-cli/recite/reading"
)

// Engine implements reading.Engine without synthesizing anything. In manual
// mode (New) utterances stay in flight until CompleteCurrent or FailCurrent
// is called, which makes controller behavior fully deterministic. In auto
// mode (NewAuto) utterances complete on their own after a duration derived
// from word count and the utterance rate.
type Engine struct {
	mu      sync.Mutex
	events  chan reading.Event
	current *reading.Utterance
	paused  bool
	closed  bool

	auto  bool
	wpm   int
	timer *time.Timer

	speakErr error // returned by Speak when set
	failWith error // next utterance fails via event when set

	liveRate  float64
	livePitch float64

	speakCount  int
	pauseCount  int
	resumeCount int
	cancelCount int
}

// New creates a manual-mode engine.
func New() *Engine {
	return &Engine{
		events: make(chan reading.Event, 16),
	}
}

// NewAuto creates an engine whose utterances complete themselves, pacing at
// the given words per minute at rate 1.0.
func NewAuto(wpm int) *Engine {
	if wpm <= 0 {
		wpm = 150
	}
	e := New()
	e.auto = true
	e.wpm = wpm
	return e
}

// Name implements reading.Engine.
func (e *Engine) Name() string { return "mock" }

// Speak implements reading.Engine.
func (e *Engine) Speak(u reading.Utterance) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return errors.New("mock engine closed")
	}
	if e.speakErr != nil {
		return e.speakErr
	}

	e.speakCount++
	e.current = &u
	e.paused = false

	if e.auto {
		e.timer = time.AfterFunc(e.duration(u), func() {
			e.finish(u.ID, nil)
		})
	}
	return nil
}

// Pause implements reading.Engine.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseCount++
	e.paused = true
	if e.timer != nil {
		e.timer.Stop()
	}
	return nil
}

// Resume implements reading.Engine.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resumeCount++
	e.paused = false
	if e.auto && e.current != nil {
		u := *e.current
		e.timer = time.AfterFunc(e.duration(u), func() {
			e.finish(u.ID, nil)
		})
	}
	return nil
}

// Cancel implements reading.Engine. The cancelled utterance emits no event.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelCount++
	e.current = nil
	e.paused = false
	if e.timer != nil {
		e.timer.Stop()
	}
	return nil
}

// Voices implements reading.Engine.
func (e *Engine) Voices() []reading.Voice {
	return []reading.Voice{
		{ID: "mock-en-1", Name: "Mock English", Language: "en-US", Gender: "neutral"},
		{ID: "mock-en-2", Name: "Mock British", Language: "en-GB", Gender: "female"},
		{ID: "mock-zh-1", Name: "Mock Mandarin", Language: "zh-CN", Gender: "male"},
	}
}

// Events implements reading.Engine.
func (e *Engine) Events() <-chan reading.Event {
	return e.events
}

// Close implements reading.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.timer != nil {
		e.timer.Stop()
	}
	close(e.events)
	return nil
}

// AdjustLive implements reading.LiveAdjuster, recording the values for
// inspection.
func (e *Engine) AdjustLive(rate, pitch float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.liveRate = rate
	e.livePitch = pitch
	return nil
}

// CompleteCurrent finishes the in-flight utterance naturally. Returns false
// when nothing is in flight.
func (e *Engine) CompleteCurrent() bool {
	e.mu.Lock()
	u := e.current
	e.mu.Unlock()
	if u == nil {
		return false
	}
	e.finish(u.ID, e.takeFailure())
	return true
}

// FailCurrent fails the in-flight utterance with err.
func (e *Engine) FailCurrent(err error) bool {
	e.mu.Lock()
	u := e.current
	e.mu.Unlock()
	if u == nil {
		return false
	}
	e.finish(u.ID, err)
	return true
}

// SetSpeakError makes Speak return err synchronously. Pass nil to clear.
func (e *Engine) SetSpeakError(err error) {
	e.mu.Lock()
	e.speakErr = err
	e.mu.Unlock()
}

// FailNextWith makes the next CompleteCurrent deliver an error event
// instead of a completion.
func (e *Engine) FailNextWith(err error) {
	e.mu.Lock()
	e.failWith = err
	e.mu.Unlock()
}

// Current returns the in-flight utterance, if any.
func (e *Engine) Current() (reading.Utterance, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return reading.Utterance{}, false
	}
	return *e.current, true
}

// Counts returns the number of Speak, Pause, Resume, and Cancel calls.
func (e *Engine) Counts() (speak, pause, resume, cancel int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speakCount, e.pauseCount, e.resumeCount, e.cancelCount
}

// LiveAdjustment returns the last live rate/pitch pushed onto the engine.
func (e *Engine) LiveAdjustment() (rate, pitch float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.liveRate, e.livePitch
}

// finish emits the terminal event for utterance id unless it has been
// cancelled or superseded.
func (e *Engine) finish(id uint64, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed || e.current == nil || e.current.ID != id || e.paused {
		return
	}
	u := *e.current
	e.current = nil

	ev := reading.Event{Type: reading.EventUtteranceDone, Utterance: u}
	if err != nil {
		ev = reading.Event{Type: reading.EventUtteranceError, Utterance: u, Err: err}
	}
	select {
	case e.events <- ev:
	default:
		// Nobody is draining events; drop rather than block.
	}
}

func (e *Engine) takeFailure() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	err := e.failWith
	e.failWith = nil
	return err
}

// duration estimates speaking time for an utterance at its rate.
func (e *Engine) duration(u reading.Utterance) time.Duration {
	words := len(strings.Fields(u.Text))
	if words == 0 {
		words = 1
	}
	rate := u.Rate
	if rate <= 0 {
		rate = 1.0
	}
	seconds := float64(words) * 60.0 / (float64(e.wpm) * rate)
	d := time.Duration(seconds * float64(time.Second))
	if d < 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}
