// Package reading drives sentence-by-sentence speech playback of article
// content: it extracts prose sentences, owns the speech engine for the
// duration of a session, and exposes the transport controls (play, pause,
// resume, stop, next, previous).
package reading

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/recite-cli/recite/reading/extract"
)

// Extractor produces the ordered sentence sequence for a session.
type Extractor interface {
	Sentences(content string) []string
}

// DefaultPaceInterval is the delay between one utterance finishing and the
// next being dispatched. Re-entering an engine immediately after completion
// glitches several backends.
const DefaultPaceInterval = 300 * time.Millisecond

// Options configures a Controller.
type Options struct {
	// Guard arbitrates engine ownership across controllers. A private guard
	// is created when nil.
	Guard *Guard

	// PaceInterval is the inter-sentence dispatch delay. Zero disables
	// pacing; a negative value selects DefaultPaceInterval.
	PaceInterval time.Duration

	// Voice is the initial voice configuration.
	Voice VoiceSettings

	// Filters is the initial extraction filter configuration.
	Filters FilterConfig

	// NewExtractor builds the extractor for a session from the filters in
	// effect at start time. Defaults to the HTML extractor.
	NewExtractor func(FilterConfig) Extractor

	// Logger receives controller diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Controller is the transport controller for one reading surface. All
// methods are safe for concurrent use; engine events are folded into state
// by a single event loop so the transition sequence is deterministic.
type Controller struct {
	engine       Engine
	guard        *Guard
	newExtractor func(FilterConfig) Extractor
	pace         time.Duration
	logger       *log.Logger

	mu        sync.Mutex
	machine   *StateMachine
	sentences []string
	index     int
	progress  int
	dispatch  uint64 // current utterance generation; bumped on every cancel
	deferred  bool   // a dispatch is owed on resume (seek while paused)
	voice     VoiceSettings
	filters   FilterConfig
	token     *Token
	lastErr   error
	closed    bool

	onChange func(Snapshot)

	loopCtx    context.Context
	loopCancel context.CancelFunc
	loopDone   chan struct{}
}

// NewController creates a controller around the given engine and starts its
// event loop. The caller owns the engine's lifetime through Close.
func NewController(engine Engine, opts Options) *Controller {
	if opts.Guard == nil {
		opts.Guard = NewGuard()
	}
	if opts.PaceInterval < 0 {
		opts.PaceInterval = DefaultPaceInterval
	}
	if opts.NewExtractor == nil {
		opts.NewExtractor = func(f FilterConfig) Extractor {
			return extract.New(f)
		}
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Voice == (VoiceSettings{}) {
		opts.Voice = DefaultVoiceSettings()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		engine:       engine,
		guard:        opts.Guard,
		newExtractor: opts.NewExtractor,
		pace:         opts.PaceInterval,
		logger:       opts.Logger,
		machine:      NewStateMachine(),
		voice:        opts.Voice.Clamped(),
		filters:      opts.Filters,
		loopCtx:      ctx,
		loopCancel:   cancel,
		loopDone:     make(chan struct{}),
	}

	go c.eventLoop()
	return c
}

// Start begins a reading session: extracts sentences from content with the
// current filter configuration, acquires the engine, and dispatches the
// first utterance. Valid only while idle. Content without prose fails with
// ErrNoSentences and the controller stays idle.
func (c *Controller) Start(content string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrControllerClosed
	}
	if c.machine.Current() != StateIdle {
		c.mu.Unlock()
		return ErrSessionActive
	}
	filters := c.filters
	c.mu.Unlock()

	sentences := c.newExtractor(filters).Sentences(content)
	if len(sentences) == 0 {
		return ErrNoSentences
	}

	// Acquire outside the controller lock: displacing the previous owner
	// calls back into its controller.
	token := c.guard.Acquire(c.forceStop)

	c.mu.Lock()
	if c.closed || c.machine.Current() != StateIdle || !token.Valid() {
		closed := c.closed
		c.mu.Unlock()
		c.guard.Release(token)
		if closed {
			return ErrControllerClosed
		}
		return ErrSessionActive
	}

	c.sentences = sentences
	c.index = 0
	c.progress = 0
	c.deferred = false
	c.lastErr = nil
	c.token = token
	c.machine.Transition(StateReading)

	c.logger.Debug("reading session started", "sentences", len(sentences))
	c.speakFromCurrentLocked()
	c.mu.Unlock()

	c.notifyChange()
	return nil
}

// Pause suspends the engine without changing the sentence index. Valid only
// while reading.
func (c *Controller) Pause() error {
	c.mu.Lock()
	if c.machine.Current() != StateReading {
		c.mu.Unlock()
		return ErrNotReading
	}
	c.machine.Transition(StatePaused)
	err := c.engine.Pause()
	c.mu.Unlock()

	c.notifyChange()
	if err != nil {
		return fmt.Errorf("engine pause: %w", err)
	}
	return nil
}

// Resume continues playback from the paused position. Valid only while
// paused. When a seek happened during the pause, the deferred utterance is
// dispatched instead of resuming the cancelled one.
func (c *Controller) Resume() error {
	c.mu.Lock()
	if c.machine.Current() != StatePaused {
		c.mu.Unlock()
		return ErrNotPaused
	}
	c.machine.Transition(StateReading)

	var err error
	if c.deferred {
		c.deferred = false
		c.speakFromCurrentLocked()
	} else {
		err = c.engine.Resume()
	}
	c.mu.Unlock()

	c.notifyChange()
	if err != nil {
		return fmt.Errorf("engine resume: %w", err)
	}
	return nil
}

// Toggle pauses while reading, resumes while paused.
func (c *Controller) Toggle() error {
	c.mu.Lock()
	state := c.machine.Current()
	c.mu.Unlock()

	switch state {
	case StateReading:
		return c.Pause()
	case StatePaused:
		return c.Resume()
	default:
		return ErrNoSession
	}
}

// Stop cancels the engine and tears the session down, resetting index and
// progress to zero. Valid from any non-idle state.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if !c.snapshotLocked().CanStop() {
		c.mu.Unlock()
		return ErrNoSession
	}
	c.stopLocked()
	c.mu.Unlock()

	c.notifyChange()
	return nil
}

// Next seeks to the following sentence. A no-op at the last sentence.
func (c *Controller) Next() error {
	return c.seekBy(1)
}

// Previous seeks to the preceding sentence. A no-op at the first sentence.
func (c *Controller) Previous() error {
	return c.seekBy(-1)
}

// seekBy cancels the in-flight utterance and re-dispatches at the clamped
// target index. The reading/paused split is preserved: while paused the
// dispatch is deferred until resume.
func (c *Controller) seekBy(delta int) error {
	c.mu.Lock()
	state := c.machine.Current()
	if state != StateReading && state != StatePaused {
		c.mu.Unlock()
		return ErrNoSession
	}

	target := c.index + delta
	if target < 0 {
		target = 0
	}
	if target > len(c.sentences)-1 {
		target = len(c.sentences) - 1
	}
	if target == c.index {
		c.mu.Unlock()
		return nil
	}

	// Cancel before any transition that changes the active sentence so two
	// utterances can never overlap.
	if err := c.engine.Cancel(); err != nil {
		c.logger.Warn("engine cancel failed during seek", "err", err)
	}
	c.dispatch++
	c.index = target
	c.progress = percent(c.index, len(c.sentences))

	if state == StateReading {
		c.speakFromCurrentLocked()
	} else {
		c.deferred = true
	}
	c.mu.Unlock()

	c.notifyChange()
	return nil
}

// SetVoice updates voice settings. Takes effect on the next utterance
// dispatch; rate and pitch are additionally pushed live onto the in-flight
// utterance when the engine supports it.
func (c *Controller) SetVoice(v VoiceSettings) {
	c.mu.Lock()
	c.voice = v.Clamped()
	active := c.snapshotLocked().Active()
	voice := c.voice
	c.mu.Unlock()

	if active {
		if adj, ok := c.engine.(LiveAdjuster); ok {
			if err := adj.AdjustLive(voice.Rate, voice.Pitch); err != nil {
				c.logger.Debug("live rate/pitch adjustment not applied", "err", err)
			}
		}
	}
	c.notifyChange()
}

// VoiceSettings returns the current voice configuration.
func (c *Controller) VoiceSettings() VoiceSettings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// SetFilters updates the extraction filter configuration. Filters apply at
// the next session start, never mid-playback.
func (c *Controller) SetFilters(f FilterConfig) {
	c.mu.Lock()
	c.filters = f
	c.mu.Unlock()
}

// Filters returns the current filter configuration.
func (c *Controller) Filters() FilterConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters
}

// Voices lists the engine's available voices.
func (c *Controller) Voices() []Voice {
	return c.engine.Voices()
}

// Engine returns the engine name for display.
func (c *Controller) Engine() string {
	return c.engine.Name()
}

// Sentence returns the sentence at the given session index.
func (c *Controller) Sentence(i int) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.sentences) {
		return "", false
	}
	return c.sentences[i], true
}

// Sentences returns a copy of the session's sentence sequence.
func (c *Controller) Sentences() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.sentences))
	copy(out, c.sentences)
	return out
}

// Snapshot returns the current transport state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// OnChange registers a callback invoked after every observable state change.
// The callback runs outside the controller lock.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// Close force-cancels any active playback, stops the event loop, and closes
// the engine. The controller may not be used afterwards.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if c.snapshotLocked().CanStop() {
		c.stopLocked()
	}
	c.mu.Unlock()

	c.loopCancel()
	<-c.loopDone
	return c.engine.Close()
}

// forceStop is handed to the guard so a competing session can displace this
// one, and reused by Close. Safe to call in any state.
func (c *Controller) forceStop() {
	c.mu.Lock()
	stopped := false
	if c.snapshotLocked().CanStop() {
		c.stopLocked()
		stopped = true
	}
	c.mu.Unlock()

	if stopped {
		c.notifyChange()
	}
}

// stopLocked performs the stop sequence. Caller holds mu and has verified
// CanStop.
func (c *Controller) stopLocked() {
	if err := c.engine.Cancel(); err != nil {
		c.logger.Warn("engine cancel failed during stop", "err", err)
	}
	c.dispatch++
	c.machine.Transition(StateStopping)
	c.machine.Transition(StateIdle)
	c.sentences = nil
	c.index = 0
	c.progress = 0
	c.deferred = false
	c.guard.Release(c.token)
	c.token = nil
	c.logger.Debug("reading session stopped")
}

// completeLocked finishes a session after the last sentence. Progress is
// pinned at 100, unlike stop which resets it.
func (c *Controller) completeLocked() {
	c.dispatch++
	c.machine.Transition(StateStopping)
	c.machine.Transition(StateIdle)
	c.sentences = nil
	c.index = 0
	c.progress = 100
	c.deferred = false
	c.guard.Release(c.token)
	c.token = nil
	c.logger.Debug("reading session complete")
}

// speakFromCurrentLocked dispatches the utterance at the current index,
// skipping forward past sentences the engine refuses outright. Failure to
// speak is never fatal to the session; if every remaining sentence is
// refused the session completes. Caller holds mu.
func (c *Controller) speakFromCurrentLocked() {
	for c.index < len(c.sentences) {
		c.dispatch++
		u := Utterance{
			ID:    c.dispatch,
			Index: c.index,
			Text:  c.sentences[c.index],
			Voice: c.voice.VoiceID,
			Rate:  c.voice.Rate,
			Pitch: c.voice.Pitch,
		}
		err := c.engine.Speak(u)
		if err == nil {
			return
		}
		c.lastErr = err
		c.logger.Warn("utterance dispatch failed, skipping sentence",
			"index", c.index, "err", err)
		c.index++
		c.progress = percent(c.index, len(c.sentences))
	}
	c.completeLocked()
}

// eventLoop folds engine events into controller state until Close.
func (c *Controller) eventLoop() {
	defer close(c.loopDone)
	for {
		select {
		case <-c.loopCtx.Done():
			return
		case ev, ok := <-c.engine.Events():
			if !ok {
				return
			}
			c.handleEvent(ev)
		}
	}
}

// handleEvent processes one utterance completion or failure.
func (c *Controller) handleEvent(ev Event) {
	c.mu.Lock()
	if ev.Utterance.ID != c.dispatch {
		// Stale event from a cancelled or superseded utterance.
		c.mu.Unlock()
		return
	}
	state := c.machine.Current()
	if state != StateReading && state != StatePaused {
		c.mu.Unlock()
		return
	}

	if ev.Type == EventUtteranceError {
		// Skip-on-error: the failure is logged and the session continues
		// with the next sentence.
		c.lastErr = ev.Err
		c.logger.Warn("utterance failed, advancing",
			"index", ev.Utterance.Index, "err", ev.Err)
	}

	c.index++
	if c.index >= len(c.sentences) {
		c.completeLocked()
		c.mu.Unlock()
		c.notifyChange()
		return
	}
	c.progress = percent(c.index, len(c.sentences))
	gen := c.dispatch
	c.mu.Unlock()
	c.notifyChange()

	// Inter-sentence pacing happens outside the lock; transport commands
	// issued during the wait win via the generation check below.
	if c.pace > 0 {
		timer := time.NewTimer(c.pace)
		select {
		case <-c.loopCtx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	c.mu.Lock()
	if c.dispatch != gen {
		c.mu.Unlock()
		return
	}
	switch c.machine.Current() {
	case StateReading:
		c.speakFromCurrentLocked()
	case StatePaused:
		// Completion raced with pause: owe the dispatch to resume.
		c.deferred = true
	}
	c.mu.Unlock()
	c.notifyChange()
}

// snapshotLocked builds a Snapshot. Caller holds mu.
func (c *Controller) snapshotLocked() Snapshot {
	state := c.machine.Current()
	return Snapshot{
		State:           state,
		IsReading:       state == StateReading || state == StatePaused,
		IsPaused:        state == StatePaused,
		CurrentIndex:    c.index,
		TotalSentences:  len(c.sentences),
		ProgressPercent: c.progress,
		LastError:       c.lastErr,
	}
}

func (c *Controller) notifyChange() {
	c.mu.Lock()
	fn := c.onChange
	snap := c.snapshotLocked()
	c.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}

func percent(index, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(index) / float64(total) * 100))
}
