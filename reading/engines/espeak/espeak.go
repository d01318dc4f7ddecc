// Package espeak implements a speech engine on top of the espeak-ng
// command-line synthesizer.
package espeak

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-audio/wav"

	"github.com/recite-cli/recite/internal/cache"
	"github.com/recite-cli/recite/reading"
	"github.com/recite-cli/recite/reading/audio"
)

// Config holds espeak-ng settings.
type Config struct {
	Binary       string        // binary name or path
	DefaultVoice string        // used when the utterance names no voice
	BaseWPM      int           // words per minute at rate 1.0
	Timeout      time.Duration // per-utterance synthesis timeout
}

// DefaultConfig returns the stock espeak-ng configuration.
func DefaultConfig() Config {
	return Config{
		Binary:       "espeak-ng",
		DefaultVoice: "en-us",
		BaseWPM:      175,
		Timeout:      30 * time.Second,
	}
}

// Engine synthesizes utterances with an espeak-ng subprocess and plays the
// resulting PCM through an audio.Sink. Synthesized audio is cached when a
// cache is provided.
type Engine struct {
	cfg    Config
	sink   audio.Sink
	cache  *cache.Disk
	logger *log.Logger
	events chan reading.Event

	mu       sync.Mutex
	cancelFn context.CancelFunc
	closed   bool

	voicesOnce sync.Once
	voices     []reading.Voice
}

// New creates the engine. The cache may be nil. Fails when the espeak-ng
// binary cannot be found.
func New(cfg Config, sink audio.Sink, c *cache.Disk, logger *log.Logger) (*Engine, error) {
	if cfg.Binary == "" {
		cfg = DefaultConfig()
	}
	if cfg.BaseWPM <= 0 {
		cfg.BaseWPM = 175
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		return nil, fmt.Errorf("espeak binary %q not found: %w", cfg.Binary, err)
	}

	return &Engine{
		cfg:    cfg,
		sink:   sink,
		cache:  c,
		logger: logger,
		events: make(chan reading.Event, 16),
	}, nil
}

// Name implements reading.Engine.
func (e *Engine) Name() string { return "espeak" }

// Speak implements reading.Engine. Synthesis and playback run in the
// background; completion or failure is emitted on Events.
func (e *Engine) Speak(u reading.Utterance) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return fmt.Errorf("espeak engine closed")
	}
	if e.cancelFn != nil {
		e.cancelFn()
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelFn = cancel
	e.mu.Unlock()

	go e.run(ctx, u)
	return nil
}

// Pause implements reading.Engine.
func (e *Engine) Pause() error { return e.sink.Pause() }

// Resume implements reading.Engine.
func (e *Engine) Resume() error { return e.sink.Resume() }

// Cancel implements reading.Engine.
func (e *Engine) Cancel() error {
	e.mu.Lock()
	if e.cancelFn != nil {
		e.cancelFn()
		e.cancelFn = nil
	}
	e.mu.Unlock()
	return e.sink.Stop()
}

// Events implements reading.Engine.
func (e *Engine) Events() <-chan reading.Event { return e.events }

// Close implements reading.Engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	if e.cancelFn != nil {
		e.cancelFn()
		e.cancelFn = nil
	}
	close(e.events)
	e.mu.Unlock()
	return e.sink.Close()
}

// Voices implements reading.Engine by parsing `espeak-ng --voices` output.
// The list is fetched once and memoized.
func (e *Engine) Voices() []reading.Voice {
	e.voicesOnce.Do(func() {
		out, err := exec.Command(e.cfg.Binary, "--voices").Output()
		if err != nil {
			e.logger.Warn("could not list espeak voices", "err", err)
			return
		}
		e.voices = parseVoices(string(out))
	})
	return e.voices
}

// run synthesizes and plays one utterance.
func (e *Engine) run(ctx context.Context, u reading.Utterance) {
	pcm, err := e.synthesize(ctx, u)
	if err != nil {
		if ctx.Err() != nil {
			return // cancelled, no event
		}
		e.emit(ctx, reading.Event{Type: reading.EventUtteranceError, Utterance: u, Err: err})
		return
	}

	done, err := e.sink.Play(pcm)
	if err != nil {
		e.emit(ctx, reading.Event{Type: reading.EventUtteranceError, Utterance: u,
			Err: fmt.Errorf("audio playback: %w", err)})
		return
	}

	select {
	case <-ctx.Done():
	case <-done:
		e.emit(ctx, reading.Event{Type: reading.EventUtteranceDone, Utterance: u})
	}
}

// synthesize produces 16-bit LE PCM for the utterance, consulting the cache
// first.
func (e *Engine) synthesize(ctx context.Context, u reading.Utterance) ([]byte, error) {
	voice := u.Voice
	if voice == "" {
		voice = e.cfg.DefaultVoice
	}

	var key string
	if e.cache != nil {
		key = cache.Key(e.Name(), voice, u.Rate, u.Pitch, u.Text)
		if pcm, ok := e.cache.Get(key); ok {
			return pcm, nil
		}
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	wpm := int(float64(e.cfg.BaseWPM) * u.Rate)
	cmd := exec.CommandContext(ctx, e.cfg.Binary,
		"--stdout",
		"-v", voice,
		"-s", strconv.Itoa(wpm),
		"-p", strconv.Itoa(espeakPitch(u.Pitch)),
	)
	cmd.Stdin = strings.NewReader(u.Text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("espeak failed: %w (%s)", err, strings.TrimSpace(stderr.String()))
	}

	pcm, err := decodeWAV(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("decode espeak output: %w", err)
	}

	if e.cache != nil {
		if err := e.cache.Put(key, pcm); err != nil {
			e.logger.Debug("could not cache utterance audio", "err", err)
		}
	}
	return pcm, nil
}

// emit delivers an event unless the utterance was cancelled or the engine
// closed meanwhile.
func (e *Engine) emit(ctx context.Context, ev reading.Event) {
	if ctx.Err() != nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	select {
	case e.events <- ev:
	default:
	}
}

// espeakPitch maps the [0.5,2.0] pitch multiplier onto espeak's 0-99 scale,
// anchored at 50 for 1.0.
func espeakPitch(pitch float64) int {
	if pitch <= 0 {
		pitch = 1.0
	}
	p := int(50 * pitch)
	if p > 99 {
		p = 99
	}
	if p < 0 {
		p = 0
	}
	return p
}

// decodeWAV extracts 16-bit LE PCM from a WAV blob.
func decodeWAV(b []byte) ([]byte, error) {
	d := wav.NewDecoder(bytes.NewReader(b))
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("empty audio")
	}

	pcm := make([]byte, len(buf.Data)*2)
	for i, sample := range buf.Data {
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(int16(sample)))
	}
	return pcm, nil
}

// parseVoices converts `espeak-ng --voices` tabular output into voices.
func parseVoices(out string) []reading.Voice {
	var voices []reading.Voice
	for i, line := range strings.Split(out, "\n") {
		if i == 0 { // header row
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		gender := "neutral"
		switch {
		case strings.Contains(fields[2], "M"):
			gender = "male"
		case strings.Contains(fields[2], "F"):
			gender = "female"
		}
		voices = append(voices, reading.Voice{
			ID:       fields[1],
			Name:     fields[3],
			Language: fields[1],
			Gender:   gender,
		})
	}
	return voices
}
