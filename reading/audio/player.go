// Package audio provides PCM playback for synthesized speech.
package audio

import (
	"bytes"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Sink is the playback surface speech engines write to. One stream plays at
// a time; Play supersedes any earlier stream.
type Sink interface {
	// Play starts playback of 16-bit little-endian PCM and returns a channel
	// closed when the stream finishes naturally. A stopped or superseded
	// stream never closes its channel.
	Play(pcm []byte) (<-chan struct{}, error)

	// Pause suspends the current stream.
	Pause() error

	// Resume continues a paused stream.
	Resume() error

	// Stop discards the current stream.
	Stop() error

	// Close releases the sink.
	Close() error
}

// Config describes the PCM format the sink accepts.
type Config struct {
	SampleRate int // Hz
	Channels   int // 1 = mono
}

// DefaultConfig matches espeak-ng's default output.
func DefaultConfig() Config {
	return Config{SampleRate: 22050, Channels: 1}
}

// Player implements Sink on an oto context. The PCM buffer for the active
// stream is pinned on the struct for the stream's lifetime; oto reads from
// it asynchronously.
type Player struct {
	ctx *oto.Context

	mu      sync.Mutex
	player  *oto.Player
	data    []byte
	paused  bool
	done    chan struct{}
	closed  bool
	watchID uint64
}

// NewPlayer opens an audio device for the given format. This blocks until
// the device is ready.
func NewPlayer(cfg Config) (*Player, error) {
	if cfg.SampleRate <= 0 || cfg.Channels <= 0 {
		return nil, fmt.Errorf("invalid audio config: %d Hz, %d channels", cfg.SampleRate, cfg.Channels)
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: cfg.Channels,
		Format:       oto.FormatSignedInt16LE,
	}
	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	return &Player{ctx: ctx}, nil
}

// Play implements Sink.
func (p *Player) Play(pcm []byte) (<-chan struct{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, fmt.Errorf("player is closed")
	}
	p.stopLocked()

	p.data = pcm
	p.player = p.ctx.NewPlayer(bytes.NewReader(p.data))
	p.paused = false
	p.done = make(chan struct{})
	p.watchID++

	p.player.Play()
	go p.watch(p.watchID, p.player, p.done)

	return p.done, nil
}

// Pause implements Sink.
func (p *Player) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Pause()
		p.paused = true
	}
	return nil
}

// Resume implements Sink.
func (p *Player) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.player != nil {
		p.player.Play()
		p.paused = false
	}
	return nil
}

// Stop implements Sink.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	return nil
}

// Close implements Sink.
func (p *Player) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
	p.closed = true
	return nil
}

// stopLocked discards the current stream. Caller holds mu.
func (p *Player) stopLocked() {
	if p.player == nil {
		return
	}
	p.watchID++ // orphan the watcher
	_ = p.player.Close()
	p.player = nil
	p.data = nil
	p.paused = false
	p.done = nil
}

// watch polls the oto player and closes done on natural completion. oto has
// no completion callback, so polling is the supported approach.
func (p *Player) watch(id uint64, player *oto.Player, done chan struct{}) {
	ticker := time.NewTicker(25 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		p.mu.Lock()
		if p.watchID != id {
			// Superseded or stopped.
			p.mu.Unlock()
			return
		}
		if p.paused {
			p.mu.Unlock()
			continue
		}
		if !player.IsPlaying() && player.UnplayedBufferSize() == 0 {
			p.stopLocked()
			p.mu.Unlock()
			close(done)
			return
		}
		p.mu.Unlock()
	}
}
