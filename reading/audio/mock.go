package audio

import (
	"fmt"
	"sync"
)

// MockSink implements Sink in memory for tests. Streams complete when
// CompleteCurrent is called.
type MockSink struct {
	mu      sync.Mutex
	done    chan struct{}
	current []byte
	closed  bool

	playCount   int
	pauseCount  int
	resumeCount int
	stopCount   int
}

// NewMockSink creates an idle mock sink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// Play implements Sink.
func (m *MockSink) Play(pcm []byte) (<-chan struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil, fmt.Errorf("mock sink closed")
	}
	m.playCount++
	m.current = pcm
	m.done = make(chan struct{})
	return m.done, nil
}

// Pause implements Sink.
func (m *MockSink) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pauseCount++
	return nil
}

// Resume implements Sink.
func (m *MockSink) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeCount++
	return nil
}

// Stop implements Sink.
func (m *MockSink) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCount++
	m.done = nil
	m.current = nil
	return nil
}

// Close implements Sink.
func (m *MockSink) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CompleteCurrent finishes the active stream naturally.
func (m *MockSink) CompleteCurrent() bool {
	m.mu.Lock()
	done := m.done
	m.done = nil
	m.current = nil
	m.mu.Unlock()
	if done == nil {
		return false
	}
	close(done)
	return true
}

// Current returns the PCM of the active stream.
func (m *MockSink) Current() ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current, m.current != nil
}

// Counts returns the number of Play, Pause, Resume, and Stop calls.
func (m *MockSink) Counts() (play, pause, resume, stop int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playCount, m.pauseCount, m.resumeCount, m.stopCount
}
