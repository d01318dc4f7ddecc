package reading

// Engine is the speech synthesis collaborator driven by the Controller. It is
// deliberately narrow: one utterance is in flight at a time, completion and
// failure are delivered asynchronously on the Events channel, and Cancel is
// synchronous so the Controller can guarantee no two utterances overlap.
type Engine interface {
	// Name identifies the engine for logs and the UI status bar.
	Name() string

	// Speak starts speaking the utterance. It returns once the utterance has
	// been accepted; completion arrives later as an Event carrying the same
	// utterance ID.
	Speak(u Utterance) error

	// Pause suspends the in-flight utterance.
	Pause() error

	// Resume continues a paused utterance.
	Resume() error

	// Cancel discards the in-flight utterance, if any. No event is emitted
	// for a cancelled utterance.
	Cancel() error

	// Voices lists the voices the engine can speak with.
	Voices() []Voice

	// Events delivers utterance completion and failure notifications.
	Events() <-chan Event

	// Close releases engine resources. The engine may not be used afterwards.
	Close() error
}

// LiveAdjuster is an optional Engine extension for pushing rate and pitch
// changes onto the in-flight utterance. Support is best-effort; engines that
// cannot retune mid-utterance simply don't implement it.
type LiveAdjuster interface {
	AdjustLive(rate, pitch float64) error
}

// Utterance is one unit of synthesized speech, corresponding to one extracted
// sentence.
type Utterance struct {
	ID    uint64 // dispatch generation, echoed back in events
	Index int    // sentence index within the session
	Text  string
	Voice string
	Rate  float64
	Pitch float64
}

// Voice describes a voice an engine can synthesize with.
type Voice struct {
	ID       string
	Name     string
	Language string // BCP 47 tag, e.g. "en-US"
	Gender   string
}

// EventType identifies the kind of engine event.
type EventType int

const (
	// EventUtteranceDone signals natural completion of an utterance.
	EventUtteranceDone EventType = iota
	// EventUtteranceError signals that synthesis or playback failed.
	EventUtteranceError
)

// Event is an asynchronous notification from an Engine.
type Event struct {
	Type      EventType
	Utterance Utterance
	Err       error
}
