package reading

import "errors"

// Common errors for the reading controller.
var (
	// ErrNoSentences indicates extraction found no prose to read.
	ErrNoSentences = errors.New("no readable sentences found in content")
	// ErrSessionActive indicates a session is already running.
	ErrSessionActive = errors.New("a reading session is already active")
	// ErrNoSession indicates the operation needs an active session.
	ErrNoSession = errors.New("no active reading session")
	// ErrNotReading indicates the operation is only valid while reading.
	ErrNotReading = errors.New("not currently reading")
	// ErrNotPaused indicates the operation is only valid while paused.
	ErrNotPaused = errors.New("playback is not paused")
	// ErrControllerClosed indicates the controller has been shut down.
	ErrControllerClosed = errors.New("reading controller is closed")
	// ErrEngineBusy indicates the engine rejected a new utterance.
	ErrEngineBusy = errors.New("speech engine is busy")
	// ErrVoiceNotFound indicates the requested voice does not exist.
	ErrVoiceNotFound = errors.New("requested voice not found")
)
