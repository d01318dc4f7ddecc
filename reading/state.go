package reading

// StateType represents the current state of a reading session.
type StateType int

const (
	// StateIdle indicates no reading session is active.
	StateIdle StateType = iota
	// StateReading indicates sentences are being spoken.
	StateReading
	// StatePaused indicates an active session is suspended.
	StatePaused
	// StateStopping indicates a session is being torn down.
	StateStopping
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReading:
		return "reading"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Snapshot is a point-in-time view of the transport state. IsPaused implies
// IsReading; CurrentIndex is always less than the sentence count while a
// session is active and zero otherwise.
type Snapshot struct {
	State           StateType
	IsReading       bool
	IsPaused        bool
	CurrentIndex    int
	TotalSentences  int
	ProgressPercent int
	LastError       error
}

// Active returns true while a session holds the engine.
func (s Snapshot) Active() bool {
	return s.State == StateReading || s.State == StatePaused
}

// CanPause returns true if playback can be suspended.
func (s Snapshot) CanPause() bool {
	return s.State == StateReading
}

// CanResume returns true if playback can be resumed.
func (s Snapshot) CanResume() bool {
	return s.State == StatePaused
}

// CanStop returns true if the session can be stopped.
func (s Snapshot) CanStop() bool {
	return s.State != StateIdle && s.State != StateStopping
}

// StateMachine manages transport state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
}

// NewStateMachine creates a state machine with the valid transport
// transitions: Idle -> Reading <-> Paused, with Stopping -> Idle reachable
// from any active state.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:     {StateReading},
			StateReading:  {StatePaused, StateStopping},
			StatePaused:   {StateReading, StateStopping},
			StateStopping: {StateIdle},
		},
	}
}

// Transition attempts to move to the given state. It returns false and leaves
// the machine untouched when the transition is not in the table.
func (sm *StateMachine) Transition(to StateType) bool {
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			sm.current = to
			return true
		}
	}
	return false
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}
