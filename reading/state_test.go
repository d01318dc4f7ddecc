package reading_test

import (
	"testing"

	"github.com/recite-cli/recite/reading"
)

// TestStateTypeString tests the String() method for StateType.
func TestStateTypeString(t *testing.T) {
	tests := []struct {
		state    reading.StateType
		expected string
	}{
		{reading.StateIdle, "idle"},
		{reading.StateReading, "reading"},
		{reading.StatePaused, "paused"},
		{reading.StateStopping, "stopping"},
		{reading.StateType(999), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if result := tt.state.String(); result != tt.expected {
				t.Errorf("StateType.String() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestSnapshotActive tests the Active() method.
func TestSnapshotActive(t *testing.T) {
	tests := []struct {
		name     string
		snap     reading.Snapshot
		expected bool
	}{
		{
			name:     "reading is active",
			snap:     reading.Snapshot{State: reading.StateReading},
			expected: true,
		},
		{
			name:     "paused is active",
			snap:     reading.Snapshot{State: reading.StatePaused},
			expected: true,
		},
		{
			name:     "idle is not active",
			snap:     reading.Snapshot{State: reading.StateIdle},
			expected: false,
		},
		{
			name:     "stopping is not active",
			snap:     reading.Snapshot{State: reading.StateStopping},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := tt.snap.Active(); result != tt.expected {
				t.Errorf("Snapshot.Active() = %v, want %v", result, tt.expected)
			}
		})
	}
}

// TestSnapshotCapabilities tests CanPause, CanResume, and CanStop together.
func TestSnapshotCapabilities(t *testing.T) {
	tests := []struct {
		name      string
		state     reading.StateType
		canPause  bool
		canResume bool
		canStop   bool
	}{
		{"idle", reading.StateIdle, false, false, false},
		{"reading", reading.StateReading, true, false, true},
		{"paused", reading.StatePaused, false, true, true},
		{"stopping", reading.StateStopping, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := reading.Snapshot{State: tt.state}
			if got := snap.CanPause(); got != tt.canPause {
				t.Errorf("CanPause() = %v, want %v", got, tt.canPause)
			}
			if got := snap.CanResume(); got != tt.canResume {
				t.Errorf("CanResume() = %v, want %v", got, tt.canResume)
			}
			if got := snap.CanStop(); got != tt.canStop {
				t.Errorf("CanStop() = %v, want %v", got, tt.canStop)
			}
		})
	}
}

// TestStateMachineTransitions tests individual transition validity.
func TestStateMachineTransitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []reading.StateType // transitions applied before the attempt
		to      reading.StateType
		allowed bool
	}{
		{"idle to reading", nil, reading.StateReading, true},
		{"idle to paused", nil, reading.StatePaused, false},
		{"idle to stopping", nil, reading.StateStopping, false},
		{"idle to idle", nil, reading.StateIdle, false},
		{"reading to paused", []reading.StateType{reading.StateReading}, reading.StatePaused, true},
		{"reading to stopping", []reading.StateType{reading.StateReading}, reading.StateStopping, true},
		{"reading to idle", []reading.StateType{reading.StateReading}, reading.StateIdle, false},
		{"paused to reading", []reading.StateType{reading.StateReading, reading.StatePaused}, reading.StateReading, true},
		{"paused to stopping", []reading.StateType{reading.StateReading, reading.StatePaused}, reading.StateStopping, true},
		{"paused to idle", []reading.StateType{reading.StateReading, reading.StatePaused}, reading.StateIdle, false},
		{"stopping to idle", []reading.StateType{reading.StateReading, reading.StateStopping}, reading.StateIdle, true},
		{"stopping to reading", []reading.StateType{reading.StateReading, reading.StateStopping}, reading.StateReading, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := reading.NewStateMachine()
			for _, s := range tt.path {
				if !sm.Transition(s) {
					t.Fatalf("setup transition to %s failed", s)
				}
			}
			before := sm.Current()
			if got := sm.Transition(tt.to); got != tt.allowed {
				t.Errorf("Transition(%s) = %v, want %v", tt.to, got, tt.allowed)
			}
			if !tt.allowed && sm.Current() != before {
				t.Errorf("failed transition moved the machine: %s -> %s", before, sm.Current())
			}
			if tt.allowed && sm.Current() != tt.to {
				t.Errorf("Current() = %s after transition, want %s", sm.Current(), tt.to)
			}
		})
	}
}

// TestStateMachineFullCycle walks a complete session lifecycle.
func TestStateMachineFullCycle(t *testing.T) {
	sm := reading.NewStateMachine()
	steps := []reading.StateType{
		reading.StateReading,
		reading.StatePaused,
		reading.StateReading,
		reading.StateStopping,
		reading.StateIdle,
	}
	for _, s := range steps {
		if !sm.Transition(s) {
			t.Fatalf("transition to %s rejected at state %s", s, sm.Current())
		}
	}
	if sm.Current() != reading.StateIdle {
		t.Errorf("Current() = %s after full cycle, want idle", sm.Current())
	}
}
