// Package scheduler provides the session state machine for CADENCE.
//
// This file implements the scheduler state machine, which enforces valid
// state transitions for one invocation. Every transition has one defined
// trigger and one defined set of side effects (see scheduler.go).
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/cli, internal/agent, internal/git
package scheduler

import (
	"fmt"

	cadenceerrors "github.com/mrz1836/cadence/internal/errors"
)

// State is one state of the scheduler state machine.
type State string

// Scheduler states.
const (
	// StateIdle waits for a session to start. The external stop signal is
	// checked only here, so cancellation always lands on a clean
	// RECORDING-committed boundary.
	StateIdle State = "idle"

	// StateSelecting computes the ready set and chooses the next feature.
	StateSelecting State = "selecting"

	// StateImplementing delegates to the external implement collaborator.
	StateImplementing State = "implementing"

	// StateVerifying delegates to the external verification collaborator.
	StateVerifying State = "verifying"

	// StateRecording writes the session outcome back to the feature store.
	StateRecording State = "recording"

	// StateDone means every feature passes. Terminal for the invocation.
	StateDone State = "done"

	// StateBlocked means unpassed features remain but none are ready.
	// Terminal for the invocation.
	StateBlocked State = "blocked"
)

// ValidTransitions defines all allowed state transitions.
// Format: from_state -> []to_states
//
// The state machine follows this flow:
//
//	Idle → Selecting
//	Selecting → Implementing, Done, Blocked
//	Implementing → Verifying, Recording
//	Verifying → Recording
//	Recording → Idle
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[State][]State{
	StateIdle:         {StateSelecting},
	StateSelecting:    {StateImplementing, StateDone, StateBlocked},
	StateImplementing: {StateVerifying, StateRecording},
	StateVerifying:    {StateRecording},
	StateRecording:    {StateIdle},
}

// terminalStates defines states where no further transitions are allowed
// within one invocation. The caller decides whether Blocked is surfaced as
// an error and Done as a success.
//
//nolint:gochecknoglobals // Read-only lookup table for terminal state checks
var terminalStates = map[State]bool{
	StateDone:    true,
	StateBlocked: true,
}

// IsValidTransition checks if a transition from one state to another is allowed.
// Returns false for transitions from terminal states or to the same state.
func IsValidTransition(from, to State) bool {
	if from == to {
		return false
	}
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false // Terminal state or unknown state
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// IsTerminalState returns true for states that end the invocation.
// Terminal states: Done, Blocked.
func IsTerminalState(state State) bool {
	return terminalStates[state]
}

// transition validates and applies a state change on the scheduler,
// notifying metrics. Returns wrapped ErrInvalidTransition when the move
// is not in the transitions table.
func (s *Scheduler) transition(to State) error {
	from := s.state
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			cadenceerrors.ErrInvalidTransition, from, to)
	}
	s.state = to
	s.metrics.StateTransition(from, to)
	s.logger.Debug().
		Str("from", string(from)).
		Str("to", string(to)).
		Msg("scheduler state transition")
	return nil
}
