// Package pipeline sequences one request through transcription, redaction,
// classification and synthesis, with per-stage timeouts and fallbacks.
package pipeline

import (
	"errors"
	"fmt"
	"sync"
)

// State represents the lifecycle state of one pipeline run.
type State int

const (
	// StateReceived - request accepted, nothing executed yet.
	StateReceived State = iota
	// StateTranscribing - audio handed to the STT provider.
	StateTranscribing
	// StateRedacting - transcript passing through the redaction engine
	// (a pass-through when privacy mode is off, but always entered).
	StateRedacting
	// StateClassifying - transcript being scored for intent.
	StateClassifying
	// StateSynthesizing - response text handed to the TTS provider.
	StateSynthesizing
	// StateComplete - run finished; result assembled.
	StateComplete
	// StateErrored - run aborted. Terminal, reachable from any stage.
	StateErrored
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateReceived:
		return "RECEIVED"
	case StateTranscribing:
		return "TRANSCRIBING"
	case StateRedacting:
		return "REDACTING"
	case StateClassifying:
		return "CLASSIFYING"
	case StateSynthesizing:
		return "SYNTHESIZING"
	case StateComplete:
		return "COMPLETE"
	case StateErrored:
		return "ERRORED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", s)
	}
}

// IsTerminal returns true for COMPLETE and ERRORED.
func (s State) IsTerminal() bool {
	return s == StateComplete || s == StateErrored
}

// Errors for invalid state transitions.
var (
	ErrRunFinished  = errors.New("pipeline run already finished")
	ErrSkippedStage = errors.New("pipeline stages cannot be skipped or reordered")
)

// Lifecycle manages the state machine for a single pipeline run.
// Thread-safe for concurrent access.
//
// State transitions:
//
//	RECEIVED → TRANSCRIBING → REDACTING → CLASSIFYING → SYNTHESIZING → COMPLETE
//	    │            │            │            │             │
//	    └────────────┴────────────┴────────────┴─────────────┴──→ ERRORED
//
// Stages advance strictly in order; no stage may be skipped. REDACTING is
// entered even when privacy mode is off (the engine just isn't invoked).
type Lifecycle struct {
	mu        sync.RWMutex
	requestID string
	state     State
}

// NewLifecycle creates a run lifecycle in RECEIVED state.
func NewLifecycle(requestID string) *Lifecycle {
	return &Lifecycle{
		requestID: requestID,
		state:     StateReceived,
	}
}

// RequestID returns the correlation id of the run.
func (l *Lifecycle) RequestID() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.requestID
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Advance moves the run to next, which must be exactly the following
// stage in the sequence. Returns an error for skips, reversals, or
// transitions out of a terminal state.
func (l *Lifecycle) Advance(next State) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state.IsTerminal() {
		return ErrRunFinished
	}
	if next != l.state+1 || next == StateErrored {
		return fmt.Errorf("%w: %v → %v", ErrSkippedStage, l.state, next)
	}
	l.state = next
	return nil
}

// Fail transitions the run to ERRORED from any non-terminal state.
// Returns false if the run already finished.
func (l *Lifecycle) Fail() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.IsTerminal() {
		return false
	}
	l.state = StateErrored
	return true
}
