package pipeline

import (
	"errors"
	"testing"
)

func TestLifecycle_HappyPath(t *testing.T) {
	l := NewLifecycle("req_abc123def456")

	if l.State() != StateReceived {
		t.Fatalf("initial state = %v, want RECEIVED", l.State())
	}
	if l.RequestID() != "req_abc123def456" {
		t.Errorf("RequestID = %q", l.RequestID())
	}

	sequence := []State{
		StateTranscribing,
		StateRedacting,
		StateClassifying,
		StateSynthesizing,
		StateComplete,
	}
	for _, next := range sequence {
		if err := l.Advance(next); err != nil {
			t.Fatalf("Advance(%v) failed: %v", next, err)
		}
		if l.State() != next {
			t.Fatalf("state = %v, want %v", l.State(), next)
		}
	}

	if !l.State().IsTerminal() {
		t.Error("COMPLETE should be terminal")
	}
}

func TestLifecycle_CannotSkipStages(t *testing.T) {
	l := NewLifecycle("req_x")

	if err := l.Advance(StateClassifying); err == nil {
		t.Error("expected error skipping from RECEIVED to CLASSIFYING")
	}
	if err := l.Advance(StateComplete); err == nil {
		t.Error("expected error skipping straight to COMPLETE")
	}
	if l.State() != StateReceived {
		t.Errorf("failed advance mutated state to %v", l.State())
	}
}

func TestLifecycle_CannotGoBackward(t *testing.T) {
	l := NewLifecycle("req_x")
	mustAdvance(t, l, StateTranscribing, StateRedacting)

	if err := l.Advance(StateTranscribing); err == nil {
		t.Error("expected error reversing to TRANSCRIBING")
	}
	if !errors.Is(l.Advance(StateTranscribing), ErrSkippedStage) {
		t.Error("reversal should wrap ErrSkippedStage")
	}
}

func TestLifecycle_FailFromAnyStage(t *testing.T) {
	tests := []struct {
		name     string
		advances []State
	}{
		{"from received", nil},
		{"from transcribing", []State{StateTranscribing}},
		{"from redacting", []State{StateTranscribing, StateRedacting}},
		{"from classifying", []State{StateTranscribing, StateRedacting, StateClassifying}},
		{"from synthesizing", []State{StateTranscribing, StateRedacting, StateClassifying, StateSynthesizing}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLifecycle("req_x")
			mustAdvance(t, l, tt.advances...)

			if !l.Fail() {
				t.Fatal("Fail returned false from non-terminal state")
			}
			if l.State() != StateErrored {
				t.Errorf("state = %v, want ERRORED", l.State())
			}
		})
	}
}

func TestLifecycle_TerminalStatesAreFinal(t *testing.T) {
	l := NewLifecycle("req_x")
	mustAdvance(t, l, StateTranscribing, StateRedacting, StateClassifying, StateSynthesizing, StateComplete)

	if err := l.Advance(StateErrored); !errors.Is(err, ErrRunFinished) {
		t.Errorf("Advance out of COMPLETE = %v, want ErrRunFinished", err)
	}
	if l.Fail() {
		t.Error("Fail should be rejected from COMPLETE")
	}

	failed := NewLifecycle("req_y")
	failed.Fail()
	if failed.Fail() {
		t.Error("Fail should be rejected from ERRORED")
	}
	if err := failed.Advance(StateTranscribing); !errors.Is(err, ErrRunFinished) {
		t.Errorf("Advance out of ERRORED = %v, want ErrRunFinished", err)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateReceived, "RECEIVED"},
		{StateTranscribing, "TRANSCRIBING"},
		{StateRedacting, "REDACTING"},
		{StateClassifying, "CLASSIFYING"},
		{StateSynthesizing, "SYNTHESIZING"},
		{StateComplete, "COMPLETE"},
		{StateErrored, "ERRORED"},
		{State(42), "UNKNOWN(42)"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func mustAdvance(t *testing.T, l *Lifecycle, states ...State) {
	t.Helper()
	for _, s := range states {
		if err := l.Advance(s); err != nil {
			t.Fatalf("setup: Advance(%v) failed: %v", s, err)
		}
	}
}
