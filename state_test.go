package evq

import "testing"

func TestFastState_InitialAwake(t *testing.T) {
	s := newFastState()
	if s.Load() != StateAwake {
		t.Fatalf("initial state = %v, want Awake", s.Load())
	}
}

func TestFastState_TryTransition(t *testing.T) {
	s := newFastState()
	if !s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("expected Awake->Running to succeed")
	}
	if s.TryTransition(StateAwake, StateRunning) {
		t.Fatal("expected a second Awake->Running to fail (already Running)")
	}
	if s.Load() != StateRunning {
		t.Fatalf("state = %v, want Running", s.Load())
	}
}

func TestFastState_TransitionAny(t *testing.T) {
	s := newFastState()
	s.Store(StateSleeping)
	if !s.TransitionAny([]QueueState{StateRunning, StateSleeping}, StateTerminating) {
		t.Fatal("expected TransitionAny to match Sleeping")
	}
	if s.Load() != StateTerminating {
		t.Fatalf("state = %v, want Terminating", s.Load())
	}
}

func TestFastState_IsTerminal(t *testing.T) {
	s := newFastState()
	if s.IsTerminal() {
		t.Fatal("fresh state should not be terminal")
	}
	s.Store(StateTerminated)
	if !s.IsTerminal() {
		t.Fatal("expected Terminated to be terminal")
	}
}

func TestQueueState_String(t *testing.T) {
	cases := map[QueueState]string{
		StateAwake:       "Awake",
		StateRunning:     "Running",
		StateSleeping:    "Sleeping",
		StateTerminating: "Terminating",
		StateTerminated:  "Terminated",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
