package evq

import (
	"sync/atomic"
)

// QueueState represents the lifecycle state of a Queue's dispatch loop.
//
// State Machine:
//
//	StateAwake (0) → StateRunning (3)       [Loop() entry]
//	StateRunning (3) → StateSleeping (2)    [blocked in backend.wait]
//	StateSleeping (2) → StateRunning (3)    [wait returns]
//	StateRunning (3) → StateTerminating (4) [Stop() observed]
//	StateSleeping (2) → StateTerminating (4) [Stop() observed on wake]
//	StateTerminating (4) → StateTerminated (1) [Close()]
//	StateTerminated (1) → (terminal)
//
// Value ordering (Terminated=1, Sleeping=2) mirrors the upstream
// event-loop state machine this was adapted from.
type QueueState uint64

const (
	StateAwake       QueueState = 0
	StateTerminated  QueueState = 1
	StateSleeping    QueueState = 2
	StateRunning     QueueState = 3
	StateTerminating QueueState = 4
)

func (s QueueState) String() string {
	switch s {
	case StateAwake:
		return "Awake"
	case StateRunning:
		return "Running"
	case StateSleeping:
		return "Sleeping"
	case StateTerminating:
		return "Terminating"
	case StateTerminated:
		return "Terminated"
	default:
		return "Unknown"
	}
}

// fastState is a lock-free state machine with cache-line padding, used to
// track a Queue's lifecycle across concurrent Loop/Stop/Close callers
// without a mutex.
type fastState struct { // betteralign:ignore
	_ [64]byte
	v atomic.Uint64
	_ [56]byte
}

func newFastState() *fastState {
	s := &fastState{}
	s.v.Store(uint64(StateAwake))
	return s
}

func (s *fastState) Load() QueueState { return QueueState(s.v.Load()) }

func (s *fastState) Store(state QueueState) { s.v.Store(uint64(state)) }

func (s *fastState) TryTransition(from, to QueueState) bool {
	return s.v.CompareAndSwap(uint64(from), uint64(to))
}

func (s *fastState) TransitionAny(validFrom []QueueState, to QueueState) bool {
	for _, from := range validFrom {
		if s.v.CompareAndSwap(uint64(from), uint64(to)) {
			return true
		}
	}
	return false
}

func (s *fastState) IsTerminal() bool { return s.Load() == StateTerminated }
