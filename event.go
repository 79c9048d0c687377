package evq

import "time"

// Infinite is the sentinel timeout meaning "no deadline".
const Infinite = time.Duration(-1)

// Callback is the plain-function callback shape: invoked synchronously on
// the loop thread with the dispatch tuple described in the callback ABI.
//
// Arguments: queue, event id, fd/handle userdata (nil if none), readable,
// writable, the fired timeout (nil if the wake wasn't a timeout), and the
// EOF/filter byte (nil if not applicable).
type Callback func(q *Queue, id EventID, udata any, readable, writable bool, timeout *time.Duration, eof *uint8)

// EventID is a stable, positive, per-queue-unique identifier assigned at
// add time. Ids below idFloor are reserved and never handed to callers.
type EventID uint32

// event is the fixed-shape record described by the data model. A single
// struct, tagged by flags, backs every event kind.
type event struct {
	q *Queue // owning queue; nil iff the event is deleted (event_deleted)

	id    EventID
	fd    int
	flags Flags

	deadline time.Time // absolute deadline; zero means Infinite
	period   time.Duration

	// timeout wheel links
	tqPrev, tqNext *event
	inWheel        bool

	// ready-chain link (next_ready)
	readyNext *event

	// trigger subscriber chain link (next_object), within a Trigger's own
	// subscriber list
	objNext *event

	// per-queue cross-thread triggers list link, distinct from objNext
	triggerNext *event

	udata    any
	task     Task
	callback Callback
	reuseFD  bool // del() hint, honored when the record is finally reclaimed

	// onInterrupt/object-specific state
	trigger *Trigger

	// socket accept/connect mode, dirwatch filter byte, etc. kept in flags'
	// EOF byte plus this field for richer payloads (e.g. dirwatch path).
	path string
}

// registered reports whether the event still belongs to a queue
// (event_deleted is the negation).
func (e *event) registered() bool { return e.q != nil }

// registeredWithBackend reports whether the event holds a live backend fd
// registration (as opposed to a pure timer, trigger/object, or pid event
// whose fd field, if any, is not registered with the platform backend).
func (e *event) registeredWithBackend() bool {
	return e.flags&(FlagRead|FlagWrite) != 0 &&
		!e.flags.Has(FlagTimer) &&
		!e.flags.Has(FlagObject) &&
		!e.flags.Has(FlagPid) &&
		!e.flags.Has(FlagDirWatch) &&
		!e.flags.Has(FlagSignal) &&
		!e.flags.Has(FlagWinMsg)
}

// Task is a resumable cooperative callback. Resume is called with the same
// dispatch tuple a plain Callback receives; yielding and returning are
// treated identically by the dispatcher — either leaves the task ready to
// be resumed again on the next event.
type Task interface {
	Resume(q *Queue, id EventID, udata any, readable, writable bool, timeout *time.Duration, eof *uint8) error
}

// TaskFunc adapts a plain function to the Task interface.
type TaskFunc func(q *Queue, id EventID, udata any, readable, writable bool, timeout *time.Duration, eof *uint8) error

func (f TaskFunc) Resume(q *Queue, id EventID, udata any, readable, writable bool, timeout *time.Duration, eof *uint8) error {
	return f(q, id, udata, readable, writable, timeout, eof)
}
