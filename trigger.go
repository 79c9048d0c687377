package evq

import (
	"sync"
	"time"
)

// Trigger is user data whose subscriber chain is woken by
// SysTriggerNotify from whatever thread wants to notify subscribers.
// It is the "object" of spec component E: a trigger object.
type Trigger struct {
	mu   sync.Mutex
	head *event // subscriber chain, linked via event.objNext
}

// subscribe links ev onto t's subscriber chain. ev.flags must already
// include FlagObject.
func (t *Trigger) subscribe(ev *event) {
	t.mu.Lock()
	ev.objNext = t.head
	t.head = ev
	t.mu.Unlock()
	ev.trigger = t
}

func (t *Trigger) unsubscribe(ev *event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.head == ev {
		t.head = ev.objNext
		ev.objNext = nil
		return
	}
	for n := t.head; n != nil; n = n.objNext {
		if n.objNext == ev {
			n.objNext = ev.objNext
			ev.objNext = nil
			return
		}
	}
}

// AddTrigger subscribes a callback to an existing Trigger object t for the
// given direction(s) rw. t must have been obtained from NewTrigger (the
// Go analogue of a trigger object exposing get_trigger via metadata).
func (q *Queue) AddTrigger(t *Trigger, rw Flags, cb Callback, timeout time.Duration, oneshot bool) (EventID, error) {
	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagObject | (rw & (FlagRead | FlagWrite))
	if oneshot {
		ev.flags |= FlagOneshot
	}
	ev.callback = cb

	t.subscribe(ev)

	if timeout != Infinite {
		q.wheel.addTimer(ev, time.Now(), timeout)
		ev.period = timeout
	}
	return ev.id, nil
}

// NewTrigger constructs a fresh trigger object with no subscribers.
func NewTrigger() *Trigger { return &Trigger{} }

// SysTriggerNotify is sys_trigger_notify: invoked by whatever code wants
// to wake t's subscribers with the given request bits (FlagRead/FlagWrite)
// plus an optional delete/eof signal. It may be called from any thread,
// including one driving a different queue than a given subscriber's
// owner — in which case the notifier flushes the previously-held target
// queue's trigger list, switches targets, and continues, per §4.E.
func SysTriggerNotify(t *Trigger, rw Flags, del bool, eof bool) {
	t.mu.Lock()
	head := t.head
	t.mu.Unlock()

	var curTarget *Queue
	now := time.Now()

	flushAndSwitch := func(next *Queue) {
		if curTarget != nil && curTarget != next {
			curTarget.vmMu.Unlock()
			_ = curTarget.Interrupt()
		}
		if curTarget != next {
			curTarget = next
			curTarget.vmMu.Lock()
		}
	}

	for sub := head; sub != nil; sub = sub.objNext {
		if sub.q == nil {
			continue // deleted mid-walk
		}

		res := requestToResultBits(rw) & requestToResultBits(rwMask(sub.flags))
		if del {
			sub.flags |= FlagDelete
		}

		if sub.flags.Has(FlagActive) {
			continue // coalesce: already pending dispatch
		}

		sub.flags |= FlagActive | res
		if eof {
			sub.flags = sub.flags.WithEOFByte(1)
		}

		if sub.flags.Has(FlagDelete) || sub.flags.Has(FlagOneshot) {
			if sub.inWheel {
				sub.q.wheel.delTimer(sub)
			}
		} else if sub.inWheel {
			sub.q.wheel.reset(sub, now)
		}

		flushAndSwitch(sub.q)

		sub.triggerNext = curTarget.triggers
		curTarget.triggers = sub
	}

	if curTarget != nil {
		curTarget.vmMu.Unlock()
		_ = curTarget.Interrupt()
	}
}
