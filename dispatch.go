package evq

import (
	"fmt"
	"time"
)

// Loop is the heart of the event queue front-end: it clears STOP/INTR,
// then repeatedly waits on the backend, merges in cross-thread triggers,
// and dispatches the resulting ready chain, until stopped, out of events,
// or (if timeout is not Infinite) the loop's own deadline elapses with
// nothing to dispatch.
func (q *Queue) Loop(timeout time.Duration) error {
	q.stopFlag.Store(false)
	q.intrFlag.Store(false)
	q.state.TransitionAny([]QueueState{StateAwake, StateTerminating}, StateRunning)
	defer q.state.Store(StateTerminating)

	var deadline time.Time
	if timeout != Infinite && timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}

	for !q.stopFlag.Load() && q.pool.count() > 0 {
		now := time.Now()
		wait := Infinite
		if !deadline.IsZero() {
			if w := deadline.Sub(now); w < 0 {
				wait = 0
			} else {
				wait = w
			}
		}
		if nd, ok := q.wheel.nextDeadline(); ok {
			d := nd.Sub(now)
			if d < 0 {
				d = 0
			}
			if wait == Infinite || d < wait {
				wait = d
			}
		}

		q.state.TryTransition(StateRunning, StateSleeping)
		chain, err := q.be.wait(wait)
		q.state.TryTransition(StateSleeping, StateRunning)
		if err != nil {
			return err
		}

		chain = q.wheel.collectExpired(time.Now(), chain)
		chain = q.spliceTriggers(chain)

		if chain == nil {
			if q.intrFlag.Load() {
				q.intrFlag.Store(false)
				if q.onInterrupt != nil {
					q.onInterrupt(q, 0, nil, false, false, nil, nil)
				}
				continue
			}
			if !deadline.IsZero() && !time.Now().Before(deadline) {
				return nil
			}
			continue
		}

		if err := q.dispatchChain(chain); err != nil {
			return err
		}
	}
	return nil
}

// spliceTriggers atomically takes the cross-thread triggers list and
// appends it to the tail of chain, converting the triggers list's link
// (triggerNext) into the ready chain's link (readyNext) as it goes —
// backend-returned events dispatch first, triggers after.
func (q *Queue) spliceTriggers(chain *event) *event {
	q.vmMu.Lock()
	trig := q.triggers
	q.triggers = nil
	q.vmMu.Unlock()

	if trig == nil {
		return chain
	}

	var trigHead, trigTail *event
	for n := trig; n != nil; {
		next := n.triggerNext
		n.triggerNext = nil
		n.readyNext = nil
		if trigHead == nil {
			trigHead, trigTail = n, n
		} else {
			trigTail.readyNext = n
			trigTail = n
		}
		n = next
	}

	if chain == nil {
		return trigHead
	}
	tail := chain
	for tail.readyNext != nil {
		tail = tail.readyNext
	}
	tail.readyNext = trigHead
	return chain
}

// dispatchChain walks a ready chain and invokes each callback (plain or
// cooperative task), honoring delete/oneshot semantics between
// invocations. A callback's uncaught error or panic unwinds out of Loop.
func (q *Queue) dispatchChain(chain *event) error {
	for ev := chain; ev != nil; {
		next := ev.readyNext
		if err := q.dispatchOne(ev); err != nil {
			return err
		}
		ev = next
	}
	return nil
}

func (q *Queue) dispatchOne(ev *event) (err error) {
	// read id/flags before invoking user code: the record may be mutated
	// (though not recycled — recycling happens only after this frame) by
	// the callback itself or by a sibling callback earlier in the chain.
	id := ev.id
	udata := ev.udata
	flags := ev.flags

	if flags.Has(FlagDelete) {
		// deleted by an earlier callback in this chain: skip invocation,
		// still fall through to the post-call bookkeeping below.
	} else {
		readable := flags.Has(FlagReadRes)
		writable := flags.Has(FlagWriteRes)
		var to *time.Duration
		if flags.Has(FlagTimeoutRes) {
			d := ev.period
			to = &d
		}
		var eof *uint8
		if b := flags.EOFByte(); b != 0 {
			eof = &b
		}

		defer func() {
			if r := recover(); r != nil {
				perr, ok := r.(error)
				if !ok {
					perr = fmt.Errorf("%v", r)
				}
				q.logPanic("dispatch", id, perr)
				err = errUser("dispatch", perr)
			}
		}()

		if ev.task != nil {
			if rerr := ev.task.Resume(q, id, udata, readable, writable, to, eof); rerr != nil {
				return errUser("dispatch", rerr)
			}
		} else if ev.callback != nil {
			ev.callback(q, id, udata, readable, writable, to, eof)
		}
	}

	// evq_post_call: a backend hook, no-op except where a platform needs
	// to re-arm a pending AIO operation after its completion was just
	// dispatched (see postCall per platform).
	postCall(q, ev)

	firedTimeout := ev.flags.Has(FlagTimeoutRes)
	ev.flags &^= FlagActive | FlagReadRes | FlagWriteRes | FlagTimeoutRes

	if ev.flags.Has(FlagOneshot) && !ev.flags.Has(FlagDelete) {
		ev.flags |= FlagDelete
	}

	if ev.flags.Has(FlagDelete) {
		return q.reclaim(ev, ev.reuseFD)
	}

	if firedTimeout && ev.period > 0 {
		q.wheel.reset(ev, time.Now())
	}
	return nil
}
