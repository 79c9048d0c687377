package evq

import (
	"testing"
	"time"
)

func newTestQueue(t *testing.T) *Queue {
	t.Helper()
	q, err := NewQueue(WithBackend(newFakeBackend()))
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	t.Cleanup(func() { _ = q.Close() })
	return q
}

// scenario: single timer fires once, callback stops the loop.
func TestQueue_SingleTimerThenStop(t *testing.T) {
	q := newTestQueue(t)

	fired := 0
	_, err := q.AddTimer(func(q *Queue, id EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
		fired++
		if to == nil {
			t.Error("expected a fired timeout duration")
		}
		q.Stop()
	}, 5*time.Millisecond, false)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}

	if err := q.Loop(time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if fired != 1 {
		t.Fatalf("fired %d times, want 1", fired)
	}
}

// a ONESHOT timer must never fire a second time even if Loop keeps running.
func TestQueue_OneshotFiresAtMostOnce(t *testing.T) {
	q := newTestQueue(t)

	fired := 0
	id, err := q.AddTimer(func(q *Queue, id EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
		fired++
	}, 5*time.Millisecond, false)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}

	// keep the loop alive briefly via a second, later stop-timer.
	if _, err := q.AddTimer(func(q *Queue, _ EventID, _ any, _, _ bool, _ *time.Duration, _ *uint8) {
		q.Stop()
	}, 30*time.Millisecond, false); err != nil {
		t.Fatalf("AddTimer: %v", err)
	}

	if err := q.Loop(time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if fired != 1 {
		t.Fatalf("oneshot fired %d times, want 1", fired)
	}
	if _, err := q.Callback(id); err != nil {
		t.Fatalf("Callback on recycled id returned error: %v", err)
	}
}

// timeout without ONESHOT re-fires: a periodic timer fires multiple times.
func TestQueue_PeriodicTimerRefires(t *testing.T) {
	q := newTestQueue(t)

	fired := 0
	_, err := q.AddTimer(func(q *Queue, id EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
		fired++
		if fired >= 3 {
			q.Stop()
		}
	}, 5*time.Millisecond, true)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}

	if err := q.Loop(2 * time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if fired < 3 {
		t.Fatalf("periodic timer fired %d times, want >= 3", fired)
	}
}

// del-then-recycle: Callback on a deleted, recycled id returns nil, not an
// error, per the spec's "fetching a recycled id" semantics.
func TestQueue_CallbackAfterDeleteReturnsNilNotError(t *testing.T) {
	q := newTestQueue(t)

	id, err := q.AddTimer(func(*Queue, EventID, any, bool, bool, *time.Duration, *uint8) {}, time.Hour, false)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}
	if err := q.Del(id, false); err != nil {
		t.Fatalf("Del: %v", err)
	}

	cb, err := q.Callback(id)
	if err != nil {
		t.Fatalf("Callback after delete returned error: %v", err)
	}
	if cb != nil {
		t.Fatalf("Callback after delete returned non-nil: %v", cb)
	}
}

// a callback that deletes its own event mid-dispatch must not panic or
// double-reclaim.
func TestQueue_SelfDeleteInCallback(t *testing.T) {
	q := newTestQueue(t)

	var gotID EventID
	_, err := q.AddTimer(func(q *Queue, id EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
		gotID = id
		if err := q.Del(id, false); err != nil {
			t.Errorf("self Del failed: %v", err)
		}
		q.Stop()
	}, 5*time.Millisecond, false)
	if err != nil {
		t.Fatalf("AddTimer: %v", err)
	}

	if err := q.Loop(time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if cb, _ := q.Callback(gotID); cb != nil {
		t.Fatal("expected self-deleted event to be fully recycled")
	}
}

func TestQueue_NotifyRejectsNonTimerNonObject(t *testing.T) {
	q := newTestQueue(t)
	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagSocket
	if err := q.Notify(ev.id, FlagRead); err == nil {
		t.Fatal("expected Notify to reject a socket event")
	}
}

func TestQueue_DelUnknownID(t *testing.T) {
	q := newTestQueue(t)
	if err := q.Del(12345, false); err == nil {
		t.Fatal("expected error deleting an unknown id")
	}
}
