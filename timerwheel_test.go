package evq

import (
	"testing"
	"time"
)

func TestTimeoutWheel_NextDeadlineEmpty(t *testing.T) {
	w := newTimeoutWheel()
	if _, ok := w.nextDeadline(); ok {
		t.Fatal("nextDeadline on empty wheel returned ok=true")
	}
}

func TestTimeoutWheel_CollectExpiredOrdering(t *testing.T) {
	w := newTimeoutWheel()
	base := time.Now()

	a := &event{id: 1}
	b := &event{id: 2}
	c := &event{id: 3}

	w.addTimer(a, base, 10*time.Millisecond)
	w.addTimer(b, base, 5*time.Millisecond)
	w.addTimer(c, base, 5*time.Millisecond) // same deadline as b, inserted after

	chain := w.collectExpired(base.Add(20*time.Millisecond), nil)

	var order []EventID
	for n := chain; n != nil; n = n.readyNext {
		order = append(order, n.id)
	}
	if len(order) != 3 {
		t.Fatalf("got %d expired events, want 3", len(order))
	}
	if order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Fatalf("unexpected expiry order: %v", order)
	}
	for _, n := range []*event{a, b, c} {
		if n.inWheel {
			t.Fatalf("event %d still marked inWheel after collect", n.id)
		}
		if !n.flags.Has(FlagTimeoutRes) {
			t.Fatalf("event %d missing FlagTimeoutRes after collect", n.id)
		}
	}
}

func TestTimeoutWheel_DelTimerIdempotent(t *testing.T) {
	w := newTimeoutWheel()
	ev := &event{id: 1}
	w.addTimer(ev, time.Now(), time.Second)
	w.delTimer(ev)
	w.delTimer(ev) // must not panic on a non-wheel event
	if ev.inWheel {
		t.Fatal("event still marked inWheel after delTimer")
	}
}

func TestTimeoutWheel_ResetReschedulesPeriodic(t *testing.T) {
	w := newTimeoutWheel()
	base := time.Now()
	ev := &event{id: 1, period: 10 * time.Millisecond}
	w.addTimer(ev, base, 10*time.Millisecond)

	chain := w.collectExpired(base.Add(15*time.Millisecond), nil)
	if chain == nil {
		t.Fatal("expected expired event")
	}
	w.reset(ev, base.Add(15*time.Millisecond))
	if !ev.inWheel {
		t.Fatal("periodic timer should be re-linked after reset")
	}
	nd, ok := w.nextDeadline()
	if !ok || !nd.Equal(base.Add(25*time.Millisecond)) {
		t.Fatalf("unexpected next deadline %v", nd)
	}
}
