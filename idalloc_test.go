package evq

import "testing"

func TestRecordPool_AllocFloor(t *testing.T) {
	p := newRecordPool(0, 0)
	ev := p.alloc()
	if ev.id < idFloor {
		t.Fatalf("alloc returned id %d below floor %d", ev.id, idFloor)
	}
}

func TestRecordPool_UniqueIDs(t *testing.T) {
	p := newRecordPool(idFloor, cacheCap)
	seen := make(map[EventID]bool)
	for i := 0; i < 200; i++ {
		ev := p.alloc()
		if seen[ev.id] {
			t.Fatalf("duplicate id %d allocated", ev.id)
		}
		seen[ev.id] = true
	}
}

func TestRecordPool_ReleaseThenLookupNil(t *testing.T) {
	p := newRecordPool(idFloor, cacheCap)
	ev := p.alloc()
	id := ev.id
	p.release(ev)

	if got := p.lookup(id); got != nil {
		t.Fatalf("lookup after release returned %v, want nil", got)
	}
}

func TestRecordPool_CacheCapped(t *testing.T) {
	p := newRecordPool(idFloor, 4)
	var evs []*event
	for i := 0; i < 10; i++ {
		evs = append(evs, p.alloc())
	}
	for _, ev := range evs {
		p.release(ev)
	}
	if len(p.cache) > 4 {
		t.Fatalf("cache grew to %d, want <= 4", len(p.cache))
	}
}

func TestRecordPool_ProbesPastLiveCollision(t *testing.T) {
	p := newRecordPool(idFloor, cacheCap)
	first := p.alloc()
	// force nextID to collide with a still-live record
	p.nextID = first.id
	second := p.alloc()
	if second.id == first.id {
		t.Fatalf("alloc reused a live id %d", first.id)
	}
}
