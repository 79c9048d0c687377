package evq

import "testing"

func TestApplyModSocketPattern_LeadingUnsignedReplaces(t *testing.T) {
	// spec scenario 4: starting mask WRITE, pattern "r" replaces to READ.
	got, err := applyModSocketPattern(FlagWrite, "r")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FlagRead {
		t.Fatalf("got mask %v, want FlagRead", got)
	}
}

func TestApplyModSocketPattern_SignedAccumulates(t *testing.T) {
	got, err := applyModSocketPattern(FlagRead, "+w")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FlagRead|FlagWrite {
		t.Fatalf("got mask %v, want READ|WRITE", got)
	}
}

func TestApplyModSocketPattern_SignedRemoves(t *testing.T) {
	got, err := applyModSocketPattern(FlagRead|FlagWrite, "-w")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FlagRead {
		t.Fatalf("got mask %v, want FlagRead", got)
	}
}

func TestApplyModSocketPattern_OnlyFirstUnsignedLetterReplaces(t *testing.T) {
	// "rw": index 0 ('r') triggers replace-mode (clears to 0, then sets
	// READ); the following unsigned 'w' at index 1 only OR's in WRITE,
	// since replace-mode is keyed strictly on pattern index 0.
	got, err := applyModSocketPattern(FlagRead|FlagWrite, "rw")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != FlagRead|FlagWrite {
		t.Fatalf("got mask %v, want READ|WRITE", got)
	}
}

func TestApplyModSocketPattern_BadToken(t *testing.T) {
	if _, err := applyModSocketPattern(FlagRead, "x"); err == nil {
		t.Fatal("expected error for unrecognized token")
	}
}

func TestModSocket_UnknownID(t *testing.T) {
	q := &Queue{pool: newRecordPool(idFloor, cacheCap)}
	if err := q.ModSocket(999, "+r"); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestModSocket_RequiresSocketEvent(t *testing.T) {
	q := &Queue{pool: newRecordPool(idFloor, cacheCap), wheel: newTimeoutWheel()}
	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagTimer
	if err := q.ModSocket(ev.id, "+r"); err == nil {
		t.Fatal("expected error modifying a non-socket event")
	}
}
