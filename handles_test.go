package evq

import "testing"

func TestNoAutoClose_StandardStreams(t *testing.T) {
	for _, h := range []Handle{Stdin, Stdout, Stderr} {
		if !noAutoClose(int(h)) {
			t.Fatalf("noAutoClose(%d) = false, want true", h)
		}
	}
}

func TestNoAutoClose_OrdinaryFD(t *testing.T) {
	if noAutoClose(99) {
		t.Fatal("noAutoClose(99) = true, want false")
	}
}
