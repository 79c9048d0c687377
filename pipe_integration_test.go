//go:build !windows

package evq

import (
	"os"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

// pipe readiness round-trip: writing to one end of an os.Pipe must wake a
// READ registration on the other end, through the real platform backend.
func TestQueue_PipeReadinessRoundTrip(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	if err := unix.SetNonblock(int(r.Fd()), true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Close()

	gotReadable := false
	_, err = q.Add(int(r.Fd()), FlagRead, func(q *Queue, id EventID, udata any, readable, writable bool, to *time.Duration, eof *uint8) {
		gotReadable = readable
		buf := make([]byte, 16)
		_, _ = unix.Read(int(r.Fd()), buf)
		_ = q.Del(id, true) // r.Close() (deferred) owns the fd, not the backend
		q.Stop()
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		_, _ = w.Write([]byte("x"))
	}()

	if err := q.Loop(2 * time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !gotReadable {
		t.Fatal("callback never observed readable=true")
	}
}
