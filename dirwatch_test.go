package evq

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestQueue_AddDirWatch_DetectsCreate(t *testing.T) {
	dir := t.TempDir()

	q, err := NewQueue()
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Close()

	notified := false
	_, err = q.AddDirWatch(dir, func(q *Queue, id EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
		notified = true
		q.Stop()
	}, false)
	if err != nil {
		t.Fatalf("AddDirWatch: %v", err)
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = os.WriteFile(filepath.Join(dir, "new-file"), []byte("x"), 0o644)
	}()

	if err := q.Loop(5 * time.Second); err != nil {
		t.Fatalf("Loop: %v", err)
	}
	if !notified {
		t.Fatal("dirwatch callback never ran after file creation")
	}
}

func TestQueue_AddDirWatch_MissingPath(t *testing.T) {
	q, err := NewQueue()
	if err != nil {
		t.Fatalf("NewQueue: %v", err)
	}
	defer q.Close()

	if _, err := q.AddDirWatch(filepath.Join(t.TempDir(), "does-not-exist"), func(*Queue, EventID, any, bool, bool, *time.Duration, *uint8) {}, false); err == nil {
		t.Fatal("expected error watching a nonexistent path")
	}
}
