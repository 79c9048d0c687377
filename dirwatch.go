package evq

import (
	"os"
)

// dirWatcher is the minimal platform seam a directory watch needs: a
// channel that receives a value each time something changed, and a way to
// tear the watch down. The inotify-backed implementation (Linux) and the
// stat-polling fallback (everywhere else) both satisfy it.
type dirWatcher interface {
	Events() <-chan struct{}
	Close() error
}

// AddDirWatch registers a directory-change notification on path. This
// implementation does NOT follow symlinks (it resolves path with Lstat
// semantics) — a deliberate choice among the unspecified platform
// behaviors the design notes flag.
//
// modify, when true, sets the event's EOF/filter byte to 1 (the MODIFY
// filter), which the callback receives with every notification. It does
// not change what the underlying watcher reports: the same changes wake
// the event whether modify is true or false.
func (q *Queue) AddDirWatch(path string, cb Callback, modify bool) (EventID, error) {
	if _, err := os.Lstat(path); err != nil {
		return 0, errInvalidArg("add_dirwatch", err)
	}

	w, err := newDirWatcher(path)
	if err != nil {
		return 0, errBackend("add_dirwatch", err)
	}

	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagDirWatch | FlagObject
	if modify {
		ev.flags = ev.flags.WithEOFByte(1)
	}
	ev.callback = cb
	ev.path = path

	trig := &Trigger{}
	trig.subscribe(ev)

	go q.pumpDirWatch(path, w, trig)

	return ev.id, nil
}

// pumpDirWatch bridges raw filesystem change notifications into the
// trigger path, throttling storms of rapid changes through go-catrate
// when a rate limiter was configured.
func (q *Queue) pumpDirWatch(path string, w dirWatcher, trig *Trigger) {
	defer w.Close()
	for range w.Events() {
		if q.dwRate != nil {
			if _, ok := q.dwRate.Allow(path); !ok {
				continue
			}
		}
		SysTriggerNotify(trig, FlagRead, false, false)
	}
}
