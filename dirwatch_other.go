//go:build !linux

package evq

import (
	"os"
	"time"
)

// pollDirWatcher is the generic fallback dirWatcher for platforms without
// a native directory-change notification the rest of this module wires
// (Darwin's FSEvents/kqueue-on-dir and Windows' ReadDirectoryChangesW are
// both real APIs, but neither is in the example pack's dependency
// surface, so this mtime-polling approach stays within what's grounded).
type pollDirWatcher struct {
	path   string
	stop   chan struct{}
	ch     chan struct{}
	closed bool
}

func newDirWatcher(path string) (dirWatcher, error) {
	if _, err := os.Lstat(path); err != nil {
		return nil, err
	}
	w := &pollDirWatcher{path: path, stop: make(chan struct{}), ch: make(chan struct{}, 1)}
	go w.pump()
	return w, nil
}

func (w *pollDirWatcher) pump() {
	defer close(w.ch)
	var lastMod time.Time
	if fi, err := os.Lstat(w.path); err == nil {
		lastMod = fi.ModTime()
	}
	t := time.NewTicker(250 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-t.C:
			fi, err := os.Lstat(w.path)
			if err != nil {
				select {
				case w.ch <- struct{}{}:
				default:
				}
				return
			}
			if fi.ModTime().After(lastMod) {
				lastMod = fi.ModTime()
				select {
				case w.ch <- struct{}{}:
				default:
				}
			}
		}
	}
}

func (w *pollDirWatcher) Events() <-chan struct{} { return w.ch }

func (w *pollDirWatcher) Close() error {
	if !w.closed {
		w.closed = true
		close(w.stop)
	}
	return nil
}
