//go:build linux

package evq

import (
	"golang.org/x/sys/unix"
)

// inotifyWatcher is the Linux dirWatcher, grounded in the pack's inotify
// usage: non-blocking fd, reads drained on a dedicated goroutine so a
// blocking read is never left outstanding across Close.
type inotifyWatcher struct {
	fd int
	wd int
	ch chan struct{}
}

func newDirWatcher(path string) (dirWatcher, error) {
	fd, err := unix.InotifyInit1(unix.IN_NONBLOCK | unix.IN_CLOEXEC)
	if err != nil {
		return nil, err
	}
	mask := uint32(unix.IN_CREATE | unix.IN_DELETE | unix.IN_MOVED_FROM | unix.IN_MOVED_TO |
		unix.IN_CLOSE_WRITE | unix.IN_DELETE_SELF | unix.IN_MOVE_SELF | unix.IN_MODIFY | unix.IN_DONT_FOLLOW)
	wd, err := unix.InotifyAddWatch(fd, path, mask)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	w := &inotifyWatcher{fd: fd, wd: wd, ch: make(chan struct{}, 1)}
	go w.pump()
	return w, nil
}

func (w *inotifyWatcher) pump() {
	defer close(w.ch)
	buf := make([]byte, unix.SizeofInotifyEvent*64)
	for {
		fds := []unix.PollFd{{Fd: int32(w.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, 1000)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if n == 0 {
			continue
		}
		nr, err := unix.Read(w.fd, buf)
		if err != nil || nr <= 0 {
			if err == unix.EAGAIN {
				continue
			}
			return
		}
		select {
		case w.ch <- struct{}{}:
		default:
		}
	}
}

func (w *inotifyWatcher) Events() <-chan struct{} { return w.ch }

func (w *inotifyWatcher) Close() error {
	_, _ = unix.InotifyRmWatch(w.fd, uint32(w.wd))
	return unix.Close(w.fd)
}
