//go:build linux

package evq

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// maxFDs bounds direct-indexed fd storage; fds beyond it still work via a
// map overflow (rare: pipes/sockets/signalfds/inotify fds are small-numbered
// in practice, but nothing stops a process running with a raised rlimit).
const maxFDs = 65536

// epollBackend implements backend on Linux using epoll, presenting the
// front-end with level-triggered semantics (epoll is itself level-triggered
// by default, so no rearm trick is needed beyond re-registering SOCKET
// events whose mask changed).
type epollBackend struct {
	epfd int

	mu       sync.Mutex
	fds      [maxFDs]*event
	overflow map[int]*event

	eventBuf [256]unix.EpollEvent

	wakeR, wakeW int
}

func newBackend() backend { return &epollBackend{} }

func (b *epollBackend) init() error {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return errBackend("init", err)
	}
	b.epfd = epfd

	r, w, err := createWakeFd()
	if err != nil {
		_ = unix.Close(epfd)
		return errBackend("init", err)
	}
	b.wakeR, b.wakeW = r, w
	if err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, b.wakeR, &unix.EpollEvent{
		Events: unix.EPOLLIN,
		Fd:     int32(b.wakeR),
	}); err != nil {
		_ = unix.Close(epfd)
		closeWakeFd(r, w)
		return errBackend("init", err)
	}
	return nil
}

func (b *epollBackend) close() error {
	closeWakeFd(b.wakeR, b.wakeW)
	return unix.Close(b.epfd)
}

func (b *epollBackend) lookup(fd int) *event {
	if fd >= 0 && fd < maxFDs {
		return b.fds[fd]
	}
	return b.overflow[fd]
}

func (b *epollBackend) store(fd int, ev *event) {
	if fd >= 0 && fd < maxFDs {
		b.fds[fd] = ev
		return
	}
	if b.overflow == nil {
		b.overflow = make(map[int]*event)
	}
	if ev == nil {
		delete(b.overflow, fd)
	} else {
		b.overflow[fd] = ev
	}
}

func eventsToEpoll(f Flags) uint32 {
	var m uint32
	if f.Has(FlagRead) {
		m |= unix.EPOLLIN
	}
	if f.Has(FlagWrite) {
		m |= unix.EPOLLOUT
	}
	return m
}

func (b *epollBackend) addFD(ev *event) error {
	b.mu.Lock()
	b.store(ev.fd, ev)
	b.mu.Unlock()

	err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_ADD, ev.fd, &unix.EpollEvent{
		Events: eventsToEpoll(ev.flags),
		Fd:     int32(ev.fd),
	})
	if err != nil {
		b.mu.Lock()
		b.store(ev.fd, nil)
		b.mu.Unlock()
		return errBackend("add", err)
	}
	return nil
}

func (b *epollBackend) changeFD(ev *event, rw Flags) error {
	err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_MOD, ev.fd, &unix.EpollEvent{
		Events: eventsToEpoll(rw),
		Fd:     int32(ev.fd),
	})
	if err != nil {
		return errBackend("change", err)
	}
	return nil
}

func (b *epollBackend) delFD(ev *event, reuseFD bool) error {
	b.mu.Lock()
	b.store(ev.fd, nil)
	b.mu.Unlock()

	err := unix.EpollCtl(b.epfd, unix.EPOLL_CTL_DEL, ev.fd, nil)
	if err != nil && err != unix.ENOENT && err != unix.EBADF {
		return errBackend("del", err)
	}
	if !reuseFD {
		if cerr := closeFD(ev.fd); cerr != nil {
			return errBackend("del", cerr)
		}
	}
	return nil
}

func (b *epollBackend) wait(timeout time.Duration) (*event, error) {
	ms := durationToMillis(timeout)

	n, err := unix.EpollWait(b.epfd, b.eventBuf[:], ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errBackend("wait", err)
	}
	if n == 0 {
		return nil, nil
	}

	var head, tail *event
	for i := 0; i < n; i++ {
		fd := int(b.eventBuf[i].Fd)
		if fd == b.wakeR {
			drainWakeUpPipe(b.wakeR)
			continue
		}

		b.mu.Lock()
		ev := b.lookup(fd)
		b.mu.Unlock()
		if ev == nil {
			continue
		}

		mask := b.eventBuf[i].Events
		ev.flags |= FlagActive
		if mask&unix.EPOLLIN != 0 {
			ev.flags |= FlagReadRes
		}
		if mask&unix.EPOLLOUT != 0 {
			ev.flags |= FlagWriteRes
		}
		if mask&(unix.EPOLLERR|unix.EPOLLHUP) != 0 {
			ev.flags = ev.flags.WithEOFByte(1)
		}
		ev.readyNext = nil

		if head == nil {
			head, tail = ev, ev
		} else {
			tail.readyNext = ev
			tail = ev
		}
	}
	return head, nil
}

func (b *epollBackend) interrupt() {
	submitGenericWakeup(b.wakeW)
}

func durationToMillis(d time.Duration) int {
	if d == Infinite || d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	return int(ms)
}
