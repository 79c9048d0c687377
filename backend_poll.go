//go:build !linux && !darwin && !windows

package evq

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// pollBackend is the generic Unix fallback backend for platforms without
// epoll or kqueue, built on poll(2). It presents identical level-triggered
// semantics to the front-end, at O(n) cost per wait call.
type pollBackend struct {
	mu  sync.Mutex
	fds map[int]*event

	wakeR, wakeW int
}

func newBackend() backend {
	return &pollBackend{fds: make(map[int]*event)}
}

func (b *pollBackend) init() error {
	r, w, err := createWakeFd()
	if err != nil {
		return errBackend("init", err)
	}
	b.wakeR, b.wakeW = r, w
	return nil
}

func (b *pollBackend) close() error {
	closeWakeFd(b.wakeR, b.wakeW)
	return nil
}

func (b *pollBackend) addFD(ev *event) error {
	b.mu.Lock()
	b.fds[ev.fd] = ev
	b.mu.Unlock()
	return nil
}

func (b *pollBackend) changeFD(ev *event, rw Flags) error {
	return nil // mask is read straight off ev.flags at wait() time
}

func (b *pollBackend) delFD(ev *event, reuseFD bool) error {
	b.mu.Lock()
	delete(b.fds, ev.fd)
	b.mu.Unlock()
	if !reuseFD {
		if err := closeFD(ev.fd); err != nil {
			return errBackend("del", err)
		}
	}
	return nil
}

func (b *pollBackend) wait(timeout time.Duration) (*event, error) {
	b.mu.Lock()
	pfds := make([]unix.PollFd, 0, len(b.fds)+1)
	pfds = append(pfds, unix.PollFd{Fd: int32(b.wakeR), Events: unix.POLLIN})
	order := make([]*event, 0, len(b.fds))
	for _, ev := range b.fds {
		var m int16
		if rwMask(ev.flags).Has(FlagRead) {
			m |= unix.POLLIN
		}
		if rwMask(ev.flags).Has(FlagWrite) {
			m |= unix.POLLOUT
		}
		pfds = append(pfds, unix.PollFd{Fd: int32(ev.fd), Events: m})
		order = append(order, ev)
	}
	b.mu.Unlock()

	ms := durationToMillisPoll(timeout)
	n, err := unix.Poll(pfds, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errBackend("wait", err)
	}
	if n == 0 {
		return nil, nil
	}

	if pfds[0].Revents != 0 {
		drainWakeUpPipe(b.wakeR)
	}

	var head, tail *event
	for i, ev := range order {
		re := pfds[i+1].Revents
		if re == 0 {
			continue
		}
		ev.flags |= FlagActive
		if re&unix.POLLIN != 0 {
			ev.flags |= FlagReadRes
		}
		if re&unix.POLLOUT != 0 {
			ev.flags |= FlagWriteRes
		}
		if re&(unix.POLLERR|unix.POLLHUP) != 0 {
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

func (b *pollBackend) interrupt() {
	submitGenericWakeup(b.wakeW)
}

func durationToMillisPoll(d time.Duration) int {
	if d == Infinite || d < 0 {
		return -1
	}
	ms := d.Milliseconds()
	if ms > 1<<31-1 {
		ms = 1<<31 - 1
	}
	return int(ms)
}
