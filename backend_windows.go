//go:build windows

package evq

import (
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/windows"
)

// iocpBackend implements backend on Windows using an I/O completion port.
// Plain READ/WRITE readiness (as opposed to true overlapped AIO, which
// isn't in scope here) is approximated with a small per-socket WSAPoll
// goroutine that posts a completion into the shared IOCP once the socket
// is ready, so wait() remains the single rendezvous point the rest of the
// queue relies on regardless of how many sockets are registered.
type iocpBackend struct {
	iocp windows.Handle

	mu  sync.Mutex
	fds map[int]*event

	closed bool
}

func newBackend() backend {
	return &iocpBackend{fds: make(map[int]*event)}
}

func (b *iocpBackend) init() error {
	iocp, err := windows.CreateIoCompletionPort(windows.InvalidHandle, 0, 0, 0)
	if err != nil {
		return errBackend("init", err)
	}
	b.iocp = iocp
	return nil
}

func (b *iocpBackend) close() error {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	return windows.CloseHandle(b.iocp)
}

func (b *iocpBackend) addFD(ev *event) error {
	b.mu.Lock()
	b.fds[ev.fd] = ev
	b.mu.Unlock()

	go b.pollSocket(ev)
	return nil
}

// pollSocket polls a single socket with WSAPoll on its own goroutine and
// posts a completion describing readiness into the shared IOCP.
func (b *iocpBackend) pollSocket(ev *event) {
	for {
		b.mu.Lock()
		closed := b.closed
		cur, ok := b.fds[ev.fd]
		b.mu.Unlock()
		if closed || !ok || cur != ev {
			return
		}

		var events int16
		if rwMask(ev.flags).Has(FlagRead) {
			events |= windows.POLLIN
		}
		if rwMask(ev.flags).Has(FlagWrite) {
			events |= windows.POLLOUT
		}
		fds := []windows.WSAPollFd{{Fd: syscall.Handle(ev.fd), Events: events}}
		n, err := windows.WSAPoll(fds, 250)
		if err != nil || n <= 0 {
			continue
		}

		key := uintptr(ev.fd)
		_ = windows.PostQueuedCompletionStatus(b.iocp, uint32(fds[0].REvents), uint32(key), nil)
		return
	}
}

func (b *iocpBackend) changeFD(ev *event, rw Flags) error {
	b.mu.Lock()
	b.fds[ev.fd] = ev
	b.mu.Unlock()
	go b.pollSocket(ev)
	return nil
}

func (b *iocpBackend) delFD(ev *event, reuseFD bool) error {
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

func (b *iocpBackend) wait(timeout time.Duration) (*event, error) {
	ms := uint32(windows.INFINITE)
	if timeout != Infinite && timeout >= 0 {
		ms = uint32(timeout.Milliseconds())
	}

	var bytes uint32
	var key uintptr
	var overlapped *windows.Overlapped

	err := windows.GetQueuedCompletionStatus(b.iocp, &bytes, &key, &overlapped, ms)
	if err != nil {
		if errno, ok := err.(syscall.Errno); ok && errno == windows.WAIT_TIMEOUT {
			return nil, nil
		}
		return nil, errBackend("wait", err)
	}
	if overlapped == nil && key == 0 {
		return nil, nil // wake-up notification
	}

	fd := int(key)
	b.mu.Lock()
	ev, ok := b.fds[fd]
	b.mu.Unlock()
	if !ok {
		return nil, nil
	}

	ev.flags |= FlagActive
	if bytes&uint32(windows.POLLIN) != 0 {
		ev.flags |= FlagReadRes
	}
	if bytes&uint32(windows.POLLOUT) != 0 {
		ev.flags |= FlagWriteRes
	}
	ev.readyNext = nil

	// re-arm: level-triggered semantics mean a still-registered socket
	// keeps polling for the next wake.
	if rwMask(ev.flags) != 0 {
		go b.pollSocket(ev)
	}

	return ev, nil
}

func (b *iocpBackend) interrupt() {
	_ = submitGenericWakeup(b.iocp)
}
