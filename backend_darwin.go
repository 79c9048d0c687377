//go:build darwin

package evq

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// kqueueBackend implements backend on Darwin/BSD using kqueue. kqueue
// reports EVFILT_READ/EVFILT_WRITE independently, so level-triggered
// semantics fall out naturally from re-registering with EV_ADD|EV_ENABLE.
type kqueueBackend struct {
	kq int

	mu  sync.Mutex
	fds map[int]*event

	eventBuf [256]unix.Kevent_t

	wakeR, wakeW int
}

func newBackend() backend {
	return &kqueueBackend{fds: make(map[int]*event)}
}

func (b *kqueueBackend) init() error {
	kq, err := unix.Kqueue()
	if err != nil {
		return errBackend("init", err)
	}
	unix.CloseOnExec(kq)
	b.kq = kq

	r, w, err := createWakeFd()
	if err != nil {
		_ = unix.Close(kq)
		return errBackend("init", err)
	}
	b.wakeR, b.wakeW = r, w

	_, err = unix.Kevent(b.kq, []unix.Kevent_t{{
		Ident:  uint64(b.wakeR),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE,
	}}, nil, nil)
	if err != nil {
		_ = unix.Close(kq)
		closeWakeFd(r, w)
		return errBackend("init", err)
	}
	return nil
}

func (b *kqueueBackend) close() error {
	closeWakeFd(b.wakeR, b.wakeW)
	return unix.Close(b.kq)
}

func kevents(fd int, rw Flags, flags uint16) []unix.Kevent_t {
	var out []unix.Kevent_t
	if rw.Has(FlagRead) {
		out = append(out, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flags})
	}
	if rw.Has(FlagWrite) {
		out = append(out, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
	}
	return out
}

func (b *kqueueBackend) addFD(ev *event) error {
	b.mu.Lock()
	b.fds[ev.fd] = ev
	b.mu.Unlock()

	ks := kevents(ev.fd, rwMask(ev.flags), unix.EV_ADD|unix.EV_ENABLE)
	if len(ks) == 0 {
		return nil
	}
	if _, err := unix.Kevent(b.kq, ks, nil, nil); err != nil {
		b.mu.Lock()
		delete(b.fds, ev.fd)
		b.mu.Unlock()
		return errBackend("add", err)
	}
	return nil
}

func (b *kqueueBackend) changeFD(ev *event, rw Flags) error {
	old := rwMask(ev.flags)
	if del := old &^ rw; del != 0 {
		if ks := kevents(ev.fd, del, unix.EV_DELETE); len(ks) > 0 {
			_, _ = unix.Kevent(b.kq, ks, nil, nil)
		}
	}
	if add := rw &^ old; add != 0 {
		if ks := kevents(ev.fd, add, unix.EV_ADD|unix.EV_ENABLE); len(ks) > 0 {
			if _, err := unix.Kevent(b.kq, ks, nil, nil); err != nil {
				return errBackend("change", err)
			}
		}
	}
	return nil
}

func (b *kqueueBackend) delFD(ev *event, reuseFD bool) error {
	b.mu.Lock()
	delete(b.fds, ev.fd)
	b.mu.Unlock()

	ks := kevents(ev.fd, rwMask(ev.flags), unix.EV_DELETE)
	if len(ks) > 0 {
		_, _ = unix.Kevent(b.kq, ks, nil, nil)
	}
	if !reuseFD {
		if err := closeFD(ev.fd); err != nil {
			return errBackend("del", err)
		}
	}
	return nil
}

func (b *kqueueBackend) wait(timeout time.Duration) (*event, error) {
	var ts *unix.Timespec
	if timeout != Infinite && timeout >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeout / time.Second),
			Nsec: int64(timeout % time.Second),
		}
	}

	n, err := unix.Kevent(b.kq, nil, b.eventBuf[:], ts)
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
	var linked map[*event]bool
	for i := 0; i < n; i++ {
		kev := &b.eventBuf[i]
		fd := int(kev.Ident)
		if fd == b.wakeR {
			drainWakeUpPipe(b.wakeR)
			continue
		}

		b.mu.Lock()
		ev := b.fds[fd]
		b.mu.Unlock()
		if ev == nil {
			continue
		}

		ev.flags |= FlagActive
		switch kev.Filter {
		case unix.EVFILT_READ:
			ev.flags |= FlagReadRes
		case unix.EVFILT_WRITE:
			ev.flags |= FlagWriteRes
		}
		if kev.Flags&unix.EV_EOF != 0 {
			ev.flags = ev.flags.WithEOFByte(1)
		}
		// READ and WRITE readiness for one fd arrive as two kevents; the
		// record is linked once and carries both result bits.
		if linked[ev] {
			continue
		}
		if linked == nil {
			linked = make(map[*event]bool)
		}
		linked[ev] = true
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

func (b *kqueueBackend) interrupt() {
	submitGenericWakeup(b.wakeW)
}
