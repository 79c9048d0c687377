package evq

import "time"

// backend is component A: a thin uniform adapter over epoll / kqueue /
// poll / IOCP. Every platform file in this module implements it
// identically from the front-end's point of view — level-triggered
// semantics regardless of the underlying edge/level primitive.
type backend interface {
	// init acquires the OS multiplexer plus a self-wake channel.
	init() error
	// close releases backend resources.
	close() error
	// addFD registers ev.fd for ev.flags & (READ|WRITE).
	addFD(ev *event) error
	// changeFD atomically replaces the readiness mask for a SOCKET event.
	changeFD(ev *event, rw Flags) error
	// delFD deregisters ev. reuseFD hints the backend not to close the
	// handle itself.
	delFD(ev *event, reuseFD bool) error
	// wait blocks up to timeout (Infinite blocks forever) and returns a
	// singly-linked ready chain (via event.readyNext). A nil chain with a
	// nil error means a spurious/null wake: check triggers and interrupts,
	// then loop again.
	wait(timeout time.Duration) (*event, error)
	// interrupt wakes any thread currently inside wait. Idempotent, safe
	// from any thread.
	interrupt()
}

// rwMask returns the backend-facing subset of flags relevant to
// readiness registration.
func rwMask(f Flags) Flags { return f & (FlagRead | FlagWrite) }
