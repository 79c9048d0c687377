package evq

import (
	"os"
	"time"
)

// AddPid registers a ONESHOT wait on a process's exit. Idiomatic Go has no
// portable pidfd/EVFILT_PROC primitive, so this is backed by a goroutine
// blocked in (*os.Process).Wait, which notifies the queue through the
// same Notify/trigger path a cross-thread object event uses.
func (q *Queue) AddPid(pid int, cb Callback, timeout time.Duration) (EventID, error) {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return 0, errInvalidArg("add_pid", err)
	}

	ev := q.pool.alloc()
	ev.q = q
	ev.fd = pid
	ev.flags = FlagPid | FlagOneshot | FlagObject
	ev.callback = cb

	trig := &Trigger{}
	trig.subscribe(ev)

	if timeout != Infinite {
		q.wheel.addTimer(ev, time.Now(), timeout)
		ev.period = timeout
	}

	go func() {
		_, _ = proc.Wait()
		SysTriggerNotify(trig, FlagRead, false, false)
	}()

	return ev.id, nil
}
