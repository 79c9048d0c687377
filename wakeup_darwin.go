//go:build darwin

package evq

import (
	"syscall"
)

// createWakeFd creates a self-pipe for wake-up notifications on Darwin.
func createWakeFd() (int, int, error) {
	var fds [2]int
	if err := syscall.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}

	cleanup := func() {
		_ = syscall.Close(fds[0])
		_ = syscall.Close(fds[1])
	}

	syscall.CloseOnExec(fds[0])
	syscall.CloseOnExec(fds[1])

	if err := syscall.SetNonblock(fds[0], true); err != nil {
		cleanup()
		return 0, 0, err
	}
	if err := syscall.SetNonblock(fds[1], true); err != nil {
		cleanup()
		return 0, 0, err
	}

	return fds[0], fds[1], nil
}

func closeWakeFd(r, w int) {
	if r >= 0 {
		_ = syscall.Close(r)
	}
	if w >= 0 && w != r {
		_ = syscall.Close(w)
	}
}

// drainWakeUpPipe drains pending wake-up bytes from the self-pipe's read
// end.
func drainWakeUpPipe(fd int) {
	var buf [64]byte
	for {
		n, err := syscall.Read(fd, buf[:])
		if err != nil || n <= 0 {
			break
		}
	}
}

// submitGenericWakeup writes a single byte to the self-pipe's write end,
// unblocking kevent.
func submitGenericWakeup(fd int) {
	_, _ = syscall.Write(fd, []byte{1})
}
