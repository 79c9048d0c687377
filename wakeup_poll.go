//go:build !linux && !darwin && !windows

package evq

import "golang.org/x/sys/unix"

// createWakeFd creates a self-pipe for wake-up notifications on the
// generic poll(2) fallback backend.
func createWakeFd() (int, int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, 0, err
	}
	for _, fd := range fds {
		_ = unix.SetNonblock(fd, true)
	}
	return fds[0], fds[1], nil
}

func closeWakeFd(r, w int) {
	if r >= 0 {
		_ = unix.Close(r)
	}
	if w >= 0 && w != r {
		_ = unix.Close(w)
	}
}

func drainWakeUpPipe(fd int) {
	var buf [64]byte
	for {
		n, err := unix.Read(fd, buf[:])
		if err != nil || n <= 0 {
			break
		}
	}
}

func submitGenericWakeup(fd int) {
	_, _ = unix.Write(fd, []byte{1})
}
