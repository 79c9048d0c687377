//go:build linux

package evq

import (
	"golang.org/x/sys/unix"
)

// createWakeFd creates an eventfd for wake-up notifications on Linux. The
// read and write ends are the same fd.
func createWakeFd() (int, int, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
	return fd, fd, err
}

func closeWakeFd(r, w int) {
	if r >= 0 {
		_ = unix.Close(r)
	}
}

// drainWakeUpPipe drains a pending wake-up on the eventfd.
func drainWakeUpPipe(fd int) {
	var buf [8]byte
	for {
		if _, err := unix.Read(fd, buf[:]); err != nil {
			break
		}
	}
}

// submitGenericWakeup writes to the wake eventfd, unblocking EpollWait.
func submitGenericWakeup(fd int) {
	var one [8]byte
	one[0] = 1
	_, _ = unix.Write(fd, one[:])
}
