//go:build windows

package evq

import "syscall"

// closeFD closes a Windows handle represented as an int fd.
func closeFD(fd int) error {
	return syscall.CloseHandle(syscall.Handle(fd))
}

// readFD reads from a Windows handle.
func readFD(fd int, buf []byte) (int, error) {
	var n uint32
	err := syscall.ReadFile(syscall.Handle(fd), buf, &n, nil)
	return int(n), err
}

// writeFD writes to a Windows handle.
func writeFD(fd int, buf []byte) (int, error) {
	var n uint32
	err := syscall.WriteFile(syscall.Handle(fd), buf, &n, nil)
	return int(n), err
}
