//go:build windows

package evq

import "golang.org/x/sys/windows"

// Predefined standard stream handles, resolved via GetStdHandle. Falls
// back to an invalid handle if the process has no console/streams
// attached (e.g. a GUI subsystem process).
var (
	Stdin  = mustStdHandle(windows.STD_INPUT_HANDLE)
	Stdout = mustStdHandle(windows.STD_OUTPUT_HANDLE)
	Stderr = mustStdHandle(windows.STD_ERROR_HANDLE)
)

func mustStdHandle(which uint32) Handle {
	h, err := windows.GetStdHandle(which)
	if err != nil {
		return Handle(windows.InvalidHandle)
	}
	return Handle(h)
}
