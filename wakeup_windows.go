//go:build windows

package evq

import "golang.org/x/sys/windows"

// submitGenericWakeup posts a null completion to the IOCP handle, causing
// GetQueuedCompletionStatus to return immediately with overlapped == nil.
// This is the standard wake-up mechanism for IOCP.
func submitGenericWakeup(iocp windows.Handle) error {
	return windows.PostQueuedCompletionStatus(iocp, 0, 0, nil)
}
