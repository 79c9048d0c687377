//go:build !windows

package evq

import "errors"

var errWinMsgWindowsOnly = errors.New("add_winmsg is only available on windows")

// AddWinMsg is Windows-only; on other platforms it always fails.
func (q *Queue) AddWinMsg(handle uintptr, cb Callback) (EventID, error) {
	return 0, errInvalidArg("add_winmsg", errWinMsgWindowsOnly)
}
