//go:build windows

package evq

import (
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procPeekMessage = user32.NewProc("PeekMessageW")
)

// msg mirrors the Win32 MSG struct layout closely enough for PeekMessageW.
type msg struct {
	hwnd    uintptr
	message uint32
	wParam  uintptr
	lParam  uintptr
	time    uint32
	pt      struct{ x, y int32 }
}

const pmRemove = 0x0001

// peekWinMsg reports whether a message was pending for handle, consuming
// it if so. It blocks briefly via the caller's polling loop rather than
// calling GetMessage, so Close/shutdown never leaves a blocking syscall
// outstanding.
func peekWinMsg(handle uintptr) bool {
	var m msg
	r, _, _ := procPeekMessage.Call(
		uintptr(unsafe.Pointer(&m)),
		handle,
		0,
		0,
		pmRemove,
	)
	return r != 0
}

// AddWinMsg registers a callback invoked when a message is posted to the
// given window handle. It is bridged into the same trigger path as other
// object events: a dedicated goroutine runs a PeekMessage loop against
// handle and notifies subscribers whenever a message is pending.
func (q *Queue) AddWinMsg(handle uintptr, cb Callback) (EventID, error) {
	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagWinMsg | FlagObject
	ev.callback = cb
	ev.fd = int(handle)

	trig := &Trigger{}
	trig.subscribe(ev)

	go pumpWinMsg(handle, trig)

	return ev.id, nil
}

func pumpWinMsg(handle uintptr, trig *Trigger) {
	for {
		if peekWinMsg(handle) {
			SysTriggerNotify(trig, FlagRead, false, false)
			continue
		}
		time.Sleep(10 * time.Millisecond)
	}
}
