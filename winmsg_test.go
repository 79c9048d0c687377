//go:build !windows

package evq

import "testing"

func TestQueue_AddWinMsg_UnavailableOffWindows(t *testing.T) {
	q := newTestQueue(t)
	if _, err := q.AddWinMsg(0, nil); err == nil {
		t.Fatal("expected AddWinMsg to fail on a non-Windows platform")
	}
}
