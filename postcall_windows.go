//go:build windows

package evq

// postCall is evq_post_call on Windows: the IOCP backend here re-arms its
// WSAPoll watch from within wait() itself, so this remains a no-op; it
// stays a distinct hook point because a future overlapped-AIO backend
// would resubmit the completed operation here.
func postCall(q *Queue, ev *event) {}
