//go:build !windows

package evq

// postCall is evq_post_call: a no-op on Unix backends, since epoll/kqueue
// are level-triggered and need no explicit re-arm after dispatch.
func postCall(q *Queue, ev *event) {}
