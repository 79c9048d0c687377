// Package evq provides a cross-platform readiness-notification event
// queue: a single cooperative dispatch loop multiplexing file-descriptor
// I/O, timers, process exits, signals, directory-change notifications,
// and user-triggered "object" events.
//
// # Architecture
//
// Everything funnels through [Queue], built around a platform backend
// (epoll, kqueue, poll, or IOCP), a deadline-ordered timeout wheel, and a
// capped id/record pool. Registration methods ([Queue.Add],
// [Queue.AddTimer], [Queue.AddPid], [Queue.AddSignal],
// [Queue.AddDirWatch], [Queue.AddWinMsg], [Queue.AddTrigger],
// [Queue.AddSocket]) all return an [EventID] identifying the record; every
// other operation ([Queue.Del], [Queue.Callback], [Queue.Timeout],
// [Queue.ModSocket], [Queue.Notify]) addresses a record by that id.
//
// # Platform Support
//
// Backend readiness multiplexing is implemented using platform-native
// mechanisms:
//   - Linux: epoll
//   - Darwin/BSD: kqueue
//   - Windows: IOCP (I/O Completion Ports), with per-socket WSAPoll
//     bridging readiness into completion posts
//   - other Unix: poll(2), as a generic fallback
//
// Directory-change notification similarly prefers a native mechanism
// (inotify on Linux) and falls back to mtime polling elsewhere.
//
// # Thread Safety
//
// [Queue.Interrupt], [Queue.Stop], and [SysTriggerNotify] are safe to
// call from any goroutine, including one not driving the queue's own
// [Queue.Loop]. Cross-thread notification is coalesced: a record that is
// already ACTIVE is not re-queued. All other methods, [Queue.Notify]
// included, assume single-threaded use from the goroutine calling Loop,
// matching the single-writer discipline the dispatch loop itself
// depends on.
//
// # Execution Model
//
// [Queue.Loop] repeatedly waits on the backend for the shorter of the
// caller's timeout and the next timer deadline, merges expired timers and
// any pending cross-thread triggers onto the ready chain, and dispatches
// each event's callback (or resumes its [Task], if one was registered via
// [WithTask]) with the fixed positional callback ABI: queue, id, user
// data, readable, writable, fired timeout, EOF/error byte. ONESHOT
// records are deleted automatically after their one dispatch.
//
// # Usage
//
//	q, err := evq.NewQueue()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer q.Close()
//
//	id, err := q.AddTimer(func(q *evq.Queue, id evq.EventID, udata any, r, w bool, to *time.Duration, eof *uint8) {
//	    fmt.Println("tick")
//	    q.Stop()
//	}, 100*time.Millisecond, false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := q.Loop(evq.Infinite); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Types
//
// Failures are reported as a single typed [*Error], classified by
// [ErrorKind] ([ErrBackend], [ErrInvalidArg], [ErrResource],
// [ErrUser]). [LastError] retrieves the most recent error set by any
// queue in the process, mirroring the single "last error message" slot
// the underlying C library exposed.
package evq
