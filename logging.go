package evq

// logPanic records a recovered dispatch panic/error at error level,
// tagging the event id and a short operation label so structured log
// consumers can correlate it with the callback that misbehaved.
func (q *Queue) logPanic(op string, id EventID, err error) {
	q.log.Err().Err(err).Str("op", op).Int("id", int(id)).Log("callback panicked")
}

// logBackendErr records a non-fatal backend error (e.g. a failed delFD
// during reclaim) without aborting the dispatch loop.
func (q *Queue) logBackendErr(op string, err error) {
	q.log.Warning().Err(err).Str("op", op).Log("backend operation failed")
}

// logTrigger records a cross-thread notify at debug level; cheap to call
// unconditionally since logiface levels below the configured floor are
// filtered before any field is evaluated.
func (q *Queue) logTrigger(id EventID) {
	q.log.Debug().Int("id", int(id)).Log("trigger notified")
}
