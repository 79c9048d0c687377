package evq

import "time"

// AddSocket registers sd with one of the modes {r, w, rw, accept, connect}.
// accept is a level READ; connect is a ONESHOT WRITE. Both set
// FlagSocketAccConn on the record; ModSocket and the backends do not
// consult that bit and treat such events like any other socket event.
func (q *Queue) AddSocket(sd int, mode string, cb Callback, timeout time.Duration, oneshot bool) (EventID, error) {
	var rw Flags
	accConn := false
	switch mode {
	case "r":
		rw = FlagRead
	case "w":
		rw = FlagWrite
	case "rw", "":
		rw = FlagRead | FlagWrite
	case "accept", "a":
		rw = FlagRead
		accConn = true
	case "connect", "c":
		rw = FlagWrite
		oneshot = true
		accConn = true
	default:
		return 0, errInvalidArg("add_socket", errBadSocketMode)
	}

	opts := []AddOption{}
	if timeout != Infinite {
		opts = append(opts, WithTimeout(timeout))
	}
	if oneshot {
		opts = append(opts, WithOneshot())
	}

	ev := q.pool.alloc()
	ev.q = q
	ev.fd = sd
	ev.flags = rw | FlagSocket
	if accConn {
		ev.flags |= FlagSocketAccConn
	}
	o := resolveAddOptions(opts)
	if o.oneshot {
		ev.flags |= FlagOneshot
	}
	ev.callback = cb

	if err := q.be.addFD(ev); err != nil {
		q.pool.release(ev)
		return 0, err
	}
	if o.timeout != Infinite {
		q.wheel.addTimer(ev, time.Now(), o.timeout)
		ev.period = o.timeout
	}
	return ev.id, nil
}

// ModSocket applies a sign-tracked mask rewrite to id's readiness mask:
// each '+'/'-' token sets the sign, which stays in force for every
// following direction letter ('r'/'w') until the next sign; under '+' the
// bit is OR'd in, under '-' it is AND'd out. A pattern that starts with a
// letter replaces the mask: both bits are cleared, that letter's bit is
// set, and the letters after it are added as under '+'. The computed mask
// is pushed to the backend before being committed to the event's stored
// flags (all-or-nothing).
func (q *Queue) ModSocket(id EventID, pattern string) error {
	ev := q.pool.lookup(id)
	if ev == nil {
		return errInvalidArg("mod_socket", errNotFound)
	}
	if !ev.flags.Has(FlagSocket) {
		return errInvalidArg("mod_socket", errNotSocket)
	}

	mask, err := applyModSocketPattern(rwMask(ev.flags), pattern)
	if err != nil {
		return errInvalidArg("mod_socket", err)
	}

	if err := q.be.changeFD(ev, mask); err != nil {
		return err
	}
	ev.flags = (ev.flags &^ (FlagRead | FlagWrite)) | mask
	return nil
}

// applyModSocketPattern is the reference interpretation of a mod_socket
// pattern against a starting mask m.
func applyModSocketPattern(m Flags, pattern string) (Flags, error) {
	sign := byte(0) // 0 = none, '+' = add, '-' = remove

	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch c {
		case '+', '-':
			sign = c
		case 'r', 'w':
			var bit Flags
			if c == 'r' {
				bit = FlagRead
			} else {
				bit = FlagWrite
			}
			switch sign {
			case '+':
				m |= bit
			case '-':
				m &^= bit
			default:
				// leading (unsigned) letter: replace mode; the letters
				// after it are added as if signed '+'.
				m = bit
				sign = '+'
			}
		default:
			return 0, errBadModePat
		}
	}
	return m, nil
}
