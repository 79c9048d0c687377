package evq

import (
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joeycumines/go-catrate"
	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Queue is the event queue front-end: component D. It owns the
// environment tables (id -> record, id -> fd/udata, id -> callback), the
// backend multiplexer, the timeout wheel, and the cross-thread trigger
// list.
type Queue struct {
	be    backend
	wheel *timeoutWheel
	pool  *recordPool

	// stopFlag and intrFlag hold STOP/INTR; both are cleared at Loop entry
	// and set by Stop/Interrupt from any thread.
	stopFlag atomic.Bool
	intrFlag atomic.Bool

	state *fastState

	// vmMu is the "VM lock" guarding only the triggers list mutation; it
	// is never held during user callback execution.
	vmMu     sync.Mutex
	triggers *event

	onInterrupt Callback

	log    *logiface.Logger[*stumpy.Event]
	dwRate *catrate.Limiter

	sigMu   sync.Mutex
	signals map[string]*signalWatch

	closed bool
}

// QueueOption configures a Queue at construction time.
type QueueOption interface{ apply(*queueConfig) }

type queueConfig struct {
	logger      *logiface.Logger[*stumpy.Event]
	cacheCap    int
	idFloor     EventID
	backend     backend
	rateLimiter *catrate.Limiter
}

type queueOptionFunc func(*queueConfig)

func (f queueOptionFunc) apply(c *queueConfig) { f(c) }

// WithLogger attaches a structured logger used for backend/trigger/panic
// diagnostics. Without one, a logger writing to io.Discard is used.
func WithLogger(l *logiface.Logger[*stumpy.Event]) QueueOption {
	return queueOptionFunc(func(c *queueConfig) { c.logger = l })
}

// WithCacheCap overrides the event-record cache cap (default 64).
func WithCacheCap(n int) QueueOption {
	return queueOptionFunc(func(c *queueConfig) { c.cacheCap = n })
}

// WithIDFloor overrides the id allocator's floor (default 5; never below
// 5, since ids 1..4 are reserved).
func WithIDFloor(floor EventID) QueueOption {
	return queueOptionFunc(func(c *queueConfig) { c.idFloor = floor })
}

// WithBackend overrides the platform backend; used by tests.
func WithBackend(b backend) QueueOption {
	return queueOptionFunc(func(c *queueConfig) { c.backend = b })
}

// WithRateLimiter wires a go-catrate limiter used to throttle dirwatch
// MODIFY-event storms. Without one, dirwatch events are never throttled.
func WithRateLimiter(l *catrate.Limiter) QueueOption {
	return queueOptionFunc(func(c *queueConfig) { c.rateLimiter = l })
}

func resolveQueueConfig(opts []QueueOption) queueConfig {
	c := queueConfig{cacheCap: cacheCap, idFloor: idFloor}
	for _, o := range opts {
		if o != nil {
			o.apply(&c)
		}
	}
	return c
}

// NewQueue constructs a queue, initializing the platform backend (acquire
// the OS multiplexer plus a self-wake channel).
func NewQueue(opts ...QueueOption) (*Queue, error) {
	initSignals()
	c := resolveQueueConfig(opts)

	be := c.backend
	if be == nil {
		be = newBackend()
	}
	if err := be.init(); err != nil {
		return nil, err
	}

	q := &Queue{
		be:     be,
		wheel:  newTimeoutWheel(),
		pool:   newRecordPool(c.idFloor, c.cacheCap),
		log:    c.logger,
		dwRate: c.rateLimiter,
		state:  newFastState(),
	}
	if q.log == nil {
		q.log = stumpy.L.New(stumpy.L.WithStumpy(stumpy.WithWriter(io.Discard)))
	}
	return q, nil
}

// Close releases backend resources. A closed queue must not be used
// again.
func (q *Queue) Close() error {
	if q.closed {
		return nil
	}
	q.closed = true
	q.state.TransitionAny([]QueueState{StateAwake, StateRunning, StateSleeping, StateTerminating}, StateTerminating)
	q.state.Store(StateTerminated)
	return q.be.close()
}

// addOptions bundles the optional parameters shared across the add*
// operations.
type addOptions struct {
	timeout time.Duration
	oneshot bool
	flags   Flags
	udata   any
	task    Task
}

// AddOption configures a single add call.
type AddOption func(*addOptions)

func WithTimeout(d time.Duration) AddOption { return func(o *addOptions) { o.timeout = d } }
func WithOneshot() AddOption                { return func(o *addOptions) { o.oneshot = true } }
func WithUserData(v any) AddOption          { return func(o *addOptions) { o.udata = v } }
func WithTask(t Task) AddOption             { return func(o *addOptions) { o.task = t } }

func resolveAddOptions(opts []AddOption) addOptions {
	o := addOptions{timeout: Infinite}
	for _, f := range opts {
		if f != nil {
			f(&o)
		}
	}
	return o
}

// Add registers fd for rw (READ|WRITE) and returns the new event's id.
// Only the READ and WRITE bits of rw are used; any other bit, FlagSocket
// included, is ignored, so the event is never a SOCKET or SOCKET_ACC_CONN
// event (AddSocket registers those).
func (q *Queue) Add(fd int, rw Flags, cb Callback, opts ...AddOption) (EventID, error) {
	o := resolveAddOptions(opts)
	if rw&(FlagRead|FlagWrite) == 0 {
		return 0, errInvalidArg("add", errBadSocketMode)
	}

	ev := q.pool.alloc()
	ev.q = q
	ev.fd = fd
	ev.flags = rw & (FlagRead | FlagWrite)
	if o.oneshot {
		ev.flags |= FlagOneshot
	}
	ev.callback = cb
	ev.task = o.task
	ev.udata = o.udata

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

// AddTimer registers a pure timer event firing after d. If periodic is
// true, the timer is reset to fire again every d until deleted.
func (q *Queue) AddTimer(cb Callback, d time.Duration, periodic bool) (EventID, error) {
	ev := q.pool.alloc()
	ev.q = q
	ev.flags = FlagTimer
	if !periodic {
		ev.flags |= FlagOneshot
	}
	ev.period = d
	ev.callback = cb
	q.wheel.addTimer(ev, time.Now(), d)
	return ev.id, nil
}

// Del deregisters id. reuseFD hints the backend not to close the handle
// itself (the caller owns the fd's lifetime).
func (q *Queue) Del(id EventID, reuseFD bool) error {
	ev := q.pool.lookup(id)
	if ev == nil {
		return errInvalidArg("del", errNotFound)
	}
	return q.deleteEvent(ev, reuseFD)
}

// deleteEvent marks DELETE; actual backend/wheel teardown and recycling
// happens when the dispatcher observes DELETE outside its own dispatch
// frame (see dispatch.go), except for events that aren't currently
// in-flight, which are torn down immediately.
func (q *Queue) deleteEvent(ev *event, reuseFD bool) error {
	if ev.flags.Has(FlagDelete) {
		return nil
	}
	ev.flags |= FlagDelete
	ev.reuseFD = reuseFD
	if !ev.flags.Has(FlagActive) {
		return q.reclaim(ev, reuseFD)
	}
	return nil
}

// reclaim tears down backend/wheel registration and returns ev's id and
// record to the pool.
func (q *Queue) reclaim(ev *event, reuseFD bool) error {
	var err error
	if ev.registeredWithBackend() {
		err = q.be.delFD(ev, reuseFD || noAutoClose(ev.fd))
		if err != nil {
			q.logBackendErr("del", err)
		}
	}
	if ev.inWheel {
		q.wheel.delTimer(ev)
	}
	if ev.trigger != nil {
		ev.trigger.unsubscribe(ev)
	}
	ev.q = nil
	q.pool.release(ev)
	return err
}

// Callback gets or sets id's callback token.
func (q *Queue) Callback(id EventID, set ...Callback) (Callback, error) {
	ev := q.pool.lookup(id)
	if ev == nil {
		return nil, nil // per §8: fetching a recycled id returns nil, not an error
	}
	if len(set) > 0 {
		ev.callback = set[0]
		return nil, nil
	}
	return ev.callback, nil
}

// Timeout sets id's timeout to msec[0] from now; that value also becomes
// the fired timeout passed to the callback and the re-arm interval. With
// no msec it only checks that id exists and accepts a timeout, and
// changes nothing.
func (q *Queue) Timeout(id EventID, msec ...time.Duration) error {
	ev := q.pool.lookup(id)
	if ev == nil {
		return errInvalidArg("timeout", errNotFound)
	}
	if ev.flags.Has(FlagWinMsg) {
		return errInvalidArg("timeout", errWinMsgOnly)
	}
	if len(msec) == 0 {
		return nil
	}
	q.wheel.addTimer(ev, time.Now(), msec[0])
	ev.period = msec[0]
	return nil
}

// OnInterrupt installs the loop-wide interrupt callback.
func (q *Queue) OnInterrupt(cb Callback) { q.onInterrupt = cb }

// Interrupt wakes any thread currently inside Loop. Idempotent, safe from
// any thread.
func (q *Queue) Interrupt() error {
	q.intrFlag.Store(true)
	q.be.interrupt()
	return nil
}

// Stop asks the loop to exit after the current dispatch iteration.
func (q *Queue) Stop() { q.stopFlag.Store(true) }

// Notify is the in-process shortcut for pre-registered timer/object
// events: sets ACTIVE and the requested result bits, performs timer
// housekeeping, pushes the event onto the triggers list, and interrupts
// the queue.
func (q *Queue) Notify(id EventID, rw Flags) error {
	ev := q.pool.lookup(id)
	if ev == nil || !(ev.flags.Has(FlagTimer) || ev.flags.Has(FlagObject)) {
		return errInvalidArg("notify", errNotTimerOrObj)
	}
	q.notifyEvent(ev, requestToResultBits(rw))
	return nil
}

// requestToResultBits maps requested READ/WRITE request bits onto their
// corresponding result bits.
func requestToResultBits(rw Flags) Flags {
	var res Flags
	if rw.Has(FlagRead) {
		res |= FlagReadRes
	}
	if rw.Has(FlagWrite) {
		res |= FlagWriteRes
	}
	return res
}

func (q *Queue) notifyEvent(ev *event, res Flags) {
	if ev.flags.Has(FlagActive) {
		return // already active: coalesce
	}
	ev.flags |= FlagActive | (res & (FlagReadRes | FlagWriteRes))
	now := time.Now()
	if ev.flags.Has(FlagDelete) || ev.flags.Has(FlagOneshot) {
		q.wheel.delTimer(ev)
	} else if ev.inWheel {
		q.wheel.reset(ev, now)
	}

	q.vmMu.Lock()
	ev.triggerNext = q.triggers
	q.triggers = ev
	q.vmMu.Unlock()

	q.logTrigger(ev.id)
	_ = q.Interrupt()
}
