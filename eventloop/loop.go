// Package eventloop provides the single-threaded cooperative scheduling loop
// that the aio primitives run on. The loop owns a FIFO ready queue and a
// timer queue; all loop state is mutated either by the loop goroutine or by a
// computation the loop is currently blocked on, so no locking is required.
package eventloop

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/trace"

	"github.com/aio-go/aio/internal/log"
)

type Loop struct {
	clock        clock.Clock
	logger       *slog.Logger
	tracer       trace.Tracer
	errorHandler func(error)

	ready  []*Handle
	timers timerQueue
	seq    uint64

	running  bool
	stopping bool
	closed   bool

	failures []*failureRecord
}

func New(opts ...LoopOption) *Loop {
	l := &Loop{}

	for _, opt := range opts {
		opt(l)
	}

	if l.clock == nil {
		l.clock = clock.New()
	}
	if l.logger == nil {
		l.logger = slog.Default()
	}
	if l.tracer == nil {
		l.tracer = noopTracer()
	}

	return l
}

// Now returns the loop's notion of the current time.
func (l *Loop) Now() time.Time {
	return l.clock.Now()
}

func (l *Loop) Clock() clock.Clock {
	return l.clock
}

func (l *Loop) Logger() *slog.Logger {
	return l.logger
}

func (l *Loop) Tracer() trace.Tracer {
	return l.tracer
}

// CallSoon enqueues fn for execution on a future loop iteration. Callbacks
// enqueued during the same iteration run in FIFO order on the next one.
func (l *Loop) CallSoon(fn func()) *Handle {
	h := &Handle{fn: fn}
	l.ready = append(l.ready, h)
	return h
}

// CallLater arms a timer that fires fn no earlier than delay from now.
func (l *Loop) CallLater(delay time.Duration, fn func()) *TimerHandle {
	return l.CallAt(l.clock.Now().Add(delay), fn)
}

// CallAt arms a timer that fires fn no earlier than at. Timers fire in
// non-decreasing deadline order; ties break by arming order.
func (l *Loop) CallAt(at time.Time, fn func()) *TimerHandle {
	l.seq++
	h := &TimerHandle{
		Handle: Handle{fn: fn},
		at:     at,
		seq:    l.seq,
	}
	l.timers.push(h)

	l.logger.Debug("armed timer",
		log.NowKey, l.clock.Now(),
		log.AtKey, at)

	return h
}

// Run drives the loop until no scheduled work remains or Stop is called.
func (l *Loop) Run() error {
	_, err := l.run(func() bool { return false })
	return err
}

// RunUntil drives the loop until cond returns true. It returns ErrLoopStarved
// if the loop runs out of scheduled work first.
func (l *Loop) RunUntil(cond func() bool) error {
	stopped, err := l.run(cond)
	if err != nil {
		return err
	}

	if !stopped && !cond() {
		return ErrLoopStarved
	}

	return nil
}

// RunForever drives the loop until Stop is called. It returns ErrLoopStarved
// if the loop runs out of scheduled work before then.
func (l *Loop) RunForever() error {
	stopped, err := l.run(func() bool { return false })
	if err != nil {
		return err
	}

	if !stopped {
		return ErrLoopStarved
	}

	return nil
}

// Stop makes the current Run/RunForever call return after the current
// iteration completes.
func (l *Loop) Stop() {
	l.stopping = true
}

func (l *Loop) run(cond func() bool) (stopped bool, err error) {
	if l.running {
		return false, ErrAlreadyRunning
	}

	l.running = true
	defer func() {
		stopped = l.stopping
		l.running = false
		l.stopping = false
	}()

	l.logger.Debug("running event loop",
		log.ReadyKey, len(l.ready),
		log.TimersKey, l.timers.heap.Len())

	for !l.stopping && !cond() && l.hasWork() {
		l.runOnce()
	}

	return false, nil
}

// runOnce executes one loop iteration: collect due timers, then run every
// callback that was ready at the start of the iteration.
func (l *Loop) runOnce() {
	now := l.clock.Now()
	for {
		t := l.timers.peek()
		if t == nil || t.at.After(now) {
			break
		}

		l.timers.pop()
		if !t.canceled {
			l.ready = append(l.ready, &t.Handle)
		}
	}

	if len(l.ready) == 0 {
		// Only timers remain, sleep until the nearest deadline
		t := l.timers.peek()
		if t == nil {
			return
		}

		if d := t.at.Sub(now); d > 0 {
			l.clock.Sleep(d)
		}
		return
	}

	n := len(l.ready)
	for i := 0; i < n; i++ {
		h := l.ready[0]
		l.ready = l.ready[1:]
		if h.canceled {
			continue
		}

		l.invoke(h.fn)
	}
}

func (l *Loop) invoke(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.HandleError(fmt.Errorf("callback panicked: %w", NewPanicError(r)))
		}
	}()

	fn()
}

func (l *Loop) hasWork() bool {
	for _, h := range l.ready {
		if !h.canceled {
			return true
		}
	}

	return l.timers.peek() != nil
}

// HandleError reports an error the loop cannot deliver to any caller. It is
// diagnostic only and never aborts the loop.
func (l *Loop) HandleError(err error) {
	if l.errorHandler != nil {
		l.errorHandler(err)
		return
	}

	l.logger.Error("unhandled error in event loop", "error", err)
}

type failureRecord struct {
	name      string
	err       error
	retrieved func() bool
}

// RecordFailure registers a stored error so that Close can report it if no
// caller ever retrieves it.
func (l *Loop) RecordFailure(name string, err error, retrieved func() bool) {
	l.failures = append(l.failures, &failureRecord{name: name, err: err, retrieved: retrieved})
}

// Close reports every recorded failure whose error was never retrieved.
func (l *Loop) Close() {
	if l.closed {
		return
	}
	l.closed = true

	for _, f := range l.failures {
		if f.retrieved() {
			continue
		}

		l.HandleError(fmt.Errorf("task %s failed and its error was never retrieved: %w", f.name, f.err))
	}
	l.failures = nil
}
