// Package coro implements the suspension engine for task computations. A
// computation runs on its own goroutine, but a channel handshake guarantees
// that at most one of {caller, computation} executes at any instant: Resume
// unparks the computation and blocks until it yields or finishes. Concurrency
// is interleaving, never parallelism.
package coro

import (
	"errors"
	"runtime"
	"sync/atomic"
	"time"
)

// DeadlockDetection bounds how long a Resume call waits for the computation
// to yield before giving up.
const DeadlockDetection = 40 * time.Second

// ErrShutdown is delivered as a panic into a computation that yields after
// Shutdown was requested.
var ErrShutdown = errors.New("coroutine shut down")

type C struct {
	blocking chan struct{} // computation is parked or finished
	unblock  chan struct{} // wakes a parked computation

	blocked    atomic.Bool
	finished   atomic.Bool
	shouldExit atomic.Bool

	deadlockDetection time.Duration
}

// New starts fn on its own goroutine, parked before its first statement.
// Nothing runs until the first Resume.
func New(fn func()) *C {
	c := &C{
		blocking:          make(chan struct{}, 1),
		unblock:           make(chan struct{}),
		deadlockDetection: DeadlockDetection,
	}
	c.blocked.Store(true)

	go func() {
		defer c.finish()

		// Park before the first execution
		c.park(false)

		fn()
	}()

	return c
}

func (c *C) finish() {
	c.finished.Store(true)
	c.blocking <- struct{}{}
}

func (c *C) Finished() bool {
	return c.finished.Load()
}

func (c *C) Blocked() bool {
	return c.blocked.Load()
}

// Yield parks the computation until the next Resume call. Must only be called
// from the computation's own goroutine.
func (c *C) Yield() {
	c.park(true)
}

func (c *C) park(markBlocking bool) {
	if markBlocking {
		if c.shouldExit.Load() {
			panic(ErrShutdown)
		}

		c.blocked.Store(true)
		c.blocking <- struct{}{}
	}

	// Wait for the next Resume call
	<-c.unblock

	if c.shouldExit.Load() {
		// Goexit runs deferred functions, which includes finish() in the
		// goroutine started by New. That marks the coroutine as finished.
		runtime.Goexit()
	}

	c.blocked.Store(false)
}

// Resume continues a parked computation and blocks until it parks again or
// finishes. Calling Resume on a finished coroutine is a no-op.
func (c *C) Resume() {
	if c.Finished() {
		return
	}

	t := time.NewTimer(c.deadlockDetection)
	defer t.Stop()

	c.unblock <- struct{}{}

	runtime.Gosched()

	// Run until parked, which is also true when finished
	select {
	case <-c.blocking:
	case <-t.C:
		panic("coroutine deadlock: computation did not yield")
	}
}

// Shutdown prevents a parked computation from continuing. Its deferred
// functions still run via runtime.Goexit.
func (c *C) Shutdown() {
	if c.Finished() {
		return
	}

	c.shouldExit.Store(true)
	c.Resume()
}
