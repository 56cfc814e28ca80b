// Package aio provides cooperative, single-threaded concurrency primitives:
// a one-shot Future result box, a Task that drives a suspendable computation
// step by step, and composition helpers (Wait, AsCompleted, Sleep) built on
// top of them.
//
// Everything runs on an eventloop.Loop. Concurrency is interleaving, not
// parallelism: at most one step of one task executes at any instant, and a
// computation only suspends where it explicitly awaits an inner future.
// Cancellation is cooperative: a request is recorded and delivered at the
// next Await checkpoint, never by interrupting running code. Because there is
// no real parallelism, the primitives use no locks; ordering comes from the
// loop's FIFO ready queue and deadline-ordered timers.
package aio
