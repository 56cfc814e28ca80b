package aio

import (
	"context"

	"github.com/aio-go/aio/eventloop"
)

// Completions yields a group's members one at a time in completion order. It
// is a finite, non-restartable sequence with exactly as many elements as the
// group has members.
type Completions struct {
	slots []*Future[Awaitable]
	next  int
}

// AsCompleted arms the group: every member is matched to the next free slot
// as it completes. With WithTimeout, a single shared deadline timer resolves
// every still-unmatched slot with ErrTimeout when it fires; members already
// matched keep yielding normally.
func AsCompleted(ctx context.Context, futures []Awaitable, opts ...WaitOption) *Completions {
	var options waitOptions
	for _, opt := range opts {
		opt(&options)
	}

	st := stateFromContext(ctx)

	c := &Completions{slots: make([]*Future[Awaitable], len(futures))}
	for i := range c.slots {
		c.slots[i] = NewFuture[Awaitable](st.loop)
	}

	var timer *eventloop.TimerHandle

	matched := 0
	deliver := func(f Awaitable) {
		// Skip slots the deadline already resolved
		for matched < len(c.slots) && c.slots[matched].Done() {
			matched++
		}
		if matched == len(c.slots) {
			return
		}

		_ = c.slots[matched].SetResult(f)
		matched++

		if matched == len(c.slots) && timer != nil {
			timer.Cancel()
		}
	}

	if options.hasTimeout {
		timer = st.loop.CallLater(options.timeout, func() {
			for _, slot := range c.slots {
				if !slot.Done() {
					_ = slot.SetError(ErrTimeout)
				}
			}
		})
	}

	for _, f := range futures {
		if f.Done() {
			deliver(f)
		} else {
			f.AddDoneCallback(deliver)
		}
	}

	return c
}

// Next suspends the calling computation until the next member completes and
// returns it; the caller retrieves the member's value or error. It returns
// ErrTimeout for a slot past the deadline, and ErrExhausted once all slots
// are consumed.
func (c *Completions) Next(ctx context.Context) (Awaitable, error) {
	if c.next == len(c.slots) {
		return nil, ErrExhausted
	}

	slot := c.slots[c.next]
	c.next++

	return Await[Awaitable](ctx, slot)
}

// Len returns the total number of slots.
func (c *Completions) Len() int {
	return len(c.slots)
}

// Remaining returns how many slots have not been consumed yet.
func (c *Completions) Remaining() int {
	return len(c.slots) - c.next
}
