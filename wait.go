package aio

import (
	"context"
	"time"

	"github.com/aio-go/aio/eventloop"
)

// WaitMode selects the completion threshold for Wait.
type WaitMode int

const (
	// AllCompleted releases the caller once every member is terminal.
	AllCompleted WaitMode = iota

	// FirstCompleted releases the caller once any member is terminal.
	FirstCompleted

	// FirstException releases the caller once any member fails or is
	// canceled, or once every member is terminal if none do.
	FirstException
)

type waitOptions struct {
	timeout    time.Duration
	hasTimeout bool
	mode       WaitMode
}

type WaitOption func(*waitOptions)

// WithTimeout bounds how long the caller is suspended. On expiry Wait
// releases with whatever partition exists at that moment and AsCompleted
// resolves unmatched slots with ErrTimeout. Outstanding members are never
// canceled; that is the caller's decision.
func WithTimeout(d time.Duration) WaitOption {
	return func(o *waitOptions) {
		o.timeout = d
		o.hasTimeout = true
	}
}

// WithMode sets the completion threshold for Wait. AsCompleted ignores it.
func WithMode(m WaitMode) WaitOption {
	return func(o *waitOptions) {
		o.mode = m
	}
}

// Wait suspends the calling computation until the group reaches the
// configured completion threshold or the timeout elapses, and returns the
// members partitioned into done and pending, preserving input order.
//
// The returned error is non-nil only when the calling task itself is
// canceled while waiting.
func Wait(ctx context.Context, futures []Awaitable, opts ...WaitOption) (done, pending []Awaitable, err error) {
	var options waitOptions
	for _, opt := range opts {
		opt(&options)
	}

	st := stateFromContext(ctx)

	if len(futures) == 0 {
		return nil, nil, nil
	}

	remaining := 0
	for _, f := range futures {
		if !f.Done() {
			remaining++
		}
	}

	if !waitSatisfied(futures, remaining, options.mode) {
		release := NewFuture[struct{}](st.loop)
		releaseOnce := func() {
			if !release.Done() {
				_ = release.SetResult(struct{}{})
			}
		}

		wake := func(Awaitable) {
			// Already released; a registration left on a member shared with
			// another wait must not be torn down, so it stays and goes quiet.
			if release.Done() {
				return
			}

			remaining--
			if waitSatisfied(futures, remaining, options.mode) {
				releaseOnce()
			}
		}

		for _, f := range futures {
			if !f.Done() {
				f.AddDoneCallback(wake)
			}
		}

		var timer *eventloop.TimerHandle
		if options.hasTimeout {
			timer = st.loop.CallLater(options.timeout, releaseOnce)
		}

		_, waitErr := Await[struct{}](ctx, release)

		if timer != nil {
			timer.Cancel()
		}

		if waitErr != nil {
			return nil, nil, waitErr
		}
	}

	for _, f := range futures {
		if f.Done() {
			done = append(done, f)
		} else {
			pending = append(pending, f)
		}
	}

	return done, pending, nil
}

// peekMemberErr reads a member's error without marking it retrieved, so a
// failure observed only by the wait threshold is still reported on Close.
func peekMemberErr(f Awaitable) error {
	if p, ok := f.(interface{ peekErr() error }); ok {
		return p.peekErr()
	}
	return f.Err()
}

func waitSatisfied(futures []Awaitable, remaining int, mode WaitMode) bool {
	switch mode {
	case FirstCompleted:
		return remaining < len(futures)
	case FirstException:
		if remaining == 0 {
			return true
		}
		for _, f := range futures {
			if f.Done() && peekMemberErr(f) != nil {
				return true
			}
		}
		return false
	default:
		return remaining == 0
	}
}
