package aio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aio-go/aio/eventloop"
	"github.com/aio-go/aio/internal/coro"
	"github.com/aio-go/aio/internal/log"
)

type taskCtxKeyType int

var taskCtxKey taskCtxKeyType

// taskState is the untyped task bookkeeping shared between the generic Task
// and the Await checkpoint.
type taskState struct {
	co   *coro.C
	loop *eventloop.Loop

	// waiter is the inner future the computation is currently suspended on.
	waiter Awaitable

	// mustCancel records a cancellation request that could not be delivered
	// through the waiter; the next checkpoint delivers it instead of a value.
	mustCancel bool

	// cancelling marks the transient display state between a cancellation
	// request and its delivery.
	cancelling bool
}

func stateFromContext(ctx context.Context) *taskState {
	st, ok := ctx.Value(taskCtxKey).(*taskState)
	if !ok {
		panic("aio: not inside a task computation")
	}
	return st
}

var taskCounter atomic.Uint64

// Task drives a suspendable computation to completion, one step at a time.
// It is itself a future of the computation's eventual outcome.
//
// A running step is never interrupted: cancellation is cooperative and only
// takes effect at the next Await checkpoint.
type Task[T any] struct {
	Future[T]

	st *taskState

	id      string
	name    string
	started bool
}

// NewTask wraps fn in a task on the given loop and schedules its first step.
// fn runs on its own goroutine but only ever while the loop is blocked
// resuming it, so steps of different tasks always interleave, never overlap.
func NewTask[T any](loop *eventloop.Loop, fn func(ctx context.Context) (T, error), opts ...TaskOption) *Task[T] {
	var options taskOptions
	for _, opt := range opts {
		opt(&options)
	}

	name := options.name
	if name == "" {
		name = fmt.Sprintf("Task-%d", taskCounter.Add(1))
	}

	t := &Task[T]{
		id:   uuid.NewString(),
		name: name,
		st:   &taskState{loop: loop},
	}
	t.Future.loop = loop
	t.Future.owner = t

	ctx := context.WithValue(context.Background(), taskCtxKey, t.st)
	t.st.co = coro.New(func() {
		t.run(ctx, fn)
	})

	loop.Logger().Debug("starting task",
		log.TaskIDKey, t.id,
		log.TaskNameKey, t.name)

	loop.CallSoon(t.step)

	return t
}

func (t *Task[T]) ID() string {
	return t.id
}

func (t *Task[T]) Name() string {
	return t.name
}

// run executes the computation on the coroutine goroutine and records its
// outcome.
func (t *Task[T]) run(ctx context.Context, fn func(ctx context.Context) (T, error)) {
	defer func() {
		if r := recover(); r != nil {
			var zero T

			if err, ok := r.(error); ok {
				if errors.Is(err, coro.ErrShutdown) {
					return
				}
				if errors.Is(err, Canceled) {
					t.finish(zero, Canceled)
					return
				}
			}

			t.finish(zero, eventloop.NewPanicError(r))
		}
	}()

	ctx, span := t.Future.loop.Tracer().Start(ctx, "task: "+t.name,
		trace.WithAttributes(attribute.String(log.TaskIDKey, t.id)))
	defer span.End()

	v, err := fn(ctx)
	t.finish(v, err)
}

// finish records the computation's outcome on the task future. A returned
// Canceled error, or a cancel request still pending at completion, turns into
// the CANCELLED terminal state instead of FINISHED.
func (t *Task[T]) finish(v T, err error) {
	switch {
	case err != nil && errors.Is(err, Canceled):
		t.Future.Cancel()
	case t.st.mustCancel:
		t.st.mustCancel = false
		t.Future.Cancel()
	case err != nil:
		_ = t.Future.SetError(err)
		t.Future.loop.RecordFailure(t.name, err, func() bool { return t.Future.retrieved })
	default:
		_ = t.Future.SetResult(v)
	}
}

// step resumes the computation until it finishes or suspends on an inner
// future. Steps always run through the loop's ready queue: the first step is
// scheduled by NewTask, later ones by the waiter's done callback.
func (t *Task[T]) step() {
	if t.Done() {
		return
	}

	if !t.started && t.st.mustCancel {
		// Canceled before the first step; the computation never runs.
		t.st.mustCancel = false
		t.st.co.Shutdown()
		t.Future.Cancel()
		return
	}

	t.started = true
	t.st.co.Resume()

	if t.st.co.Finished() {
		// Outcome was recorded by run
		return
	}

	w := t.st.waiter
	if w == nil {
		// Suspended without naming a waiter: a bare yield, take another step
		// on the next iteration.
		t.Future.loop.CallSoon(t.step)
		return
	}

	w.AddDoneCallback(t.wake)
}

func (t *Task[T]) wake(Awaitable) {
	t.step()
}

// Cancel requests cooperative cancellation. If the computation is suspended,
// the inner future is canceled so the checkpoint observes the cancellation;
// if the inner future is already terminal, or the computation has not
// suspended yet, the next checkpoint delivers the cancellation instead of a
// value. Returns false only when the task is already terminal.
func (t *Task[T]) Cancel() bool {
	if t.Done() {
		return false
	}

	t.st.cancelling = true

	if t.st.waiter != nil && t.st.waiter.Cancel() {
		return true
	}

	t.st.mustCancel = true
	return true
}

func (t *Task[T]) String() string {
	if t.state == statePending && t.st.cancelling {
		return fmt.Sprintf("Task(%s)<CANCELLING, %s>", t.name, t.callbackNames())
	}
	if t.state == statePending {
		return fmt.Sprintf("Task(%s)<PENDING, %s>", t.name, t.callbackNames())
	}
	return fmt.Sprintf("Task(%s)%s", t.name, t.describe())
}

// Await suspends the calling computation until f is terminal and returns its
// outcome. This is the only point where a pending cancellation of the calling
// task is delivered. Must be called from inside a task computation.
func Await[T any](ctx context.Context, f Resolvable[T]) (T, error) {
	var zero T

	st := stateFromContext(ctx)

	if st.mustCancel {
		st.mustCancel = false
		return zero, Canceled
	}

	if f.Done() {
		return f.Result()
	}

	st.waiter = f
	st.co.Yield()
	st.waiter = nil

	if st.mustCancel {
		st.mustCancel = false
		return zero, Canceled
	}

	return f.Result()
}

// RunUntilComplete drives the loop until f is terminal and returns its
// outcome. It returns eventloop.ErrLoopStarved if the loop runs out of work
// before f completes.
func RunUntilComplete[T any](loop *eventloop.Loop, f Resolvable[T]) (T, error) {
	if err := loop.RunUntil(f.Done); err != nil {
		var zero T
		return zero, err
	}

	return f.Result()
}

type taskOptions struct {
	name string
}

type TaskOption func(*taskOptions)

// WithName sets the task's diagnostic name. Defaults to "Task-<n>".
func WithName(name string) TaskOption {
	return func(o *taskOptions) {
		o.name = name
	}
}
