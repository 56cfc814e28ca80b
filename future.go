package aio

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/aio-go/aio/eventloop"
)

type futureState int

const (
	statePending futureState = iota
	stateCancelled
	stateFinished
)

// Awaitable is the untyped view of a Future or Task, used where groups of
// differently-typed members are waited on together.
type Awaitable interface {
	// Done reports whether the future is terminal (finished or canceled).
	Done() bool

	// Cancelled reports whether the future was canceled.
	Cancelled() bool

	// Err returns the stored error, Canceled for a canceled future, or
	// ErrInvalidState while pending.
	Err() error

	// Cancel transitions a pending future to canceled. It reports whether it
	// was effective.
	Cancel() bool

	AddDoneCallback(fn func(Awaitable))
	RemoveDoneCallback(fn func(Awaitable)) int
}

// Resolvable is an Awaitable with a typed result. Both *Future[T] and
// *Task[T] satisfy it.
type Resolvable[T any] interface {
	Awaitable
	Result() (T, error)
}

// Future is a one-shot result box. It starts out pending and transitions
// exactly once to finished or canceled; terminal states are immutable.
//
// A future belongs to a single loop. It is not safe for concurrent use from
// multiple goroutines; the cooperative scheduling model guarantees only one
// step executes at a time.
type Future[T any] struct {
	loop  *eventloop.Loop
	state futureState

	value T
	err   error

	// owner is the Awaitable identity handed to callbacks; a Task points this
	// at itself so waiters observe the task, not the embedded future.
	owner Awaitable

	callbacks []func(Awaitable)
	retrieved bool
}

func NewFuture[T any](loop *eventloop.Loop) *Future[T] {
	f := &Future[T]{loop: loop}
	f.owner = f
	return f
}

func (f *Future[T]) Done() bool {
	return f.state != statePending
}

func (f *Future[T]) Cancelled() bool {
	return f.state == stateCancelled
}

// Result returns the stored value or error. While pending it returns
// ErrInvalidState; once canceled it returns Canceled.
func (f *Future[T]) Result() (T, error) {
	var zero T

	switch f.state {
	case statePending:
		return zero, ErrInvalidState
	case stateCancelled:
		return zero, Canceled
	}

	f.retrieved = true

	if f.err != nil {
		return zero, f.err
	}
	return f.value, nil
}

// Err returns the stored error or nil. While pending it returns
// ErrInvalidState; once canceled it returns Canceled.
func (f *Future[T]) Err() error {
	switch f.state {
	case statePending:
		return ErrInvalidState
	case stateCancelled:
		return Canceled
	}

	f.retrieved = true

	return f.err
}

// peekErr is Err without the retrieved mark, for internal threshold checks.
func (f *Future[T]) peekErr() error {
	switch f.state {
	case statePending:
		return ErrInvalidState
	case stateCancelled:
		return Canceled
	}

	return f.err
}

// SetResult stores the value and transitions to finished. Legal only while
// pending.
func (f *Future[T]) SetResult(v T) error {
	if f.state != statePending {
		return fmt.Errorf("setting result: %w", ErrInvalidState)
	}

	f.value = v
	f.state = stateFinished
	f.scheduleCallbacks()

	return nil
}

// SetError stores the error and transitions to finished. Legal only while
// pending.
func (f *Future[T]) SetError(err error) error {
	if f.state != statePending {
		return fmt.Errorf("setting error: %w", ErrInvalidState)
	}

	f.err = err
	f.state = stateFinished
	f.scheduleCallbacks()

	return nil
}

// Cancel transitions a pending future to canceled and schedules its
// callbacks. Canceling a terminal future is a no-op returning false.
func (f *Future[T]) Cancel() bool {
	if f.state != statePending {
		return false
	}

	f.state = stateCancelled
	f.scheduleCallbacks()

	return true
}

// AddDoneCallback registers fn to run when the future becomes terminal.
// Callbacks run in registration order and are always dispatched through the
// loop's ready queue, never invoked inline. If the future is already
// terminal, fn is scheduled immediately.
func (f *Future[T]) AddDoneCallback(fn func(Awaitable)) {
	if f.state != statePending {
		owner := f.owner
		f.loop.CallSoon(func() { fn(owner) })
		return
	}

	f.callbacks = append(f.callbacks, fn)
}

// RemoveDoneCallback removes all pending entries matching fn and returns how
// many were removed. A no-op once callbacks have fired.
func (f *Future[T]) RemoveDoneCallback(fn func(Awaitable)) int {
	ptr := reflect.ValueOf(fn).Pointer()

	kept := f.callbacks[:0]
	removed := 0
	for _, cb := range f.callbacks {
		if reflect.ValueOf(cb).Pointer() == ptr {
			removed++
			continue
		}
		kept = append(kept, cb)
	}
	f.callbacks = kept

	return removed
}

// scheduleCallbacks enqueues every registered callback on the loop, in
// registration order, and clears the list. Never invokes callbacks inline so
// that no waiter is stepped reentrantly from inside a completion.
func (f *Future[T]) scheduleCallbacks() {
	owner := f.owner
	for _, cb := range f.callbacks {
		cb := cb
		f.loop.CallSoon(func() { cb(owner) })
	}
	f.callbacks = nil
}

func (f *Future[T]) String() string {
	return "Future" + f.describe()
}

func (f *Future[T]) describe() string {
	switch f.state {
	case stateCancelled:
		return "<CANCELLED>"
	case stateFinished:
		if f.err != nil {
			return fmt.Sprintf("<error=%v>", f.err)
		}
		return fmt.Sprintf("<result=%v>", f.value)
	default:
		return fmt.Sprintf("<PENDING, %s>", f.callbackNames())
	}
}

func (f *Future[T]) callbackNames() string {
	names := make([]string, len(f.callbacks))
	for i, cb := range f.callbacks {
		names[i] = funcName(cb)
	}
	return "[" + strings.Join(names, ", ") + "]"
}

func funcName(fn func(Awaitable)) string {
	name := runtime.FuncForPC(reflect.ValueOf(fn).Pointer()).Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
