package aio

import (
	"errors"

	"github.com/aio-go/aio/eventloop"
)

// Canceled is returned when accessing the result of a canceled future, and is
// delivered as the resumption signal into a task computation when a
// cancellation request takes effect.
var Canceled = errors.New("future canceled")

// ErrTimeout is the outcome of an AsCompleted slot whose deadline elapsed
// before a member completed. Distinct from cancellation.
var ErrTimeout = errors.New("deadline elapsed before completion")

// ErrInvalidState is returned for accesses and transitions that are illegal
// in the future's current state: setting a result on a non-pending future, or
// reading the result of a pending one.
var ErrInvalidState = errors.New("invalid future state")

// ErrExhausted is returned by Completions.Next once every slot has been
// consumed.
var ErrExhausted = errors.New("no completions remaining")

// PanicError carries a panic recovered from a task computation or a loop
// callback, with the stacktrace at the recovery point.
type PanicError = eventloop.PanicError
