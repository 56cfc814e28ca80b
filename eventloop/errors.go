package eventloop

import (
	"errors"
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ErrLoopStarved is returned when the loop runs out of scheduled work before
// its run condition is satisfied.
var ErrLoopStarved = errors.New("event loop has no scheduled work left")

// ErrAlreadyRunning is returned by nested Run calls.
var ErrAlreadyRunning = errors.New("event loop is already running")

// PanicError captures a panic recovered from a callback or a task
// computation, together with the stacktrace at the recovery point.
type PanicError struct {
	message    string
	stacktrace string
}

func (pe *PanicError) Error() string {
	return pe.message
}

func (pe *PanicError) Stacktrace() string {
	return pe.stacktrace
}

// NewPanicError wraps a value recovered from a panic.
func NewPanicError(v any) *PanicError {
	return &PanicError{
		message:    fmt.Sprintf("panic: %v", v),
		stacktrace: string(goerrors.Wrap(v, 2).Stack()),
	}
}
