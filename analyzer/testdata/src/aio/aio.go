// Stand-in for the real module. The analyzer only matches on the package
// name and selector, so stub signatures are enough for the fixtures to
// type-check.
package aio

import (
	"context"
	"time"
)

type Awaitable interface {
	Done() bool
}

func Sleep(ctx context.Context, d time.Duration) error {
	return nil
}

func SleepValue(ctx context.Context, d time.Duration, v any) (any, error) {
	return v, nil
}

func Await(ctx context.Context, f Awaitable) (any, error) {
	return nil, nil
}

func Wait(ctx context.Context, futures []Awaitable) ([]Awaitable, []Awaitable, error) {
	return nil, nil, nil
}

func AsCompleted(ctx context.Context, futures []Awaitable) any {
	return nil
}
