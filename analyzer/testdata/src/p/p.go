package p

import (
	"context"
	"time"

	"aio"
)

func blockingSleep(ctx context.Context) error {
	if err := aio.Sleep(ctx, time.Second); err != nil {
		return err
	}

	time.Sleep(time.Second) // want "time.Sleep blocks the whole event loop, use aio.Sleep in task computations"

	return nil
}

func bareGoroutine(ctx context.Context, f aio.Awaitable) error {
	go func() { // want "goroutines escape the cooperative scheduler, use aio.NewTask in task computations"
		println("background")
	}()

	_, err := aio.Await(ctx, f)
	return err
}

func nestedComputation(ctx context.Context) func(context.Context) error {
	// The enclosing function never suspends, only the literal does.
	time.Sleep(time.Millisecond)

	return func(ctx context.Context) error {
		if err := aio.Sleep(ctx, time.Second); err != nil {
			return err
		}
		time.Sleep(time.Second) // want "time.Sleep blocks the whole event loop, use aio.Sleep in task computations"
		return nil
	}
}

func plainFunction() {
	// Not a task computation, blocking here is fine.
	time.Sleep(time.Second)

	go func() {
		println("background")
	}()
}

func waitAndFan(ctx context.Context, futures []aio.Awaitable) error {
	_, _, err := aio.Wait(ctx, futures)
	if err != nil {
		return err
	}

	go println("fan out") // want "goroutines escape the cooperative scheduler, use aio.NewTask in task computations"

	return nil
}
