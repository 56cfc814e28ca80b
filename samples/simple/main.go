package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aio-go/aio"
	"github.com/aio-go/aio/eventloop"
)

func main() {
	l := eventloop.New()

	fast := sleeper(l, "fast", 100*time.Millisecond)
	slow := sleeper(l, "slow", 300*time.Millisecond)

	main := aio.NewTask(l, func(ctx context.Context) (struct{}, error) {
		done, pending, err := aio.Wait(ctx, []aio.Awaitable{fast, slow})
		if err != nil {
			return struct{}{}, err
		}

		fmt.Println("done:", len(done), "pending:", len(pending))

		for _, t := range []*aio.Task[string]{fast, slow} {
			v, err := t.Result()
			if err != nil {
				return struct{}{}, err
			}
			fmt.Println(t.Name(), "->", v)
		}

		return struct{}{}, nil
	}, aio.WithName("main"))

	if _, err := aio.RunUntilComplete(l, main); err != nil {
		panic(err)
	}

	l.Close()
}

func sleeper(l *eventloop.Loop, name string, d time.Duration) *aio.Task[string] {
	return aio.NewTask(l, func(ctx context.Context) (string, error) {
		return aio.SleepValue(ctx, d, "slept "+d.String())
	}, aio.WithName(name))
}
