package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aio-go/aio"
	"github.com/aio-go/aio/eventloop"
)

func main() {
	l := eventloop.New()

	long := aio.NewTask(l, func(ctx context.Context) (string, error) {
		v, err := aio.SleepValue(ctx, 10*time.Second, "finished")
		if errors.Is(err, aio.Canceled) {
			// Run cleanup before handing the cancellation back
			fmt.Println("cleaning up")
			if err := aio.Sleep(ctx, 50*time.Millisecond); err != nil {
				return "", err
			}
			return "", aio.Canceled
		}
		return v, err
	}, aio.WithName("long"))

	l.CallLater(200*time.Millisecond, func() {
		fmt.Println("before cancel:", long)
		long.Cancel()
		fmt.Println("after cancel: ", long)
	})

	_, err := aio.RunUntilComplete(l, long)
	fmt.Println("result:", err)
	fmt.Println("final:  ", long)

	l.Close()
}
