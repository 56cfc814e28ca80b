package aio

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aio-go/aio/internal/log"
)

// Sleep suspends the calling computation for at least delay. It returns
// Canceled if the task is canceled while sleeping.
func Sleep(ctx context.Context, delay time.Duration) error {
	_, err := SleepValue(ctx, delay, struct{}{})
	return err
}

// SleepValue suspends the calling computation for at least delay, then
// returns value. Canceling the task while it sleeps also cancels the pending
// timer, so the delayed callback never touches the canceled future.
func SleepValue[T any](ctx context.Context, delay time.Duration, value T) (T, error) {
	st := stateFromContext(ctx)
	loop := st.loop

	ctx, span := loop.Tracer().Start(ctx, "sleep",
		trace.WithAttributes(attribute.Int64(log.DelayKey, int64(delay/time.Millisecond))))
	defer span.End()

	f := NewFuture[T](loop)

	timer := loop.CallLater(delay, func() {
		if !f.Done() {
			_ = f.SetResult(value)
		}
	})

	f.AddDoneCallback(func(a Awaitable) {
		if a.Cancelled() {
			timer.Cancel()
		}
	})

	return Await[T](ctx, f)
}
