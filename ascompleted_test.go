package aio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aio-go/aio/eventloop"
)

func Test_AsCompletedYieldsInCompletionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := eventloop.New()

	a := sleeper(l, 100*time.Millisecond, "a")
	b := sleeper(l, 100*time.Millisecond, "b")
	c := sleeper(l, 150*time.Millisecond, "c")

	outer := NewTask(l, func(ctx context.Context) ([]string, error) {
		var values []string

		completions := AsCompleted(ctx, []Awaitable{b, c, a})
		for completions.Remaining() > 0 {
			member, err := completions.Next(ctx)
			if err != nil {
				return nil, err
			}

			v, err := member.(*Task[string]).Result()
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}

		return values, nil
	})

	start := time.Now()
	values, err := RunUntilComplete(l, outer)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.GreaterOrEqual(t, elapsed, 140*time.Millisecond)

	require.Len(t, values, 3)
	require.ElementsMatch(t, []string{"a", "b"}, values[:2])
	require.Equal(t, "c", values[2])

	// A second pass over resolved members takes no time
	again := NewTask(l, func(ctx context.Context) (int, error) {
		yielded := 0

		completions := AsCompleted(ctx, []Awaitable{b, c, a})
		for completions.Remaining() > 0 {
			if _, err := completions.Next(ctx); err != nil {
				return 0, err
			}
			yielded++
		}

		return yielded, nil
	})

	start = time.Now()
	yielded, err := RunUntilComplete(l, again)
	require.NoError(t, err)
	require.Equal(t, 3, yielded)
	require.Less(t, time.Since(start), 10*time.Millisecond)
}

func Test_AsCompletedWithTimeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := eventloop.New()

	a := sleeper(l, 100*time.Millisecond, "a")
	b := sleeper(l, 150*time.Millisecond, "b")

	type outcome struct {
		value string
		err   error
	}

	outer := NewTask(l, func(ctx context.Context) ([]outcome, error) {
		var outcomes []outcome

		completions := AsCompleted(ctx, []Awaitable{a, b}, WithTimeout(120*time.Millisecond))
		for completions.Remaining() > 0 {
			member, err := completions.Next(ctx)
			if err != nil {
				outcomes = append(outcomes, outcome{err: err})
				continue
			}

			v, err := member.(*Task[string]).Result()
			if err != nil {
				return nil, err
			}
			outcomes = append(outcomes, outcome{value: v})
		}

		return outcomes, nil
	})

	start := time.Now()
	outcomes, err := RunUntilComplete(l, outer)
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.GreaterOrEqual(t, elapsed, 110*time.Millisecond)

	require.Len(t, outcomes, 2)
	require.Equal(t, outcome{value: "a"}, outcomes[0])
	require.ErrorIs(t, outcomes[1].err, ErrTimeout)

	// The late member still finishes on its own; it was not canceled.
	require.NoError(t, l.Run())
	v, err := b.Result()
	require.NoError(t, err)
	require.Equal(t, "b", v)
}

func Test_AsCompletedExhausted(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := eventloop.New()

	a := NewFuture[int](l)
	require.NoError(t, a.SetResult(1))

	outer := NewTask(l, func(ctx context.Context) (struct{}, error) {
		completions := AsCompleted(ctx, []Awaitable{a})
		require.Equal(t, 1, completions.Len())
		require.Equal(t, 1, completions.Remaining())

		member, err := completions.Next(ctx)
		require.NoError(t, err)
		require.Same(t, a, member)
		require.Equal(t, 0, completions.Remaining())

		_, err = completions.Next(ctx)
		require.ErrorIs(t, err, ErrExhausted)

		return struct{}{}, nil
	})

	_, err := RunUntilComplete(l, outer)
	require.NoError(t, err)
}

func Test_AsCompletedMixedReadyAndPending(t *testing.T) {
	defer goleak.VerifyNone(t)

	l := eventloop.New()

	ready := NewFuture[int](l)
	require.NoError(t, ready.SetResult(1))
	late := sleeper(l, 20*time.Millisecond, "late")

	outer := NewTask(l, func(ctx context.Context) ([]Awaitable, error) {
		var order []Awaitable

		completions := AsCompleted(ctx, []Awaitable{late, ready})
		for completions.Remaining() > 0 {
			member, err := completions.Next(ctx)
			if err != nil {
				return nil, err
			}
			order = append(order, member)
		}

		return order, nil
	})

	order, err := RunUntilComplete(l, outer)
	require.NoError(t, err)

	// The already-resolved member comes out first
	require.Equal(t, []Awaitable{ready, late}, order)
}
