package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/aio-go/aio"
	"github.com/aio-go/aio/eventloop"
)

type config struct {
	Tasks    int           `env:"STRESS_TASKS" envDefault:"1000"`
	MaxDelay time.Duration `env:"STRESS_MAX_DELAY" envDefault:"500ms"`
	Timeout  time.Duration `env:"STRESS_TIMEOUT" envDefault:"0"`
}

func main() {
	// Optional overrides from a local .env file
	_ = godotenv.Load()

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	fmt.Printf("spawning %d tasks, delays up to %v\n", cfg.Tasks, cfg.MaxDelay)

	l := eventloop.New()

	members := make([]aio.Awaitable, cfg.Tasks)
	for i := range members {
		delay := time.Duration(rand.Int63n(int64(cfg.MaxDelay)))
		members[i] = aio.NewTask(l, func(ctx context.Context) (int, error) {
			return aio.SleepValue(ctx, delay, i)
		})
	}

	main := aio.NewTask(l, func(ctx context.Context) (struct{}, error) {
		opts := []aio.WaitOption{}
		if cfg.Timeout > 0 {
			opts = append(opts, aio.WithTimeout(cfg.Timeout))
		}

		done, pending, err := aio.Wait(ctx, members, opts...)
		if err != nil {
			return struct{}{}, err
		}

		fmt.Println("done:", len(done), "pending:", len(pending))

		for _, p := range pending {
			p.Cancel()
		}

		return struct{}{}, nil
	}, aio.WithName("main"))

	start := time.Now()
	if _, err := aio.RunUntilComplete(l, main); err != nil {
		panic(err)
	}

	// Drain cancellations of any leftover members
	if err := l.Run(); err != nil {
		panic(err)
	}

	fmt.Println("took", time.Since(start))

	l.Close()
}
