package eventloop

import (
	"log/slog"

	"github.com/benbjohnson/clock"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type LoopOption func(*Loop)

// WithClock sets the clock the loop reads time from. Pass a mock clock for
// deterministic timer tests.
func WithClock(c clock.Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) LoopOption {
	return func(l *Loop) {
		l.tracer = tracer
	}
}

// WithErrorHandler sets the hook invoked for errors the loop cannot deliver
// to any caller: callback panics and task errors never retrieved before
// Close.
func WithErrorHandler(handler func(error)) LoopOption {
	return func(l *Loop) {
		l.errorHandler = handler
	}
}

func noopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer("github.com/aio-go/aio")
}
