package main

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/aio-go/aio"
	"github.com/aio-go/aio/eventloop"
)

func main() {
	r := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String("aio sample"),
		semconv.ServiceVersionKey.String("v0.1.0"),
		attribute.String("environment", "sample"),
	)

	exp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		panic(err)
	}

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exp),
		trace.WithResource(r),
	)
	defer tp.Shutdown(context.Background())

	l := eventloop.New(eventloop.WithTracer(tp.Tracer("aio-sample")))

	task := aio.NewTask(l, func(ctx context.Context) (string, error) {
		if err := aio.Sleep(ctx, 100*time.Millisecond); err != nil {
			return "", err
		}

		inner := aio.NewTask(l, func(ctx context.Context) (string, error) {
			return aio.SleepValue(ctx, 50*time.Millisecond, "traced")
		}, aio.WithName("inner"))

		return aio.Await(ctx, inner)
	}, aio.WithName("outer"))

	v, err := aio.RunUntilComplete(l, task)
	if err != nil {
		panic(err)
	}

	fmt.Println("result:", v)

	l.Close()
}
