package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/neomorfeo/keyledger/internal/domain"
)

const tracerName = "github.com/neomorfeo/keyledger/internal/adapter/otel"

// TracingBackend wraps a domain.Backend with OpenTelemetry tracing.
// Each method creates a span with content attributes and records errors.
type TracingBackend struct {
	next   domain.Backend
	tracer trace.Tracer
}

// TracingAppendBackend is a TracingBackend whose inner backend also appends
// atomically.
type TracingAppendBackend struct {
	*TracingBackend
	appender domain.Appender
}

// Compile-time checks.
var (
	_ domain.Backend  = (*TracingBackend)(nil)
	_ domain.Backend  = (*TracingAppendBackend)(nil)
	_ domain.Appender = (*TracingAppendBackend)(nil)
)

// NewTracingBackend creates a tracing decorator around the given backend.
// The result implements domain.Appender only when next does.
func NewTracingBackend(next domain.Backend) domain.Backend {
	tb := &TracingBackend{
		next:   next,
		tracer: otel.Tracer(tracerName),
	}
	if a, ok := next.(domain.Appender); ok {
		return &TracingAppendBackend{TracingBackend: tb, appender: a}
	}
	return tb
}

func (b *TracingBackend) Load(ctx context.Context) (domain.Snapshot, error) {
	ctx, span := b.tracer.Start(ctx, "Backend.Load")
	defer span.End()

	snap, err := b.next.Load(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return snap, err
	}
	span.SetAttributes(
		attribute.Int("content.bytes", len(snap.Content)),
		attribute.Bool("content.versioned", snap.Version != ""),
	)
	return snap, nil
}

func (b *TracingBackend) Save(ctx context.Context, content, ifVersion string) (domain.Snapshot, error) {
	ctx, span := b.tracer.Start(ctx, "Backend.Save",
		trace.WithAttributes(
			attribute.Int("content.bytes", len(content)),
			attribute.Bool("save.conditional", ifVersion != ""),
		),
	)
	defer span.End()

	snap, err := b.next.Save(ctx, content, ifVersion)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return snap, err
}

func (b *TracingAppendBackend) Append(ctx context.Context, line string) error {
	ctx, span := b.tracer.Start(ctx, "Backend.Append",
		trace.WithAttributes(attribute.Int("line.bytes", len(line))),
	)
	defer span.End()

	err := b.appender.Append(ctx, line)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
