package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced unit of work such as a connect or a counter action.
type Operation struct {
	Name      string
	StartTime time.Time

	span trace.Span
}

// StartOperation starts a span named spanName and returns the derived context.
func StartOperation(ctx context.Context, spanName, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(attrs...))
	return ctx, &Operation{Name: name, StartTime: time.Now(), span: span}
}

// SetAttributes adds attributes to the operation span.
func (op *Operation) SetAttributes(attrs ...attribute.KeyValue) {
	op.span.SetAttributes(attrs...)
}

// End finishes the span, marking it failed when err is non-nil, and
// returns the elapsed time.
func (op *Operation) End(status string, err error) time.Duration {
	duration := time.Since(op.StartTime)
	if err != nil {
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	op.span.End()
	return duration
}
