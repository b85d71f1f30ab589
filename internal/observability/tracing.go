package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracer is the OpenTelemetry tracer for the clockd timing core.
var Tracer = otel.Tracer("clockd")

// StartAdvanceSpan traces an advance_time/advance_on_heap call.
func StartAdvanceSpan(ctx context.Context, clockKind string, to uint64) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "clock.advance_time",
		trace.WithAttributes(
			attribute.String("clockd.clock", clockKind),
			attribute.Int64("clockd.to", int64(to)),
		),
	)
}

// RecordAdvanceResult finalizes an advance_time span with the number
// of events produced.
func RecordAdvanceResult(span trace.Span, eventCount int, err error) {
	span.SetAttributes(attribute.Int("clockd.events_produced", eventCount))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return
	}
	span.SetStatus(codes.Ok, "advance completed")
}

// StartTimerSpan traces a set_timer/set_alert registration.
func StartTimerSpan(ctx context.Context, clockKind, timerName, op string) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "clock."+op,
		trace.WithAttributes(
			attribute.String("clockd.clock", clockKind),
			attribute.String("clockd.timer", timerName),
		),
	)
}

// RecordTimerOutcome finalizes a set_timer/set_alert span, noting
// whether the requested instant was promoted past a fail-fast rejection.
func RecordTimerOutcome(span trace.Span, outcome string, err error) {
	span.SetAttributes(attribute.String("clockd.outcome", outcome))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return
	}
	span.SetStatus(codes.Ok, outcome)
}

// StartDispatchSpan traces delivery of a single TimeEvent to its
// resolved callback.
func StartDispatchSpan(ctx context.Context, clockKind, timerName string, tsEvent uint64) (context.Context, trace.Span) {
	return Tracer.Start(ctx, "clock.dispatch",
		trace.WithAttributes(
			attribute.String("clockd.clock", clockKind),
			attribute.String("clockd.timer", timerName),
			attribute.Int64("clockd.ts_event", int64(tsEvent)),
		),
	)
}

// RecordDispatchResult finalizes a dispatch span and records its
// latency against the Prometheus/OTel histograms.
func RecordDispatchResult(ctx context.Context, span trace.Span, clockKind string, emittedAt time.Time, resolved bool) {
	latency := time.Since(emittedAt).Seconds()
	span.SetAttributes(
		attribute.Bool("clockd.resolved", resolved),
		attribute.Float64("clockd.latency_seconds", latency),
	)
	if !resolved {
		span.SetStatus(codes.Error, "no callback resolved for event")
		RecordUnhandledEvent(ctx, clockKind)
		return
	}
	span.SetStatus(codes.Ok, "dispatched")
	RecordDispatch(ctx, clockKind, latency)
}

// RecordInvariantViolation records a fatal clock invariant failure as
// a span event, for the rare case a recovered panic needs a trace
// marker before the process (sim) or goroutine (live) unwinds.
func RecordInvariantViolation(ctx context.Context, clockKind, reason string) {
	_, span := Tracer.Start(ctx, "clock.invariant_violation",
		trace.WithAttributes(
			attribute.String("clockd.clock", clockKind),
			attribute.String("clockd.reason", reason),
		),
	)
	defer span.End()
	span.SetStatus(codes.Error, fmt.Sprintf("invariant violation: %s", reason))
}
