package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OpenTelemetry metrics for clockd, platform-agnostic: works with
// Prometheus, SigNoz, Grafana, etc via whatever MeterProvider is
// registered globally (InitMetrics below creates the instruments; this
// package registers no MeterProvider itself).

var (
	meter = otel.Meter("clockd")

	metricsOnce sync.Once

	timerRegistrations  metric.Int64Counter
	timerCancellations  metric.Int64Counter
	timersActive        metric.Int64UpDownCounter
	eventsDispatched    metric.Int64Counter
	unhandledEvents     metric.Int64Counter
	dispatchLatency     metric.Float64Histogram
	queueDepth          metric.Int64Histogram
	advanceDuration     metric.Float64Histogram
	manifestLoadTotal   metric.Int64Counter
)

// InitMetrics initializes all OpenTelemetry metric instruments. Call
// this once during application startup.
func InitMetrics() error {
	var err error
	metricsOnce.Do(func() {
		timerRegistrations, err = meter.Int64Counter(
			"clockd.timer_registrations",
			metric.WithDescription("Total number of set_timer/set_alert calls"),
		)
		if err != nil {
			return
		}

		timerCancellations, err = meter.Int64Counter(
			"clockd.timer_cancellations",
			metric.WithDescription("Total number of cancel_timer/cancel_timers calls"),
		)
		if err != nil {
			return
		}

		timersActive, err = meter.Int64UpDownCounter(
			"clockd.timers_active",
			metric.WithDescription("Number of timers currently registered on a clock"),
		)
		if err != nil {
			return
		}

		eventsDispatched, err = meter.Int64Counter(
			"clockd.events_dispatched",
			metric.WithDescription("Total number of TimeEvents dispatched to a resolved callback"),
		)
		if err != nil {
			return
		}

		unhandledEvents, err = meter.Int64Counter(
			"clockd.unhandled_events",
			metric.WithDescription("Total number of TimeEvents that could not be resolved to a callback"),
		)
		if err != nil {
			return
		}

		dispatchLatency, err = meter.Float64Histogram(
			"clockd.dispatch_latency",
			metric.WithDescription("Time from a timer's due instant to callback invocation"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return
		}

		queueDepth, err = meter.Int64Histogram(
			"clockd.queue_depth",
			metric.WithDescription("Observed depth of the live event queue at drain time"),
		)
		if err != nil {
			return
		}

		advanceDuration, err = meter.Float64Histogram(
			"clockd.advance_time_duration",
			metric.WithDescription("Wall-clock time taken to service an advance_time/advance_on_heap call"),
			metric.WithUnit("s"),
		)
		if err != nil {
			return
		}

		manifestLoadTotal, err = meter.Int64Counter(
			"clockd.manifest_load_total",
			metric.WithDescription("Total number of manifest load attempts"),
		)
	})
	return err
}

// RecordTimerRegistration records a set_timer/set_alert call.
func RecordTimerRegistration(ctx context.Context, clockKind, outcome string) {
	attrs := metric.WithAttributes(
		attribute.String("clock", clockKind),
		attribute.String("outcome", outcome), // ok|promoted|rejected
	)
	timerRegistrations.Add(ctx, 1, attrs)
	TimerRegistrations.WithLabelValues(clockKind, outcome).Inc()
}

// RecordTimerCancellation records a cancel_timer/cancel_timers call.
func RecordTimerCancellation(ctx context.Context, clockKind string) {
	attrs := metric.WithAttributes(attribute.String("clock", clockKind))
	timerCancellations.Add(ctx, 1, attrs)
	TimerCancellations.WithLabelValues(clockKind).Inc()
}

// UpdateTimersActive adjusts the active-timer gauge by delta (positive
// on registration, negative on cancellation or expiry).
func UpdateTimersActive(ctx context.Context, clockKind string, delta int64) {
	timersActive.Add(ctx, delta, metric.WithAttributes(attribute.String("clock", clockKind)))
}

// RecordDispatch records a successfully dispatched TimeEvent and its
// latency from due instant to callback invocation.
func RecordDispatch(ctx context.Context, clockKind string, latencySeconds float64) {
	attrs := metric.WithAttributes(attribute.String("clock", clockKind))
	eventsDispatched.Add(ctx, 1, attrs)
	dispatchLatency.Record(ctx, latencySeconds, attrs)
	EventsDispatchedTotal.WithLabelValues(clockKind).Inc()
	DispatchLatency.WithLabelValues(clockKind).Observe(latencySeconds)
}

// RecordUnhandledEvent records a TimeEvent dropped for lack of a
// resolvable callback.
func RecordUnhandledEvent(ctx context.Context, clockKind string) {
	unhandledEvents.Add(ctx, 1, metric.WithAttributes(attribute.String("clock", clockKind)))
	UnhandledEventsTotal.WithLabelValues(clockKind).Inc()
}

// RecordQueueDepth records the observed depth of the live event queue.
func RecordQueueDepth(ctx context.Context, clockKind string, depth int) {
	queueDepth.Record(ctx, int64(depth), metric.WithAttributes(attribute.String("clock", clockKind)))
	QueueDepth.WithLabelValues(clockKind).Set(float64(depth))
}

// RecordAdvance records the wall-clock cost of an advance_time call.
func RecordAdvance(ctx context.Context, durationSeconds float64) {
	advanceDuration.Record(ctx, durationSeconds)
	AdvanceDuration.Observe(durationSeconds)
}

// RecordManifestLoad records a manifest load attempt.
func RecordManifestLoad(ctx context.Context, status string, durationSeconds float64) {
	manifestLoadTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", status)))
	ManifestLoadTotal.WithLabelValues(status).Inc()
	ManifestLoadDuration.Observe(durationSeconds)
}
