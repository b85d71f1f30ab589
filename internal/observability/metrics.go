package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the clockd timing core.

var (
	// TimerRegistrations counts set_timer/set_alert calls, labeled by
	// clock kind (sim|live) and outcome (ok|promoted|rejected).
	TimerRegistrations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clockd_timer_registrations_total",
			Help: "Total number of set_timer/set_alert calls",
		},
		[]string{"clock", "outcome"},
	)

	TimerCancellations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clockd_timer_cancellations_total",
			Help: "Total number of cancel_timer/cancel_timers calls",
		},
		[]string{"clock"},
	)

	TimerCount = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clockd_timer_count",
			Help: "Number of timers currently registered on a clock",
		},
		[]string{"clock"},
	)

	EventsDispatchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clockd_events_delivered_total",
			Help: "Total number of TimeEvents dispatched to a resolved callback",
		},
		[]string{"clock"},
	)

	UnhandledEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clockd_unhandled_events_total",
			Help: "Total number of TimeEvents that could not be resolved to a callback",
		},
		[]string{"clock"},
	)

	DispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "clockd_dispatch_latency_seconds",
			Help:    "Time from a timer's due instant to callback invocation",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 20), // 10μs to ~5.2s
		},
		[]string{"clock"},
	)

	QueueDepth = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "clockd_queue_depth",
			Help: "Number of pending TimeEvents waiting to be drained from the live queue",
		},
		[]string{"clock"},
	)

	AdvanceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clockd_advance_time_duration_seconds",
			Help:    "Wall-clock time taken to service an advance_time/advance_on_heap call",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20),
		},
	)

	ManifestLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "clockd_manifest_load_duration_seconds",
			Help:    "Time taken to parse and install a startup timer manifest",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16),
		},
	)

	ManifestLoadTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clockd_manifest_load_total",
			Help: "Total number of manifest load attempts",
		},
		[]string{"status"}, // success|error
	)
)
