package api

import (
	"encoding/json"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/Bucanero06/nautilus-clock/internal/observability"
	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// ClockHandlers exposes a pkg/clock.Clock over HTTP/JSON, one handler
// per embedded-scripting-binding operation.
type ClockHandlers struct {
	clock     clock.Clock
	clockKind string
	tracer    trace.Tracer
}

// NewClockHandlers creates clock API handlers. clockKind is "sim" or
// "live", used purely as a metric/span label.
func NewClockHandlers(c clock.Clock, clockKind string, tracer trace.Tracer) *ClockHandlers {
	return &ClockHandlers{clock: c, clockKind: clockKind, tracer: tracer}
}

func (h *ClockHandlers) startSpan(r *http.Request, name string) (*http.Request, trace.Span) {
	if h.tracer == nil {
		return r, trace.SpanFromContext(r.Context())
	}
	ctx, span := h.tracer.Start(r.Context(), name)
	return r.WithContext(ctx), span
}

// SetTimeAlert handles POST /api/timers/alert, mirroring set_time_alert_ns.
func (h *ClockHandlers) SetTimeAlert(w http.ResponseWriter, r *http.Request) {
	r, span := h.startSpan(r, "SetTimeAlert")
	defer span.End()

	var req struct {
		Name      string `json:"name"`
		AlertNs   uint64 `json:"alert_ns"`
		AllowPast bool   `json:"allow_past"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "missing required field: name")
		return
	}

	_, timerSpan := observability.StartTimerSpan(r.Context(), h.clockKind, req.Name, "set_alert")
	err := h.clock.SetAlert(clock.TimerName(req.Name), clock.Instant(req.AlertNs), nil, req.AllowPast)
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	observability.RecordTimerOutcome(timerSpan, outcome, err)
	observability.RecordTimerRegistration(r.Context(), h.clockKind, outcome)
	timerSpan.End()

	if err != nil {
		respondClockError(w, err)
		return
	}

	span.SetAttributes(attribute.String("clockd.timer", req.Name))
	respondJSON(w, http.StatusCreated, map[string]any{"name": req.Name})
}

// SetTimer handles POST /api/timers, mirroring set_timer_ns.
func (h *ClockHandlers) SetTimer(w http.ResponseWriter, r *http.Request) {
	r, span := h.startSpan(r, "SetTimer")
	defer span.End()

	var req struct {
		Name       string  `json:"name"`
		IntervalNs uint64  `json:"interval_ns"`
		StartNs    uint64  `json:"start_ns"`
		StopNs     *uint64 `json:"stop_ns,omitempty"`
		AllowPast  bool    `json:"allow_past"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "missing required field: name")
		return
	}

	var stop *clock.Instant
	if req.StopNs != nil {
		s := clock.Instant(*req.StopNs)
		stop = &s
	}

	_, timerSpan := observability.StartTimerSpan(r.Context(), h.clockKind, req.Name, "set_timer")
	err := h.clock.SetTimer(clock.TimerName(req.Name), clock.Interval(req.IntervalNs), clock.Instant(req.StartNs), stop, nil, req.AllowPast)
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	observability.RecordTimerOutcome(timerSpan, outcome, err)
	observability.RecordTimerRegistration(r.Context(), h.clockKind, outcome)
	timerSpan.End()

	if err != nil {
		respondClockError(w, err)
		return
	}

	span.SetAttributes(attribute.String("clockd.timer", req.Name))
	respondJSON(w, http.StatusCreated, map[string]any{"name": req.Name})
}

// CancelTimer handles DELETE /api/timers/{name}, mirroring cancel_timer.
func (h *ClockHandlers) CancelTimer(w http.ResponseWriter, r *http.Request) {
	_, span := h.startSpan(r, "CancelTimer")
	defer span.End()

	name := r.PathValue("name")
	if name == "" {
		respondError(w, http.StatusBadRequest, "missing timer name")
		return
	}

	h.clock.Cancel(clock.TimerName(name))
	observability.RecordTimerCancellation(r.Context(), h.clockKind)
	span.SetAttributes(attribute.String("clockd.timer", name))
	respondJSON(w, http.StatusOK, map[string]string{"name": name, "status": "cancelled"})
}

// CancelTimers handles DELETE /api/timers, mirroring cancel_timers.
func (h *ClockHandlers) CancelTimers(w http.ResponseWriter, r *http.Request) {
	_, span := h.startSpan(r, "CancelTimers")
	defer span.End()

	count := h.clock.TimerCount()
	h.clock.CancelAll()
	observability.RecordTimerCancellation(r.Context(), h.clockKind)
	span.SetAttributes(attribute.Int("clockd.cancelled_count", count))
	respondJSON(w, http.StatusOK, map[string]int{"cancelled": count})
}

// NextTime handles GET /api/timers/{name}/next, mirroring next_time_ns.
func (h *ClockHandlers) NextTime(w http.ResponseWriter, r *http.Request) {
	_, span := h.startSpan(r, "NextTime")
	defer span.End()

	name := r.PathValue("name")
	next, ok := h.clock.NextFire(clock.TimerName(name))
	if !ok {
		respondError(w, http.StatusNotFound, "timer not found or not active: "+name)
		return
	}
	span.SetAttributes(attribute.String("clockd.timer", name))
	respondJSON(w, http.StatusOK, map[string]uint64{"next_fire_ns": uint64(next)})
}

// TimerNames handles GET /api/timers/names, mirroring timer_names.
func (h *ClockHandlers) TimerNames(w http.ResponseWriter, r *http.Request) {
	names := h.clock.TimerNames()
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = string(n)
	}
	respondJSON(w, http.StatusOK, map[string][]string{"names": out})
}

// TimerCount handles GET /api/timers/count, mirroring timer_count.
func (h *ClockHandlers) TimerCount(w http.ResponseWriter, r *http.Request) {
	count := h.clock.TimerCount()
	observability.TimerCount.WithLabelValues(h.clockKind).Set(float64(count))
	respondJSON(w, http.StatusOK, map[string]int{"count": count})
}

// Timestamp handles GET /api/time?unit=ns|us|ms, mirroring
// timestamp[_ms|_us|_ns].
func (h *ClockHandlers) Timestamp(w http.ResponseWriter, r *http.Request) {
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = "ns"
	}

	var value int64
	switch unit {
	case "ns":
		value = int64(h.clock.NowNs())
	case "us":
		value = h.clock.NowUs()
	case "ms":
		value = h.clock.NowMs()
	default:
		respondError(w, http.StatusBadRequest, "unknown unit: "+unit)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"unit": unit, "value": value})
}

// UtcNow handles GET /api/time/utc, mirroring utc_now(): returns both an
// RFC3339 string and a timestamppb.Timestamp-shaped epoch value.
func (h *ClockHandlers) UtcNow(w http.ResponseWriter, r *http.Request) {
	now := h.clock.UtcNow()
	ts := timestamppb.New(now)
	respondJSON(w, http.StatusOK, map[string]any{
		"rfc3339":  now.Format(time.RFC3339Nano),
		"seconds":  ts.GetSeconds(),
		"nanos":    ts.GetNanos(),
		"epoch_ns": now.UnixNano(),
	})
}

// RegisterDefaultHandler handles POST /api/timers/default-handler.
// There is no callback payload over HTTP — a registered default
// routes matching events to the server's own no-op/log sink, matching
// host-exception-free operation for callers that only want delivery
// acknowledged via polling NextTime/TimerNames.
func (h *ClockHandlers) RegisterDefaultHandler(w http.ResponseWriter, r *http.Request) {
	h.clock.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {}))
	respondJSON(w, http.StatusOK, map[string]string{"status": "default handler registered"})
}
