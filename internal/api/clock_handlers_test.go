package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bucanero06/nautilus-clock/internal/api"
	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

func newTestHandlers() *api.ClockHandlers {
	c := clock.NewSimClock(1000)
	// The HTTP surface has no way to carry a caller-supplied callback, so
	// every timer/alert it creates relies on a default handler existing
	// first — the same precondition a real client satisfies by calling
	// POST /api/timers/default-handler before scheduling anything.
	c.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {}))
	return api.NewClockHandlers(c, "sim", nil)
}

func doJSON(t *testing.T, h http.HandlerFunc, method, target, body string, pathValues map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range pathValues {
		req.SetPathValue(k, v)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestSetTimer_CreatesTimer(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"heartbeat","interval_ns":1000}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	recCount := doJSON(t, h.TimerCount, http.MethodGet, "/api/timers/count", "", nil)
	var body map[string]int
	require.NoError(t, json.Unmarshal(recCount.Body.Bytes(), &body))
	assert.Equal(t, 1, body["count"])
}

func TestSetTimer_MissingNameIsBadRequest(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"interval_ns":1000}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetTimer_ZeroIntervalIsBadRequest(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"x","interval_ns":0}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetTimeAlert_PastRejectedWithoutAllowPast(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.SetTimeAlert, http.MethodPost, "/api/timers/alert", `{"name":"a","alert_ns":1}`, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSetTimeAlert_PastAllowedWithAllowPast(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.SetTimeAlert, http.MethodPost, "/api/timers/alert", `{"name":"a","alert_ns":1,"allow_past":true}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCancelTimer(t *testing.T) {
	h := newTestHandlers()
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"heartbeat","interval_ns":1000}`, nil)

	rec := doJSON(t, h.CancelTimer, http.MethodDelete, "/api/timers/heartbeat", "", map[string]string{"name": "heartbeat"})
	assert.Equal(t, http.StatusOK, rec.Code)

	recCount := doJSON(t, h.TimerCount, http.MethodGet, "/api/timers/count", "", nil)
	var body map[string]int
	require.NoError(t, json.Unmarshal(recCount.Body.Bytes(), &body))
	assert.Equal(t, 0, body["count"])
}

func TestCancelTimers(t *testing.T) {
	h := newTestHandlers()
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"a","interval_ns":1000}`, nil)
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"b","interval_ns":1000}`, nil)

	rec := doJSON(t, h.CancelTimers, http.MethodDelete, "/api/timers", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body["cancelled"])
}

func TestNextTime_UnknownTimerIs404(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.NextTime, http.MethodGet, "/api/timers/ghost/next", "", map[string]string{"name": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNextTime_KnownTimer(t *testing.T) {
	h := newTestHandlers()
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"heartbeat","interval_ns":1000}`, nil)

	rec := doJSON(t, h.NextTime, http.MethodGet, "/api/timers/heartbeat/next", "", map[string]string{"name": "heartbeat"})
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]uint64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, uint64(2000), body["next_fire_ns"])
}

func TestTimerNames(t *testing.T) {
	h := newTestHandlers()
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"b","interval_ns":1000}`, nil)
	doJSON(t, h.SetTimer, http.MethodPost, "/api/timers", `{"name":"a","interval_ns":1000}`, nil)

	rec := doJSON(t, h.TimerNames, http.MethodGet, "/api/timers/names", "", nil)
	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body["names"])
}

func TestTimestamp_DefaultsToNs(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.Timestamp, http.MethodGet, "/api/time", "", nil)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ns", body["unit"])
	assert.EqualValues(t, 1000, body["value"])
}

func TestTimestamp_UnknownUnitIsBadRequest(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.Timestamp, http.MethodGet, "/api/time?unit=fortnights", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUtcNow(t *testing.T) {
	h := newTestHandlers()
	rec := doJSON(t, h.UtcNow, http.MethodGet, "/api/time/utc", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body["rfc3339"])
}
