package clock_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

func TestCallbackRegistry_SpecificBeatsDefault(t *testing.T) {
	r := clock.NewCallbackRegistry()
	var specificCalled, defaultCalled bool

	r.SetDefault(clock.CallbackFunc(func(clock.TimeEvent) { defaultCalled = true }))
	r.Set("named", clock.CallbackFunc(func(clock.TimeEvent) { specificCalled = true }))

	cb, ok := r.Resolve("named")
	assert.True(t, ok)
	cb.Call(clock.TimeEvent{Name: "named"})
	assert.True(t, specificCalled)
	assert.False(t, defaultCalled)
}

func TestCallbackRegistry_FallsBackToDefault(t *testing.T) {
	r := clock.NewCallbackRegistry()
	var called bool
	r.SetDefault(clock.CallbackFunc(func(clock.TimeEvent) { called = true }))

	cb, ok := r.Resolve("anything")
	assert.True(t, ok)
	cb.Call(clock.TimeEvent{})
	assert.True(t, called)
}

func TestCallbackRegistry_UnresolvedWithoutDefault(t *testing.T) {
	r := clock.NewCallbackRegistry()
	_, ok := r.Resolve("nothing")
	assert.False(t, ok)
	assert.False(t, r.HasHandler("nothing"))
}

func TestCallbackRegistry_RemoveFallsBackToDefault(t *testing.T) {
	r := clock.NewCallbackRegistry()
	r.SetDefault(clock.CallbackFunc(func(clock.TimeEvent) {}))
	r.Set("named", clock.CallbackFunc(func(clock.TimeEvent) {}))

	r.Remove("named")
	assert.True(t, r.HasHandler("named")) // default still applies
}

func TestCallbackRegistry_HostCallback(t *testing.T) {
	var gotRef any
	var gotEvent clock.TimeEvent
	hc := clock.HostCallback{
		Ref: "opaque-handle",
		Invoke: func(ref any, e clock.TimeEvent) {
			gotRef = ref
			gotEvent = e
		},
	}
	hc.Call(clock.TimeEvent{Name: "x"})
	assert.Equal(t, "opaque-handle", gotRef)
	assert.Equal(t, clock.TimerName("x"), gotEvent.Name)
}

func TestCallbackRegistry_Reset(t *testing.T) {
	r := clock.NewCallbackRegistry()
	r.SetDefault(clock.CallbackFunc(func(clock.TimeEvent) {}))
	r.Set("named", clock.CallbackFunc(func(clock.TimeEvent) {}))

	r.Reset()
	assert.False(t, r.HasHandler("named"))
}
