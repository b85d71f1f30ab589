// Package ffi is the legacy C ABI surface: three entry points for hosts
// that construct, stringify, and dispatch TimeEvents from outside Go,
// mirroring the original engine's Cython/FFI interop shim. All interop
// assumes UTF-8 borrowed strings; nothing here persists state.
package ffi

import (
	"unsafe"

	"github.com/google/uuid"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// TimeEventHandler pairs a TimeEvent with an opaque callback pointer
// supplied by the host, for callers that resolve and dispatch callbacks
// themselves instead of going through pkg/clock's CallbackRegistry. The
// pointer is never dereferenced on the Go side — it round-trips back to
// the host's own dispatch code.
type TimeEventHandler struct {
	Event       clock.TimeEvent
	CallbackPtr unsafe.Pointer
}

// NewTimeEvent constructs a TimeEvent from its raw wire fields: a UTF-8
// timer name, a UUID string, and the event/init instants in nanoseconds.
// Returns an error if name is empty or id is not a well-formed UUID,
// since a malformed handoff from the host must not silently produce a
// TimeEvent carrying a zero-value ID.
func NewTimeEvent(name string, id string, tsEvent, tsInit uint64) (clock.TimeEvent, error) {
	if name == "" {
		return clock.TimeEvent{}, clock.NewConfigError("ffi: time event name must not be empty")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return clock.TimeEvent{}, clock.NewConfigError("ffi: invalid event id %q: %v", id, err)
	}
	return clock.TimeEvent{
		Name:    clock.TimerName(name),
		ID:      parsed,
		TsEvent: clock.Instant(tsEvent),
		TsInit:  clock.Instant(tsInit),
	}, nil
}

// TimeEventToString renders a TimeEvent the same way clock.TimeEvent's
// own String method does, as the single source of truth for the
// stringified form crossing the FFI boundary.
func TimeEventToString(ev clock.TimeEvent) string {
	return ev.String()
}

// NewTimeEventHandler pairs ev with a host-owned callback pointer. ptr is
// opaque to this package; it exists purely to be handed back to the host.
func NewTimeEventHandler(ev clock.TimeEvent, ptr unsafe.Pointer) TimeEventHandler {
	return TimeEventHandler{Event: ev, CallbackPtr: ptr}
}
