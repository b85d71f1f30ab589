//go:build cgo

package ffi

/*
#include <stdint.h>
#include <stdlib.h>

typedef struct {
	uintptr_t event_handle;
	void *callback_ptr;
} nautilus_clock_time_event_handler;
*/
import "C"
import (
	"runtime/cgo"
	"unsafe"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// Exported entry points hand out runtime/cgo.Handle values instead of
// the TimeEvent struct itself: a TimeEvent carries a Go string and a
// fixed-size UUID array, neither of which has a stable C-ABI layout, so
// the handle is the opaque, GC-safe reference a host holds instead.

// time_event_new constructs a TimeEvent from borrowed C strings and raw
// nanosecond instants, returning an opaque handle. Returns 0 on a
// malformed name or id, since a C ABI function can't return a Go error;
// callers must treat a zero handle as failure.
//
//export time_event_new
func time_event_new(namePtr, idPtr *C.char, tsEvent, tsInit C.uint64_t) C.uintptr_t {
	ev, err := NewTimeEvent(C.GoString(namePtr), C.GoString(idPtr), uint64(tsEvent), uint64(tsInit))
	if err != nil {
		return 0
	}
	return C.uintptr_t(cgo.NewHandle(ev))
}

// time_event_to_cstr renders the TimeEvent behind handle as a
// newly-allocated, NUL-terminated C string. Ownership transfers to the
// caller, who must free it with C.free once done.
//
//export time_event_to_cstr
func time_event_to_cstr(handle C.uintptr_t) *C.char {
	ev := cgo.Handle(handle).Value()
	return C.CString(TimeEventToString(ev.(clock.TimeEvent)))
}

// time_event_handler_new pairs the TimeEvent behind handle with an
// opaque callback pointer owned by the host, for hosts that dispatch
// callbacks themselves rather than going through pkg/clock's
// CallbackRegistry. The returned handle must be released with
// time_event_release once the host is done with it.
//
//export time_event_handler_new
func time_event_handler_new(handle C.uintptr_t, callbackPtr unsafe.Pointer) C.nautilus_clock_time_event_handler {
	return C.nautilus_clock_time_event_handler{
		event_handle: handle,
		callback_ptr: callbackPtr,
	}
}

// time_event_release frees the Go-side reference backing handle. Must be
// called exactly once per handle returned by time_event_new.
//
//export time_event_release
func time_event_release(handle C.uintptr_t) {
	cgo.Handle(handle).Delete()
}
