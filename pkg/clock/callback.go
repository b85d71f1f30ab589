package clock

// Callback is invoked when a timer fires. Implementations must be safe to
// call from whatever goroutine dispatches events: SimClock calls them
// synchronously on the advancing goroutine; LiveClock calls them from its
// own dispatch loop.
type Callback interface {
	Call(event TimeEvent)
}

// CallbackFunc adapts a plain function to the Callback interface, covering
// the common case of registering a native Go closure.
type CallbackFunc func(TimeEvent)

// Call invokes the wrapped function.
func (f CallbackFunc) Call(event TimeEvent) { f(event) }

// HostCallback hands a fired event to an embedding host (e.g. a scripting
// runtime bound through internal/api) rather than calling a Go function
// directly. Ref is an opaque handle meaningful only to Invoke; the clock
// core never inspects it. This mirrors the tagged Native/Host callback
// variant in the original clock, expressed as two Callback implementations
// instead of an enum since Go dispatch is already virtual.
type HostCallback struct {
	Ref    any
	Invoke func(ref any, event TimeEvent)
}

// Call forwards the event to the host through Invoke.
func (h HostCallback) Call(event TimeEvent) {
	if h.Invoke != nil {
		h.Invoke(h.Ref, event)
	}
}
