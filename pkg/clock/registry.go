package clock

import "sync"

// CallbackRegistry resolves a timer name to the Callback that should handle
// its events: a per-name callback if one was registered, falling back to a
// default handler. The default handler is consulted at dispatch time, not
// at registration time, so replacing the default handler applies
// retroactively to existing timers that have no per-name callback.
type CallbackRegistry struct {
	mu        sync.RWMutex
	handlers  map[TimerName]Callback
	defaultFn Callback
}

// NewCallbackRegistry returns an empty registry with no default handler.
func NewCallbackRegistry() *CallbackRegistry {
	return &CallbackRegistry{handlers: make(map[TimerName]Callback)}
}

// SetDefault installs (or replaces) the default handler used for timers
// that have no specific callback registered.
func (r *CallbackRegistry) SetDefault(cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.defaultFn = cb
}

// Set installs the callback for a specific timer name, replacing any
// previous registration for that name.
func (r *CallbackRegistry) Set(name TimerName, cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = cb
}

// Remove drops the per-name callback for a timer, if any. The default
// handler, if set, still applies to the name afterward.
func (r *CallbackRegistry) Remove(name TimerName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Resolve returns the callback that should handle events for name: the
// per-name handler if registered, else the default handler. ok is false
// only when neither exists, meaning the event has nowhere to go.
func (r *CallbackRegistry) Resolve(name TimerName) (cb Callback, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if h, exists := r.handlers[name]; exists {
		return h, true
	}
	if r.defaultFn != nil {
		return r.defaultFn, true
	}
	return nil, false
}

// HasHandler reports whether name currently resolves to a callback, without
// returning it. Used at set_alert/set_timer time to validate that the
// event will actually be deliverable before it is scheduled.
func (r *CallbackRegistry) HasHandler(name TimerName) bool {
	_, ok := r.Resolve(name)
	return ok
}

// Reset clears all per-name handlers and the default handler.
func (r *CallbackRegistry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers = make(map[TimerName]Callback)
	r.defaultFn = nil
}
