package clock

import (
	"sort"
	"time"

	"github.com/Bucanero06/nautilus-clock/pkg/fsm"
)

// SimClock is the backtest/simulation Clock: time only moves when
// AdvanceTime or AdvanceOnHeap is called. It is not safe for concurrent
// use — a simulation loop owns it exclusively and drives it
// single-threaded, the same discipline the original test clock relies on
// for reproducibility. It keeps no EventQueue between calls: AdvanceTime
// and AdvanceOnHeap each build a fresh one per call (AdvanceTime drains
// it, AdvanceOnHeap hands it to the caller).
type SimClock struct {
	ts        *FixedTimeSource
	timers    map[TimerName]*Timer
	lifecycle *fsm.TimerLifecycleRegistry
	callbacks *CallbackRegistry
	logger    Logger
}

// NewSimClock creates a SimClock whose current time starts at start.
func NewSimClock(start Instant) *SimClock {
	return &SimClock{
		ts:        NewFixedTimeSource(start),
		timers:    make(map[TimerName]*Timer),
		lifecycle: fsm.NewTimerLifecycleRegistry(),
		callbacks: NewCallbackRegistry(),
		logger:    NoopLogger{},
	}
}

// SetLogger installs the logger used for the past-instant auto-promotion
// warning. A nil logger restores NoopLogger.
func (c *SimClock) SetLogger(l Logger) {
	if l == nil {
		l = NoopLogger{}
	}
	c.logger = l
}

func (c *SimClock) NowNs() Instant       { return c.ts.Now() }
func (c *SimClock) NowUs() int64         { return int64(c.ts.Now()) / int64(time.Microsecond) }
func (c *SimClock) NowMs() int64         { return int64(c.ts.Now()) / int64(time.Millisecond) }
func (c *SimClock) UtcNow() time.Time    { return c.ts.NowTime() }

func (c *SimClock) RegisterDefaultHandler(cb Callback) {
	c.callbacks.SetDefault(cb)
}

func (c *SimClock) SetAlert(name TimerName, alertTime Instant, cb Callback, allowPast bool) error {
	now := c.ts.Now()
	if alertTime < now && !allowPast {
		return NewTemporalError("alert %s: time %d is before current time %d", name, alertTime, now)
	}
	effective := alertTime
	if alertTime <= now {
		// An alert at now (or, with allow_past, before it): promote to
		// fire on the next advance, rather than constructing an already-past stop
		// instant the Timer invariant (stop > start) would reject.
		effective = now.Add(MinInterval)
		c.logger.Warnf("alert %s: requested time %d is not after current time %d, promoting to %d",
			name, alertTime, now, effective)
	}
	interval := ValidateInterval(now, effective)
	return c.install(name, interval, now, &effective, cb)
}

func (c *SimClock) SetTimer(name TimerName, interval Interval, start Instant, stop *Instant, cb Callback, allowPast bool) error {
	now := c.ts.Now()
	resolved := resolveStart(start, now)
	if resolved < now && !allowPast {
		return NewTemporalError("timer %s: start %d is before current time %d", name, resolved, now)
	}
	if resolved < now {
		c.logger.Warnf("timer %s: requested start %d is before current time %d, promoting to %d",
			name, resolved, now, now)
		resolved = now
	}
	return c.install(name, interval, resolved, stop, cb)
}

// install replaces any existing timer/alert registered under name,
// matching the original clock's replace-on-reregister semantics.
func (c *SimClock) install(name TimerName, interval Interval, start Instant, stop *Instant, cb Callback) error {
	if name == "" {
		return NewConfigError("install: timer name must not be empty")
	}
	if interval == 0 {
		return NewConfigError("timer %s: interval must be positive", name)
	}
	if stop != nil && *stop <= start {
		return NewConfigError("timer %s: stop instant must be after start instant", name)
	}

	// cb may be nil only when a handler for name already resolves (a
	// callback from an earlier registration or the default handler);
	// otherwise the registration is rejected.
	if cb != nil {
		c.callbacks.Set(name, cb)
	}
	if !c.callbacks.HasHandler(name) {
		return NewConfigError("install: timer %s has no callback available and no default handler registered", name)
	}

	c.lifecycle.Remove(timerKey(name))
	fsmEntry := c.lifecycle.Get(timerKey(name))

	timer, err := NewTimer(name, interval, start, stop, fsmEntry)
	if err != nil {
		return err
	}
	c.timers[name] = timer
	return nil
}

func (c *SimClock) NextFire(name TimerName) (Instant, bool) {
	t, ok := c.timers[name]
	if !ok || !t.IsActive() {
		return 0, false
	}
	return t.NextFire(), true
}

func (c *SimClock) Cancel(name TimerName) {
	if t, ok := c.timers[name]; ok {
		t.Cancel()
		delete(c.timers, name)
		c.lifecycle.Remove(timerKey(name))
	}
}

func (c *SimClock) CancelAll() {
	for name, t := range c.timers {
		t.Cancel()
		c.lifecycle.Remove(timerKey(name))
	}
	c.timers = make(map[TimerName]*Timer)
}

func (c *SimClock) Reset() {
	c.timers = make(map[TimerName]*Timer)
	c.lifecycle.Reset()
	c.callbacks.Reset()
}

func (c *SimClock) TimerNames() []TimerName {
	names := make([]TimerName, 0, len(c.timers))
	for name, t := range c.timers {
		if t.IsActive() {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (c *SimClock) TimerCount() int {
	n := 0
	for _, t := range c.timers {
		if t.IsActive() {
			n++
		}
	}
	return n
}

// AdvanceTime moves the clock forward to `to` (must be >= current time)
// and returns every TimeEvent due at or before it, without invoking any
// callbacks. Timers are visited in name-sorted order so that two timers
// due at the identical instant always produce events in a stable,
// reproducible sequence regardless of Go's randomized map iteration.
func (c *SimClock) AdvanceTime(to Instant) []TimeEvent {
	now := c.ts.Now()
	if to < now {
		panic(NewInvariantViolation("AdvanceTime: target %d precedes current time %d", to, now).Error())
	}

	names := c.sortedNames()
	q := NewEventQueue()
	for _, name := range names {
		t := c.timers[name]
		if !t.IsActive() {
			continue
		}
		for _, ev := range t.Advance(to, to) {
			q.Push(ev)
		}
	}
	c.ts.Set(to)
	c.pruneExpired()
	return q.Drain()
}

// AdvanceOnHeap is like AdvanceTime, but exposes the intermediate min-heap
// ordering directly instead of draining it into a slice up front; used by
// Next() to consume events lazily one at a time.
func (c *SimClock) AdvanceOnHeap(to Instant) *EventQueue {
	now := c.ts.Now()
	if to < now {
		panic(NewInvariantViolation("AdvanceOnHeap: target %d precedes current time %d", to, now).Error())
	}

	q := NewEventQueue()
	for _, name := range c.sortedNames() {
		t := c.timers[name]
		if !t.IsActive() {
			continue
		}
		for _, ev := range t.Advance(to, to) {
			q.Push(ev)
		}
	}
	c.ts.Set(to)
	c.pruneExpired()
	return q
}

// MatchHandlers resolves a batch of events (typically the result of
// AdvanceTime/AdvanceOnHeap) against the callback registry, returning a
// TimeEventHandler per event. SimClock is fail-fast about dispatch: if an
// event's timer never became resolvable to any callback (no specific
// handler was ever set and no default handler exists), that is an
// InvariantViolation and this panics rather than silently dropping the
// event, since a simulation run must not silently diverge from what the
// caller believes was scheduled.
func (c *SimClock) MatchHandlers(events []TimeEvent) []TimeEventHandler {
	handlers := make([]TimeEventHandler, 0, len(events))
	for _, ev := range events {
		cb, ok := c.callbacks.Resolve(ev.Name)
		if !ok {
			panic(NewInvariantViolation("no callback resolvable for timer %s", ev.Name).Error())
		}
		handlers = append(handlers, TimeEventHandler{Event: ev, Callback: cb})
	}
	return handlers
}

// Next pops and returns the single earliest pending event from a queue
// previously obtained via AdvanceOnHeap, iterator-style. ok is false once
// the queue is exhausted.
func (c *SimClock) Next(q *EventQueue) (TimeEvent, bool) {
	return q.Pop()
}

// GetTimerSnapshot returns a read-only view of every timer's current
// lifecycle state, for simulation-harness introspection and tests — not
// intended for production callers.
func (c *SimClock) GetTimerSnapshot() map[TimerName]fsm.TimerLifecycleState {
	snap := make(map[TimerName]fsm.TimerLifecycleState, len(c.timers))
	for name, t := range c.timers {
		state := fsm.TimerActive
		switch {
		case t.IsExpired():
			state = fsm.TimerExpired
		case t.IsCancelled():
			state = fsm.TimerCancelled
		}
		snap[name] = state
	}
	return snap
}

func (c *SimClock) sortedNames() []TimerName {
	names := make([]TimerName, 0, len(c.timers))
	for name := range c.timers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (c *SimClock) pruneExpired() {
	for name, t := range c.timers {
		if !t.IsActive() {
			delete(c.timers, name)
		}
	}
}

func timerKey(name TimerName) string { return string(name) }
