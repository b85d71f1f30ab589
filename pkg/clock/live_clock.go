package clock

import (
	"sort"
	"sync"
	"time"

	"github.com/Bucanero06/nautilus-clock/pkg/fsm"
)

// LiveClock is the production Clock: time is read straight from the OS
// clock, and each registered timer runs its own host goroutine that pushes
// TimeEvents onto a shared, mutex-guarded LiveEventQueue. A single
// dispatch loop drains that queue and invokes callbacks; the queue's lock
// is never held across callback execution, so a slow callback cannot
// block timer producers.
type LiveClock struct {
	ts *SystemTimeSource

	mu        sync.Mutex
	timers    map[TimerName]*LiveTimer
	lifecycle *fsm.TimerLifecycleRegistry
	callbacks *CallbackRegistry
	queue     *LiveEventQueue

	logger Logger

	dispatchStop chan struct{}
	dispatchDone chan struct{}
}

// NewLiveClock creates a LiveClock and starts its dispatch loop. A nil
// logger is replaced with NoopLogger.
func NewLiveClock(logger Logger) *LiveClock {
	if logger == nil {
		logger = NoopLogger{}
	}
	c := &LiveClock{
		ts:           NewSystemTimeSource(),
		timers:       make(map[TimerName]*LiveTimer),
		lifecycle:    fsm.NewTimerLifecycleRegistry(),
		callbacks:    NewCallbackRegistry(),
		queue:        NewLiveEventQueue(),
		logger:       logger,
		dispatchStop: make(chan struct{}),
		dispatchDone: make(chan struct{}),
	}
	go c.dispatchLoop()
	return c
}

// Close stops the dispatch loop and cancels every active timer, waiting
// for their host goroutines to exit. After Close returns, the LiveClock
// must not be used again.
func (c *LiveClock) Close() {
	c.mu.Lock()
	timers := make([]*LiveTimer, 0, len(c.timers))
	for _, t := range c.timers {
		timers = append(timers, t)
	}
	c.timers = make(map[TimerName]*LiveTimer)
	c.mu.Unlock()

	for _, t := range timers {
		t.Cancel()
	}

	close(c.dispatchStop)
	<-c.dispatchDone
}

func (c *LiveClock) NowNs() Instant    { return c.ts.Now() }
func (c *LiveClock) NowUs() int64      { return int64(c.ts.Now()) / int64(time.Microsecond) }
func (c *LiveClock) NowMs() int64      { return int64(c.ts.Now()) / int64(time.Millisecond) }
func (c *LiveClock) UtcNow() time.Time { return c.ts.NowTime() }

func (c *LiveClock) RegisterDefaultHandler(cb Callback) {
	c.callbacks.SetDefault(cb)
}

func (c *LiveClock) SetAlert(name TimerName, alertTime Instant, cb Callback, allowPast bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.ts.Now()
	if alertTime < now && !allowPast {
		return NewTemporalError("alert %s: time %d is before current time %d", name, alertTime, now)
	}
	effective := alertTime
	if alertTime <= now {
		effective = now.Add(MinInterval)
		c.logger.Warnf("alert %s: requested time %d is not after current time %d, promoting to %d",
			name, alertTime, now, effective)
	}
	interval := ValidateInterval(now, effective)
	return c.install(name, interval, now, &effective, cb)
}

func (c *LiveClock) SetTimer(name TimerName, interval Interval, start Instant, stop *Instant, cb Callback, allowPast bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

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

// install must be called with c.mu held. It replaces any existing
// timer/alert registered under name, matching SimClock's semantics.
func (c *LiveClock) install(name TimerName, interval Interval, start Instant, stop *Instant, cb Callback) error {
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

	if existing, ok := c.timers[name]; ok {
		existing.Cancel()
	}

	c.lifecycle.Remove(timerKey(name))
	lifecycleFSM := c.lifecycle.Get(timerKey(name))
	taskFSM := fsm.NewLiveTimerTaskFSM(string(name))

	lt := newLiveTimer(name, interval, start, stop, lifecycleFSM, taskFSM)
	c.timers[name] = lt
	go lt.run(c.ts, c.queue)
	return nil
}

func (c *LiveClock) NextFire(name TimerName) (Instant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.timers[name]
	if !ok || !t.IsActive() {
		return 0, false
	}
	return t.NextFire(), true
}

func (c *LiveClock) Cancel(name TimerName) {
	c.mu.Lock()
	t, ok := c.timers[name]
	if ok {
		delete(c.timers, name)
		c.lifecycle.Remove(timerKey(name))
	}
	c.mu.Unlock()

	if ok {
		t.Cancel()
	}
}

func (c *LiveClock) CancelAll() {
	c.mu.Lock()
	timers := make([]*LiveTimer, 0, len(c.timers))
	for _, t := range c.timers {
		timers = append(timers, t)
	}
	c.timers = make(map[TimerName]*LiveTimer)
	c.lifecycle.Reset()
	c.mu.Unlock()

	for _, t := range timers {
		t.Cancel()
	}
}

func (c *LiveClock) Reset() {
	c.CancelAll()
	c.mu.Lock()
	c.callbacks.Reset()
	c.mu.Unlock()
}

func (c *LiveClock) TimerNames() []TimerName {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]TimerName, 0, len(c.timers))
	for name, t := range c.timers {
		if t.IsActive() {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

func (c *LiveClock) TimerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if t.IsActive() {
			n++
		}
	}
	return n
}

// Queue exposes the shared live event queue so an EventStream can pull
// from it directly, bypassing the push-based dispatch loop.
func (c *LiveClock) Queue() *LiveEventQueue { return c.queue }

// Callbacks exposes the callback registry so EventStream consumers can
// resolve a handler themselves.
func (c *LiveClock) Callbacks() *CallbackRegistry { return c.callbacks }

func (c *LiveClock) dispatchLoop() {
	defer close(c.dispatchDone)
	for {
		select {
		case <-c.dispatchStop:
			c.drainQueue()
			return
		case <-c.queue.Notify():
			c.drainQueue()
		}
	}
}

func (c *LiveClock) drainQueue() {
	for {
		event, ok := c.queue.Pop()
		if !ok {
			return
		}
		c.dispatch(event)
	}
}

func (c *LiveClock) dispatch(event TimeEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Errorf("live clock: recovered from panic dispatching %s: %v", event, r)
		}
	}()

	cb, ok := c.callbacks.Resolve(event.Name)
	if !ok {
		c.logger.Warnf("live clock: no callback resolvable for timer %s, dropping event %s", event.Name, event.ID)
		return
	}
	cb.Call(event)
}
