package clock

import "time"

// Clock is the common interface SimClock and LiveClock both satisfy. It is
// the surface embedded schedulers (internal/api), strategies, and tests
// program against, so code written against Clock runs unmodified in both
// backtest and live contexts.
type Clock interface {
	// NowNs returns the current instant in nanoseconds since the Unix epoch.
	NowNs() Instant
	// NowUs returns the current instant in microseconds since the epoch.
	NowUs() int64
	// NowMs returns the current instant in milliseconds since the epoch.
	NowMs() int64
	// UtcNow returns the current instant as a time.Time in UTC.
	UtcNow() time.Time

	// RegisterDefaultHandler installs the fallback callback used for any
	// timer that has no specific handler registered. Applies retroactively
	// to timers that already exist, since resolution happens at dispatch
	// time.
	RegisterDefaultHandler(cb Callback)

	// SetAlert schedules a one-shot callback: name fires exactly once at
	// alertTime. Replaces any existing timer/alert registered under name.
	SetAlert(name TimerName, alertTime Instant, cb Callback, allowPast bool) error

	// SetTimer schedules a periodic callback firing every interval,
	// starting at start (an Instant of 0 means "use the clock's current
	// time") and optionally stopping at stop. Replaces any existing
	// timer/alert registered under name.
	SetTimer(name TimerName, interval Interval, start Instant, stop *Instant, cb Callback, allowPast bool) error

	// NextFire returns the next instant a named timer is due, and whether
	// the timer exists and is still active.
	NextFire(name TimerName) (Instant, bool)

	// Cancel stops a single named timer; a no-op if the name is unknown.
	Cancel(name TimerName)

	// CancelAll stops every currently registered timer.
	CancelAll()

	// Reset clears all timers and callbacks, returning the clock to an
	// empty state. Does not reset the underlying time source.
	Reset()

	// TimerNames returns the names of all currently active timers.
	TimerNames() []TimerName

	// TimerCount returns the number of currently active timers.
	TimerCount() int
}

// resolveStart applies the zero-means-now convention from the original
// clock's set_timer_ns: a start of 0 means "use the current time" rather
// than literally the Unix epoch, so callers don't need to read the clock
// themselves just to mean "starting now".
func resolveStart(start, now Instant) Instant {
	if start == 0 {
		return now
	}
	return start
}
