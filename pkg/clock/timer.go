package clock

import (
	"github.com/Bucanero06/nautilus-clock/pkg/fsm"
)

// Timer is a named, periodic (or one-shot) schedule: it produces a
// TimeEvent every Interval starting at Start, until Stop is reached (if
// set) or it is cancelled. A one-shot alert is represented as a periodic
// timer whose Stop equals its sole firing instant.
type Timer struct {
	Name     TimerName
	Interval Interval
	Start    Instant
	Stop     *Instant

	nextFire  Instant
	lifecycle *fsm.TimerLifecycleFSM
}

// NewTimer constructs a Timer tracked by the given lifecycle FSM (owned by
// the Clock's TimerLifecycleRegistry, keyed by name). interval must be
// positive; if stop is non-nil it must be strictly after start.
func NewTimer(name TimerName, interval Interval, start Instant, stop *Instant, lifecycle *fsm.TimerLifecycleFSM) (*Timer, error) {
	if interval == 0 {
		return nil, NewConfigError("timer %s: interval must be positive", name)
	}
	if stop != nil && *stop <= start {
		return nil, NewConfigError("timer %s: stop instant must be after start instant", name)
	}
	return &Timer{
		Name:      name,
		Interval:  interval,
		Start:     start,
		Stop:      stop,
		nextFire:  start.Add(interval),
		lifecycle: lifecycle,
	}, nil
}

// NextFire returns the next instant this timer is due, valid only while
// IsActive is true.
func (t *Timer) NextFire() Instant { return t.nextFire }

// IsActive reports whether the timer may still produce future events.
func (t *Timer) IsActive() bool {
	return t.lifecycle.State() == fsm.TimerActive
}

// IsExpired reports whether the timer's stop instant has been reached.
func (t *Timer) IsExpired() bool {
	return t.lifecycle.State() == fsm.TimerExpired
}

// IsCancelled reports whether the timer was cancelled before expiry.
func (t *Timer) IsCancelled() bool {
	return t.lifecycle.State() == fsm.TimerCancelled
}

// Cancel terminates the timer immediately; it will produce no further
// events. Safe to call more than once or after the timer has already
// expired; it is a no-op in that case.
func (t *Timer) Cancel() {
	_ = t.lifecycle.Transition(fsm.EventCancel)
}

// Advance produces every TimeEvent due at or before `to`, advancing the
// timer's internal schedule past them, and transitions the timer to
// Expired if its stop instant is reached in the process. emittedAt is
// recorded as TsInit on every produced event: the instant the advancing
// call observed "now", which is later than TsEvent for the earlier events
// when a single advance spans more than one firing.
func (t *Timer) Advance(to, emittedAt Instant) []TimeEvent {
	if !t.IsActive() {
		return nil
	}

	var events []TimeEvent
	for t.nextFire <= to {
		if t.Stop != nil && t.nextFire > *t.Stop {
			_ = t.lifecycle.Transition(fsm.EventExpire)
			break
		}
		events = append(events, NewTimeEvent(t.Name, t.nextFire, emittedAt))
		_ = t.lifecycle.Transition(fsm.EventFire)

		fired := t.nextFire
		t.nextFire = fired.Add(t.Interval)

		if t.Stop != nil && t.nextFire > *t.Stop {
			_ = t.lifecycle.Transition(fsm.EventExpire)
			break
		}
	}
	return events
}
