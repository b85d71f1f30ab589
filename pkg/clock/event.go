package clock

import (
	"fmt"

	"github.com/google/uuid"
)

// TimerName identifies a timer. It is an interned-in-spirit short string;
// no separate interning table is implemented here since Go string
// comparison/hashing is already cheap, but the type keeps timer names from
// being confused with arbitrary strings at call sites.
type TimerName string

// TimeEvent is a single scheduled firing of a named timer.
type TimeEvent struct {
	// Name is the timer that produced this event.
	Name TimerName
	// ID uniquely identifies this specific firing.
	ID uuid.UUID
	// TsEvent is the instant the event logically occurred (the timer's
	// due instant), used for both dispatch and ordering.
	TsEvent Instant
	// TsInit is the instant the event was constructed/observed, which
	// may trail TsEvent when multiple events are produced by a single
	// advance spanning more than one firing.
	TsInit Instant
}

// NewTimeEvent constructs a TimeEvent with a fresh random ID.
func NewTimeEvent(name TimerName, tsEvent, tsInit Instant) TimeEvent {
	return TimeEvent{
		Name:    name,
		ID:      uuid.New(),
		TsEvent: tsEvent,
		TsInit:  tsInit,
	}
}

func (e TimeEvent) String() string {
	return fmt.Sprintf("TimeEvent(name=%s, id=%s, ts_event=%d, ts_init=%d)",
		e.Name, e.ID, e.TsEvent, e.TsInit)
}

// Less defines the total order events are dispatched in: ascending
// ts_event first, then name, then id, so that concurrently-due events from
// different timers are delivered in a deterministic, reproducible order
// and duplicate-instant collisions still resolve without ties.
func (e TimeEvent) Less(o TimeEvent) bool {
	if e.TsEvent != o.TsEvent {
		return e.TsEvent < o.TsEvent
	}
	if e.Name != o.Name {
		return e.Name < o.Name
	}
	return lessUUID(e.ID, o.ID)
}

// TimeEventHandler pairs a fired TimeEvent with the Callback resolved to
// handle it, the unit of work both SimClock.MatchHandlers and LiveClock's
// dispatch loop produce and consume.
type TimeEventHandler struct {
	Event    TimeEvent
	Callback Callback
}

// Handle invokes the paired callback with the event.
func (h TimeEventHandler) Handle() {
	h.Callback.Call(h.Event)
}

func lessUUID(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
