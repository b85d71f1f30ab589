package clock

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// EventStream is an async-pull adapter over a LiveClock's shared event
// queue, for callers that want to consume TimeEventHandlers one at a time
// (e.g. a strategy loop) instead of registering Callback implementations
// that get invoked from the dispatch loop's own goroutine.
//
// Each poll attempts a non-blocking pop of the underlying LiveEventQueue.
// On contention (another goroutine briefly holds the queue's lock) it
// backs off with bounded exponential delay rather than busy-spinning;
// on a genuinely empty queue it waits on the queue's Notify channel.
type EventStream struct {
	clock *LiveClock
}

// NewEventStream creates a stream over a LiveClock's shared queue.
func NewEventStream(c *LiveClock) *EventStream {
	return &EventStream{clock: c}
}

// Next blocks until a TimeEventHandler is available or ctx is cancelled.
func (s *EventStream) Next(ctx context.Context) (TimeEventHandler, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Microsecond // first retry after ~1µs; the delay grows only on sustained contention

	for {
		event, ok, contended := s.clock.queue.TryPop()
		if ok {
			return s.resolve(event), nil
		}
		if contended {
			delay, permanentErr := b.NextBackOff()
			if permanentErr != nil {
				return TimeEventHandler{}, permanentErr
			}
			if err := sleepOrDone(ctx, delay); err != nil {
				return TimeEventHandler{}, err
			}
			continue
		}

		// Queue genuinely empty: wait for a push notification or cancellation.
		select {
		case <-ctx.Done():
			return TimeEventHandler{}, ctx.Err()
		case <-s.clock.queue.Notify():
			b.Reset()
		}
	}
}

func sleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// resolve pairs an event with its callback, falling back to a no-op
// handler if none resolves (the event is still returned so the caller can
// observe it, but Handle() is a no-op).
func (s *EventStream) resolve(event TimeEvent) TimeEventHandler {
	cb, ok := s.clock.callbacks.Resolve(event.Name)
	if !ok {
		cb = CallbackFunc(func(TimeEvent) {})
	}
	return TimeEventHandler{Event: event, Callback: cb}
}
