package clock

import (
	"container/heap"
	"sync"
)

// eventHeap is a container/heap.Interface over TimeEvents ordered by
// TimeEvent.Less (ts_event, name, id).
type eventHeap []TimeEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].Less(h[j]) }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)         { *h = append(*h, x.(TimeEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// EventQueue is the sim-mode discipline: a transient, single-threaded
// min-heap. SimClock owns one exclusively and never shares it across
// goroutines, so no locking is needed; callers that do share it concurrently
// are responsible for their own synchronization.
type EventQueue struct {
	h eventHeap
}

// NewEventQueue returns an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{}
	heap.Init(&q.h)
	return q
}

// Push inserts an event.
func (q *EventQueue) Push(e TimeEvent) {
	heap.Push(&q.h, e)
}

// Pop removes and returns the earliest event, or ok=false if empty.
func (q *EventQueue) Pop() (e TimeEvent, ok bool) {
	if len(q.h) == 0 {
		return TimeEvent{}, false
	}
	return heap.Pop(&q.h).(TimeEvent), true
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (e TimeEvent, ok bool) {
	if len(q.h) == 0 {
		return TimeEvent{}, false
	}
	return q.h[0], true
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int { return len(q.h) }

// Drain pops every pending event in order and returns them as a slice.
func (q *EventQueue) Drain() []TimeEvent {
	out := make([]TimeEvent, 0, len(q.h))
	for {
		e, ok := q.Pop()
		if !ok {
			break
		}
		out = append(out, e)
	}
	return out
}

// LiveEventQueue is the live-mode discipline: a mutex-guarded
// multi-producer-single-consumer min-heap. Many LiveTimer host goroutines
// push concurrently; the dispatch loop (or an EventStream) pops. The mutex
// must never be held across callback execution, only across the heap
// operation itself, so a slow or blocking callback cannot stall producers.
type LiveEventQueue struct {
	mu     sync.Mutex
	h      eventHeap
	notify chan struct{}
}

// NewLiveEventQueue returns an empty LiveEventQueue.
func NewLiveEventQueue() *LiveEventQueue {
	q := &LiveEventQueue{notify: make(chan struct{}, 1)}
	heap.Init(&q.h)
	return q
}

// Push inserts an event and wakes one waiter on Notify, if any. Safe for
// concurrent use by any number of producers.
func (q *LiveEventQueue) Push(e TimeEvent) {
	q.mu.Lock()
	heap.Push(&q.h, e)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// Notify returns a channel that receives a value whenever an event is
// pushed, coalescing bursts into a single wake-up. The dispatch loop
// selects on this instead of busy-polling the queue.
func (q *LiveEventQueue) Notify() <-chan struct{} {
	return q.notify
}

// Pop removes and returns the earliest event under the queue's lock,
// blocking briefly if another goroutine holds it. Used by callers that
// already know an event is likely present (e.g. after a wake signal).
func (q *LiveEventQueue) Pop() (e TimeEvent, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return TimeEvent{}, false
	}
	return heap.Pop(&q.h).(TimeEvent), true
}

// TryPop attempts a non-blocking pop. contended is true if the lock could
// not be acquired (some other goroutine is mutating the queue right now);
// in that case ok is always false and the caller should back off and
// retry rather than treat the queue as empty.
func (q *LiveEventQueue) TryPop() (e TimeEvent, ok bool, contended bool) {
	if !q.mu.TryLock() {
		return TimeEvent{}, false, true
	}
	defer q.mu.Unlock()
	if len(q.h) == 0 {
		return TimeEvent{}, false, false
	}
	return heap.Pop(&q.h).(TimeEvent), true, false
}

// Len returns the number of pending events.
func (q *LiveEventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.h)
}
