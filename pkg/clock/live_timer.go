package clock

import (
	"sync"
	"time"

	"github.com/Bucanero06/nautilus-clock/pkg/fsm"
)

// LiveTimer is the live-mode counterpart to Timer: each one owns an
// independent host goroutine that sleeps until its next_fire instant,
// pushes the resulting TimeEvent onto the shared LiveEventQueue, and
// re-arms — or exits, on expiry or cancellation. Cancellation closes a
// stop channel so a sleeping goroutine wakes and exits immediately rather
// than waiting out its remaining sleep.
type LiveTimer struct {
	name     TimerName
	interval Interval
	start    Instant
	stop     *Instant

	mu       sync.Mutex
	nextFire Instant

	lifecycle *fsm.TimerLifecycleFSM
	task      *fsm.LiveTimerTaskFSM

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

func newLiveTimer(name TimerName, interval Interval, start Instant, stop *Instant,
	lifecycle *fsm.TimerLifecycleFSM, task *fsm.LiveTimerTaskFSM) *LiveTimer {
	return &LiveTimer{
		name:      name,
		interval:  interval,
		start:     start,
		stop:      stop,
		nextFire:  start.Add(interval),
		lifecycle: lifecycle,
		task:      task,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// NextFire returns the instant this timer is next due.
func (t *LiveTimer) NextFire() Instant {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextFire
}

// IsActive reports whether the timer's host goroutine is still running.
func (t *LiveTimer) IsActive() bool {
	return t.lifecycle.State() == fsm.TimerActive
}

// Cancel stops the host goroutine and waits for it to exit. Safe to call
// more than once.
func (t *LiveTimer) Cancel() {
	t.once.Do(func() { close(t.stopCh) })
	<-t.doneCh
}

// run is the host task: it sleeps until nextFire, pushes an event, and
// loops until stopped, expired, or cancelled. It must be started as its
// own goroutine by the owning LiveClock.
func (t *LiveTimer) run(ts TimeSource, queue *LiveEventQueue) {
	defer close(t.doneCh)
	_ = t.task.Transition(fsm.TaskEventStart)

	for {
		t.mu.Lock()
		next := t.nextFire
		stopAt := t.stop
		t.mu.Unlock()

		wait := time.Duration(0)
		if now := ts.Now(); next > now {
			wait = time.Duration(next - now)
		}
		sleepTimer := time.NewTimer(wait)

		select {
		case <-t.stopCh:
			sleepTimer.Stop()
			_ = t.task.Transition(fsm.TaskEventCancel)
			_ = t.lifecycle.Transition(fsm.EventCancel)
			return

		case <-sleepTimer.C:
			_ = t.task.Transition(fsm.TaskEventWake)
			if stopAt != nil && next > *stopAt {
				_ = t.task.Transition(fsm.TaskEventStop)
				_ = t.lifecycle.Transition(fsm.EventExpire)
				return
			}

			event := NewTimeEvent(t.name, next, ts.Now())
			queue.Push(event)
			_ = t.lifecycle.Transition(fsm.EventFire)

			t.mu.Lock()
			t.nextFire = next.Add(t.interval)
			reachedStop := stopAt != nil && t.nextFire > *stopAt
			t.mu.Unlock()

			if reachedStop {
				_ = t.task.Transition(fsm.TaskEventStop)
				_ = t.lifecycle.Transition(fsm.EventExpire)
				return
			}
			_ = t.task.Transition(fsm.TaskEventRearm)
		}
	}
}
