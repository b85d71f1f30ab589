package simulation

import (
	"fmt"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// Simulator drives a clock.SimClock through randomized sequences of
// timer registrations and advances, recording enough state that
// InvariantChecker can assert the universal properties every sequence
// must satisfy regardless of which random choices produced it.
type Simulator struct {
	clock  *clock.SimClock
	rand   *DeterministicRand
	seed   int64
	faults *ClockFaultInjector

	prevNow    clock.Instant
	lastEvents []clock.TimeEvent
	dispatched int
}

// NewSimulator creates a Simulator seeded for reproducibility, with its
// SimClock starting at instant 0. A default handler is registered up
// front — every timer this harness installs passes a nil per-call
// callback, so without one SetTimer/SetAlert would reject every
// registration as undeliverable before the harness ever got to run.
func NewSimulator(seed int64) *Simulator {
	r := NewDeterministicRand(seed)
	s := &Simulator{
		clock:  clock.NewSimClock(0),
		rand:   r,
		seed:   seed,
		faults: NewClockFaultInjector(r),
	}
	s.clock.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {
		s.dispatched++
	}))
	return s
}

// Seed returns the seed this run was constructed with.
func (s *Simulator) Seed() int64 { return s.seed }

// Now returns the SimClock's current instant.
func (s *Simulator) Now() clock.Instant { return s.clock.NowNs() }

// Rand exposes the underlying deterministic source for callers that want
// to make their own randomized decisions consistent with this run's seed.
func (s *Simulator) Rand() *DeterministicRand { return s.rand }

// Faults exposes the fault injector driving this run's adversarial
// registration choices.
func (s *Simulator) Faults() *ClockFaultInjector { return s.faults }

// TimerNames returns the names of every timer currently active on the
// underlying SimClock.
func (s *Simulator) TimerNames() []clock.TimerName { return s.clock.TimerNames() }

// TimerCount returns the number of currently active timers.
func (s *Simulator) TimerCount() int { return s.clock.TimerCount() }

// LastEvents returns the events produced by the most recent AdvanceTo.
func (s *Simulator) LastEvents() []clock.TimeEvent { return s.lastEvents }

// DispatchedCount returns how many events have been resolved against a
// callback (via Dispatch) over the life of this Simulator.
func (s *Simulator) DispatchedCount() int { return s.dispatched }

// SetTimer installs a periodic timer on the SimClock with its arguments
// unchanged; fault-injected perturbation happens in RegisterRandomTimer.
func (s *Simulator) SetTimer(name clock.TimerName, interval clock.Interval, start clock.Instant, stop *clock.Instant, allowPast bool) error {
	return s.clock.SetTimer(name, interval, start, stop, nil, allowPast)
}

// SetAlert installs a one-shot alert.
func (s *Simulator) SetAlert(name clock.TimerName, alertTime clock.Instant, allowPast bool) error {
	return s.clock.SetAlert(name, alertTime, nil, allowPast)
}

// Cancel stops a single named timer.
func (s *Simulator) Cancel(name clock.TimerName) { s.clock.Cancel(name) }

// CancelAll stops every registered timer.
func (s *Simulator) CancelAll() { s.clock.CancelAll() }

// Reset clears all timers and callbacks, then reinstalls the default
// handler SetTimer/SetAlert depend on being present.
func (s *Simulator) Reset() {
	s.clock.Reset()
	s.clock.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {
		s.dispatched++
	}))
	s.lastEvents = nil
}

// AdvanceTo moves the SimClock forward to the given instant, recording
// both the produced events (for EventOrderInvariant) and the previous
// now (for NowMonotonicInvariant).
func (s *Simulator) AdvanceTo(to clock.Instant) []clock.TimeEvent {
	s.prevNow = s.clock.NowNs()
	events := s.clock.AdvanceTime(to)
	s.lastEvents = events
	return events
}

// Dispatch resolves the most recently produced events against the
// callback registry and invokes them, tracking how many were delivered.
// Relies on the default handler installed by NewSimulator/Reset.
func (s *Simulator) Dispatch() {
	for _, h := range s.clock.MatchHandlers(s.lastEvents) {
		h.Handle()
	}
}

// RandomTimerName returns a short pseudo-random timer name unique enough
// for a single simulation run.
func (s *Simulator) RandomTimerName() clock.TimerName {
	return clock.TimerName(fmt.Sprintf("t-%s", s.rand.String(6)))
}

// RandomInterval returns a random interval in [minNs, maxNs).
func (s *Simulator) RandomInterval(minNs, maxNs int64) clock.Interval {
	return clock.Interval(s.rand.Duration(minNs, maxNs))
}

// RegisterRandomTimer generates a randomized periodic timer and installs
// it, occasionally asking the fault injector to corrupt the spec into one
// that SetTimer is expected to reject (stop before start, zero interval).
// Returns the name attempted and the error SetTimer returned, if any.
func (s *Simulator) RegisterRandomTimer() (clock.TimerName, error) {
	name := s.RandomTimerName()
	interval := s.RandomInterval(1, 1000)
	start := s.clock.NowNs()

	if s.faults.ShouldInjectZeroInterval() {
		interval = 0
	}

	var stop *clock.Instant
	if start > 0 && s.faults.ShouldInjectStopBeforeStart() {
		bad := start - 1
		stop = &bad
	}

	err := s.SetTimer(name, interval, start, stop, false)
	return name, err
}
