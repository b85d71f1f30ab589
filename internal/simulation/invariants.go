package simulation

import (
	"fmt"
	"sort"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// Invariant is a property that must always hold true of a Simulator run.
type Invariant func(*Simulator) (bool, string)

// InvariantChecker tracks and validates system invariants.
type InvariantChecker struct {
	invariants []NamedInvariant
	violations []InvariantViolation
}

// NamedInvariant pairs an invariant with its name.
type NamedInvariant struct {
	Name      string
	Invariant Invariant
}

// InvariantViolation records when an invariant fails.
type InvariantViolation struct {
	Name    string
	Message string
	Now     clock.Instant
	Seed    int64
}

// NewInvariantChecker creates a checker registered with the universal
// properties every advance_time/set_timer/cancel sequence must satisfy.
func NewInvariantChecker() *InvariantChecker {
	ic := &InvariantChecker{
		invariants: make([]NamedInvariant, 0),
		violations: make([]InvariantViolation, 0),
	}

	ic.Register("event_order", EventOrderInvariant)
	ic.Register("timer_count_consistency", TimerCountConsistencyInvariant)
	ic.Register("no_duplicate_names", NoDuplicateNamesInvariant)
	ic.Register("now_monotonic", NowMonotonicInvariant)
	ic.Register("cancel_all_idempotent", CancelAllIdempotentInvariant)
	ic.Register("reset_clears_state", ResetClearsStateInvariant)

	return ic
}

// Register adds a named invariant to check.
func (ic *InvariantChecker) Register(name string, inv Invariant) {
	ic.invariants = append(ic.invariants, NamedInvariant{Name: name, Invariant: inv})
}

// CheckAll runs all registered invariants against sim, returning whether
// every one held.
func (ic *InvariantChecker) CheckAll(sim *Simulator) bool {
	allPass := true

	for _, named := range ic.invariants {
		pass, message := named.Invariant(sim)
		if !pass {
			allPass = false
			ic.violations = append(ic.violations, InvariantViolation{
				Name:    named.Name,
				Message: message,
				Now:     sim.Now(),
				Seed:    sim.Seed(),
			})
		}
	}

	return allPass
}

// Violations returns all recorded violations across every CheckAll call.
func (ic *InvariantChecker) Violations() []InvariantViolation {
	return ic.violations
}

// Report prints invariant check results.
func (ic *InvariantChecker) Report() {
	fmt.Printf("\n=== Invariant Check Report ===\n")
	fmt.Printf("Total Checks: %d\n", len(ic.invariants))
	fmt.Printf("Violations: %d\n", len(ic.violations))

	if len(ic.violations) > 0 {
		fmt.Printf("\nViolations:\n")
		for _, v := range ic.violations {
			fmt.Printf("  - %s: %s\n", v.Name, v.Message)
			fmt.Printf("    now=%d seed=%d\n", v.Now, v.Seed)
		}
	} else {
		fmt.Printf("all invariants passed\n")
	}
	fmt.Printf("\n")
}

// -------------------------------------------------------------------
// Universal invariants
// -------------------------------------------------------------------

// EventOrderInvariant: the events produced by the most recent AdvanceTo
// are sorted by (ts_event, name, id), per spec Section 8's ordering
// property.
func EventOrderInvariant(sim *Simulator) (bool, string) {
	events := sim.LastEvents()
	if !sort.SliceIsSorted(events, func(i, j int) bool { return events[i].Less(events[j]) }) {
		return false, "events from AdvanceTo are not sorted by (ts_event, name, id)"
	}
	return true, ""
}

// TimerCountConsistencyInvariant: timer_count equals the number of
// names currently installed and active.
func TimerCountConsistencyInvariant(sim *Simulator) (bool, string) {
	names := sim.TimerNames()
	count := sim.TimerCount()
	if len(names) != count {
		return false, fmt.Sprintf("timer_count=%d but timer_names returned %d entries", count, len(names))
	}
	return true, ""
}

// NoDuplicateNamesInvariant: re-registering a name replaces but never
// duplicates it in timer_names.
func NoDuplicateNamesInvariant(sim *Simulator) (bool, string) {
	seen := make(map[clock.TimerName]bool)
	for _, n := range sim.TimerNames() {
		if seen[n] {
			return false, fmt.Sprintf("duplicate timer name in timer_names: %s", n)
		}
		seen[n] = true
	}
	return true, ""
}

// NowMonotonicInvariant: now() is monotonic non-decreasing across any
// interleaving of reads.
func NowMonotonicInvariant(sim *Simulator) (bool, string) {
	if sim.Now() < sim.prevNow {
		return false, fmt.Sprintf("now() went backwards: %d -> %d", sim.prevNow, sim.Now())
	}
	return true, ""
}

// CancelAllIdempotentInvariant: a second cancel_all is a no-op and does
// not error or change state.
func CancelAllIdempotentInvariant(sim *Simulator) (bool, string) {
	sim.CancelAll()
	if sim.TimerCount() != 0 {
		return false, fmt.Sprintf("timer_count=%d after cancel_all", sim.TimerCount())
	}
	sim.CancelAll()
	if sim.TimerCount() != 0 {
		return false, "second cancel_all changed timer_count"
	}
	return true, ""
}

// ResetClearsStateInvariant: reset() followed by timer_count()==0 and
// timer_names().is_empty().
func ResetClearsStateInvariant(sim *Simulator) (bool, string) {
	sim.Reset()
	if sim.TimerCount() != 0 {
		return false, fmt.Sprintf("timer_count=%d after reset", sim.TimerCount())
	}
	if len(sim.TimerNames()) != 0 {
		return false, fmt.Sprintf("timer_names has %d entries after reset", len(sim.TimerNames()))
	}
	return true, ""
}

// -------------------------------------------------------------------
// Helper functions
// -------------------------------------------------------------------

// CheckInvariant checks a single invariant and panics if it fails.
func CheckInvariant(sim *Simulator, name string, inv Invariant) {
	pass, message := inv(sim)
	if !pass {
		panic(fmt.Sprintf("invariant %q violated: %s (seed: %d)", name, message, sim.Seed()))
	}
}

// MustHold asserts an invariant holds, panicking if not.
func MustHold(sim *Simulator, inv Invariant, context string) {
	pass, message := inv(sim)
	if !pass {
		panic(fmt.Sprintf("invariant violated in %s: %s (seed: %d)", context, message, sim.Seed()))
	}
}
