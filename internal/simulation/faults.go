package simulation

import (
	"fmt"
	"sync"
)

// ClockFaultInjector drives deterministic, probability-gated adversarial
// choices during a simulation run: registering timers with invalid specs,
// duplicate names, or zero intervals, the way a fuzzer would mutate
// otherwise-valid inputs to exercise Clock's rejection paths.
type ClockFaultInjector struct {
	mu   sync.RWMutex
	rand *DeterministicRand

	StopBeforeStartProbability      float64
	ZeroIntervalProbability         float64
	DuplicateRegistrationProbability float64
	PastAlertProbability            float64
	RapidCancelProbability          float64

	StopBeforeStartCount      int
	ZeroIntervalCount         int
	DuplicateRegistrationCount int
	PastAlertCount            int
	RapidCancelCount          int

	Enabled bool
}

// NewClockFaultInjector creates a fault injector with conservative
// default probabilities, driven off the given deterministic source so a
// run is fully reproducible from its seed.
func NewClockFaultInjector(rand *DeterministicRand) *ClockFaultInjector {
	return &ClockFaultInjector{
		rand:    rand,
		Enabled: true,

		StopBeforeStartProbability:       0.05,
		ZeroIntervalProbability:          0.02,
		DuplicateRegistrationProbability: 0.10,
		PastAlertProbability:             0.05,
		RapidCancelProbability:           0.08,
	}
}

// SetAggressiveMode raises every fault probability for stress testing.
func (f *ClockFaultInjector) SetAggressiveMode() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.StopBeforeStartProbability = 0.20
	f.ZeroIntervalProbability = 0.10
	f.DuplicateRegistrationProbability = 0.30
	f.PastAlertProbability = 0.20
	f.RapidCancelProbability = 0.25
}

// ShouldInjectStopBeforeStart returns true if the next generated timer
// spec should have its stop instant set before its start instant.
func (f *ClockFaultInjector) ShouldInjectStopBeforeStart() bool {
	return f.roll(&f.StopBeforeStartCount, f.StopBeforeStartProbability)
}

// ShouldInjectZeroInterval returns true if the next generated periodic
// timer should use a zero interval.
func (f *ClockFaultInjector) ShouldInjectZeroInterval() bool {
	return f.roll(&f.ZeroIntervalCount, f.ZeroIntervalProbability)
}

// ShouldInjectDuplicateRegistration returns true if the next registration
// should reuse an already-active timer name instead of a fresh one.
func (f *ClockFaultInjector) ShouldInjectDuplicateRegistration() bool {
	return f.roll(&f.DuplicateRegistrationCount, f.DuplicateRegistrationProbability)
}

// ShouldInjectPastAlert returns true if the next alert should target an
// instant already behind the clock's current time.
func (f *ClockFaultInjector) ShouldInjectPastAlert() bool {
	return f.roll(&f.PastAlertCount, f.PastAlertProbability)
}

// ShouldInjectRapidCancel returns true if a freshly-registered timer
// should be cancelled again before the next advance.
func (f *ClockFaultInjector) ShouldInjectRapidCancel() bool {
	return f.roll(&f.RapidCancelCount, f.RapidCancelProbability)
}

func (f *ClockFaultInjector) roll(counter *int, probability float64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.Enabled {
		return false
	}
	if f.rand.Chance(probability) {
		*counter++
		return true
	}
	return false
}

// Stats returns fault injection statistics.
func (f *ClockFaultInjector) Stats() FaultStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return FaultStats{
		StopBeforeStartCount:       f.StopBeforeStartCount,
		ZeroIntervalCount:          f.ZeroIntervalCount,
		DuplicateRegistrationCount: f.DuplicateRegistrationCount,
		PastAlertCount:             f.PastAlertCount,
		RapidCancelCount:           f.RapidCancelCount,
		TotalFaults: f.StopBeforeStartCount + f.ZeroIntervalCount +
			f.DuplicateRegistrationCount + f.PastAlertCount + f.RapidCancelCount,
	}
}

// FaultStats tracks fault injection counts.
type FaultStats struct {
	StopBeforeStartCount       int
	ZeroIntervalCount          int
	DuplicateRegistrationCount int
	PastAlertCount             int
	RapidCancelCount           int
	TotalFaults                int
}

// FaultProfile is a named set of fault probabilities.
type FaultProfile struct {
	Name        string
	Description string

	StopBeforeStartProbability       float64
	ZeroIntervalProbability          float64
	DuplicateRegistrationProbability float64
	PastAlertProbability             float64
	RapidCancelProbability           float64
}

// ConservativeProfile returns a low-fault profile for basic testing.
func ConservativeProfile() FaultProfile {
	return FaultProfile{
		Name:        "conservative",
		Description: "low fault rates for basic resilience testing",

		StopBeforeStartProbability:       0.01,
		ZeroIntervalProbability:          0.01,
		DuplicateRegistrationProbability: 0.05,
		PastAlertProbability:             0.01,
		RapidCancelProbability:           0.02,
	}
}

// AggressiveProfile returns a high-fault profile for stress testing.
func AggressiveProfile() FaultProfile {
	return FaultProfile{
		Name:        "aggressive",
		Description: "high fault rates for stress testing",

		StopBeforeStartProbability:       0.10,
		ZeroIntervalProbability:          0.05,
		DuplicateRegistrationProbability: 0.20,
		PastAlertProbability:             0.10,
		RapidCancelProbability:           0.15,
	}
}

// ChaosProfile returns extreme fault rates to probe the system's limits.
func ChaosProfile() FaultProfile {
	return FaultProfile{
		Name:        "chaos",
		Description: "extreme fault rates to test absolute limits",

		StopBeforeStartProbability:       0.30,
		ZeroIntervalProbability:          0.15,
		DuplicateRegistrationProbability: 0.40,
		PastAlertProbability:             0.30,
		RapidCancelProbability:           0.25,
	}
}

// ApplyProfile configures a ClockFaultInjector with the given profile.
func (f *ClockFaultInjector) ApplyProfile(profile FaultProfile) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.StopBeforeStartProbability = profile.StopBeforeStartProbability
	f.ZeroIntervalProbability = profile.ZeroIntervalProbability
	f.DuplicateRegistrationProbability = profile.DuplicateRegistrationProbability
	f.PastAlertProbability = profile.PastAlertProbability
	f.RapidCancelProbability = profile.RapidCancelProbability
}

// Report prints fault injection statistics.
func (f *ClockFaultInjector) Report() {
	stats := f.Stats()
	fmt.Printf("\n=== Fault Injection Report ===\n")
	fmt.Printf("Total Faults: %d\n", stats.TotalFaults)
	fmt.Printf("  Stop before start: %d\n", stats.StopBeforeStartCount)
	fmt.Printf("  Zero interval: %d\n", stats.ZeroIntervalCount)
	fmt.Printf("  Duplicate registration: %d\n", stats.DuplicateRegistrationCount)
	fmt.Printf("  Past alert: %d\n", stats.PastAlertCount)
	fmt.Printf("  Rapid cancel: %d\n", stats.RapidCancelCount)
	fmt.Printf("\n")
}
