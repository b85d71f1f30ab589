package simulation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// TestFuzzSimulatorWithRandomTimers registers and advances through random
// timer sequences, checking every universal invariant after each advance.
// Reproduce a failure by re-running with CLOCKD_SIMULATION_SEED set to
// the seed reported in the failure message.
func TestFuzzSimulatorWithRandomTimers(t *testing.T) {
	seed := SeedFromEnv("CLOCKD_SIMULATION_SEED", 12345)
	t.Logf("[fuzz: random timers] seed=%d", seed)

	sim := NewSimulator(seed)
	ic := NewInvariantChecker()

	const timerCount = 20
	for i := 0; i < timerCount; i++ {
		name, err := sim.RegisterRandomTimer()
		if err != nil {
			t.Logf("registration rejected for %s: %v", name, err)
			continue
		}
	}

	require.NotZero(t, sim.TimerCount(), "expected at least one timer to register successfully")

	var now uint64
	for step := 0; step < 10; step++ {
		now += uint64(sim.RandomInterval(100, 500))
		sim.AdvanceTo(clock.Instant(now))

		if !ic.CheckAll(sim) {
			ic.Report()
			t.Fatalf("CLOCKD_SIMULATION_SEED=%d: invariant violated at step %d", seed, step)
		}
	}
}
