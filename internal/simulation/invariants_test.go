package simulation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

func TestEventOrderInvariant_Holds(t *testing.T) {
	sim := NewSimulator(1)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))
	require.NoError(t, sim.SetTimer("b", 2000, 0, nil, false))

	sim.AdvanceTo(2000)

	ok, msg := EventOrderInvariant(sim)
	assert.True(t, ok, msg)
}

func TestTimerCountConsistencyInvariant_Holds(t *testing.T) {
	sim := NewSimulator(2)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))
	require.NoError(t, sim.SetTimer("b", 1000, 0, nil, false))

	ok, msg := TimerCountConsistencyInvariant(sim)
	assert.True(t, ok, msg)
	assert.Equal(t, 2, sim.TimerCount())
}

func TestNoDuplicateNamesInvariant_ReplacesRatherThanDuplicates(t *testing.T) {
	sim := NewSimulator(3)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))
	require.NoError(t, sim.SetTimer("a", 2000, 0, nil, false))

	ok, msg := NoDuplicateNamesInvariant(sim)
	assert.True(t, ok, msg)
	assert.Equal(t, 1, sim.TimerCount())
}

func TestNowMonotonicInvariant_HoldsAcrossAdvances(t *testing.T) {
	sim := NewSimulator(4)
	sim.AdvanceTo(100)
	sim.AdvanceTo(200)

	ok, msg := NowMonotonicInvariant(sim)
	assert.True(t, ok, msg)
}

func TestCancelAllIdempotentInvariant_Holds(t *testing.T) {
	sim := NewSimulator(5)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))

	ok, msg := CancelAllIdempotentInvariant(sim)
	assert.True(t, ok, msg)
}

func TestResetClearsStateInvariant_Holds(t *testing.T) {
	sim := NewSimulator(6)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))

	ok, msg := ResetClearsStateInvariant(sim)
	assert.True(t, ok, msg)
}

func TestInvariantChecker_CheckAllRecordsViolations(t *testing.T) {
	ic := NewInvariantChecker()
	sim := NewSimulator(7)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))

	assert.True(t, ic.CheckAll(sim))
	assert.Empty(t, ic.Violations())
}

func TestInvariantChecker_ReportDoesNotPanic(t *testing.T) {
	ic := NewInvariantChecker()
	sim := NewSimulator(8)
	ic.CheckAll(sim)
	ic.Report()
}

func TestMustHold_PanicsOnViolation(t *testing.T) {
	sim := NewSimulator(9)
	alwaysFails := func(*Simulator) (bool, string) { return false, "deliberate failure" }

	assert.Panics(t, func() {
		MustHold(sim, alwaysFails, "test context")
	})
}

func TestSimulator_EndToEndSingleAlert(t *testing.T) {
	sim := NewSimulator(10)
	require.NoError(t, sim.SetAlert("a", 1000, false))

	events := sim.AdvanceTo(1000)

	require.Len(t, events, 1)
	assert.Equal(t, clock.TimerName("a"), events[0].Name)
	assert.Equal(t, clock.Instant(1000), events[0].TsEvent)
	assert.Equal(t, 0, sim.TimerCount())
}

func TestSimulator_EndToEndPeriodic(t *testing.T) {
	sim := NewSimulator(11)
	require.NoError(t, sim.SetTimer("p", 1000, 0, nil, false))

	events := sim.AdvanceTo(2500)
	require.Len(t, events, 2)
	assert.Equal(t, clock.Instant(1000), events[0].TsEvent)
	assert.Equal(t, clock.Instant(2000), events[1].TsEvent)

	next, ok := sim.clock.NextFire("p")
	require.True(t, ok)
	assert.Equal(t, clock.Instant(3000), next)
}

func TestSimulator_EndToEndTwoTimersCoFiring(t *testing.T) {
	sim := NewSimulator(12)
	require.NoError(t, sim.SetTimer("a", 1000, 0, nil, false))
	require.NoError(t, sim.SetTimer("b", 2000, 0, nil, false))

	events := sim.AdvanceTo(2000)
	require.Len(t, events, 3)
	assert.Equal(t, clock.TimerName("a"), events[0].Name)
	assert.Equal(t, clock.Instant(1000), events[0].TsEvent)
	assert.Equal(t, clock.TimerName("a"), events[1].Name)
	assert.Equal(t, clock.Instant(2000), events[1].TsEvent)
	assert.Equal(t, clock.TimerName("b"), events[2].Name)
	assert.Equal(t, clock.Instant(2000), events[2].TsEvent)
}

func TestSimulator_EndToEndStopBeforeStartRejected(t *testing.T) {
	sim := NewSimulator(13)
	stop := clock.Instant(500)
	err := sim.SetTimer("z", 100, 1000, &stop, false)
	require.Error(t, err)
	assert.Equal(t, 0, sim.TimerCount())
}
