package clock_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

func TestLiveClock_AlertFiresOnce(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	var fired int
	var mu sync.Mutex
	done := make(chan struct{})

	alertAt := clock.NowFromTime(time.Now()).Add(clock.Interval(20 * time.Millisecond))
	require.NoError(t, c.SetAlert("once", alertAt, clock.CallbackFunc(func(clock.TimeEvent) {
		mu.Lock()
		fired++
		mu.Unlock()
		close(done)
	}), false))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("alert did not fire in time")
	}

	time.Sleep(50 * time.Millisecond) // let the timer finish tearing down
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, fired)
}

func TestLiveClock_PeriodicTimerFiresRepeatedly(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	var count int
	var mu sync.Mutex
	threshold := make(chan struct{})
	var once sync.Once

	require.NoError(t, c.SetTimer("tick", clock.Interval(10*time.Millisecond), 0, nil, clock.CallbackFunc(func(clock.TimeEvent) {
		mu.Lock()
		count++
		n := count
		mu.Unlock()
		if n >= 3 {
			once.Do(func() { close(threshold) })
		}
	}), false))

	select {
	case <-threshold:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic timer did not fire enough times")
	}

	c.Cancel("tick")
}

func TestLiveClock_CancelStopsFutureFirings(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	var count int32
	require.NoError(t, c.SetTimer("t", clock.Interval(5*time.Millisecond), 0, nil, clock.CallbackFunc(func(clock.TimeEvent) {
		count++
	}), false))

	time.Sleep(15 * time.Millisecond)
	c.Cancel("t")
	observed := count
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, observed, count)
}

func TestLiveClock_EventStream(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	alertAt := clock.NowFromTime(time.Now()).Add(clock.Interval(10 * time.Millisecond))
	require.NoError(t, c.SetAlert("stream-alert", alertAt, clock.CallbackFunc(func(clock.TimeEvent) {}), false))

	stream := clock.NewEventStream(c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	handler, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, clock.TimerName("stream-alert"), handler.Event.Name)
}

func TestLiveClock_TimerNamesAndCount(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	require.NoError(t, c.SetTimer("a", clock.Interval(time.Hour), 0, nil, clock.CallbackFunc(func(clock.TimeEvent) {}), false))
	require.NoError(t, c.SetTimer("b", clock.Interval(time.Hour), 0, nil, clock.CallbackFunc(func(clock.TimeEvent) {}), false))

	assert.Equal(t, 2, c.TimerCount())
	assert.ElementsMatch(t, []clock.TimerName{"a", "b"}, c.TimerNames())
}

func TestLiveClock_SetTimerWithNoCallbackAvailableIsRejected(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	err := c.SetTimer("orphan", clock.Interval(time.Hour), 0, nil, nil, false)
	require.Error(t, err)

	var cfg *clock.ConfigError
	assert.ErrorAs(t, err, &cfg)
	assert.Equal(t, 0, c.TimerCount())
}

func TestLiveClock_SetAlertWithEmptyNameIsRejected(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	alertAt := clock.NowFromTime(time.Now()).Add(clock.Interval(time.Hour))
	err := c.SetAlert("", alertAt, clock.CallbackFunc(func(clock.TimeEvent) {}), false)
	require.Error(t, err)

	var cfg *clock.ConfigError
	assert.ErrorAs(t, err, &cfg)
}

func TestLiveClock_DefaultHandlerSatisfiesValidation(t *testing.T) {
	c := clock.NewLiveClock(nil)
	defer c.Close()

	c.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {}))
	require.NoError(t, c.SetTimer("covered", clock.Interval(time.Hour), 0, nil, nil, false))
	assert.Equal(t, 1, c.TimerCount())
}
