package manifest_test

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bucanero06/nautilus-clock/internal/manifest"
	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

func TestLoad_EmptyPathReturnsEmptyManifest(t *testing.T) {
	m, err := manifest.Load(afero.NewMemMapFs(), "")
	require.NoError(t, err)
	assert.Empty(t, m.Timers)
}

func TestLoad_ParsesYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	yamlDoc := `
timers:
  - name: heartbeat
    interval_ns: 1000000000
  - name: session-expiry
    interval_ns: 60000000000
    start_ns: 500
    stop_ns: 600000000000
    allow_past: true
`
	require.NoError(t, afero.WriteFile(fs, "manifest.yaml", []byte(yamlDoc), 0644))

	m, err := manifest.Load(fs, "manifest.yaml")
	require.NoError(t, err)
	require.Len(t, m.Timers, 2)
	assert.Equal(t, "heartbeat", m.Timers[0].Name)
	assert.Equal(t, uint64(1000000000), m.Timers[0].IntervalNs)
	assert.True(t, m.Timers[1].AllowPast)
}

func TestLoad_InvalidYAMLReturnsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.yaml", []byte("timers: [not a list of maps"), 0644))

	_, err := manifest.Load(fs, "bad.yaml")
	require.Error(t, err)
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	_, err := manifest.Load(afero.NewMemMapFs(), "does-not-exist.yaml")
	require.Error(t, err)
}

func TestInstall_RegistersEachTimer(t *testing.T) {
	c := clock.NewSimClock(1000)
	c.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {}))
	m := &manifest.Manifest{
		Timers: []manifest.TimerSpec{
			{Name: "a", IntervalNs: 100},
			{Name: "b", IntervalNs: 200, StartNs: 1000},
		},
	}

	results := manifest.Install(c, m)
	assert.Equal(t, 2, results.Total)
	assert.Equal(t, 2, results.Succeeded)
	assert.Equal(t, 0, results.Failed)
	assert.Equal(t, 2, c.TimerCount())
}

func TestInstall_ReportsPartialFailure(t *testing.T) {
	c := clock.NewSimClock(1000)
	c.RegisterDefaultHandler(clock.CallbackFunc(func(clock.TimeEvent) {}))
	m := &manifest.Manifest{
		Timers: []manifest.TimerSpec{
			{Name: "ok", IntervalNs: 100},
			{Name: "", IntervalNs: 100},
			{Name: "zero-interval", IntervalNs: 0},
		},
	}

	results := manifest.Install(c, m)
	assert.Equal(t, 3, results.Total)
	assert.Equal(t, 1, results.Succeeded)
	assert.Equal(t, 2, results.Failed)
	assert.Equal(t, 1, c.TimerCount())
}
