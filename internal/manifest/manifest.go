// Package manifest loads a startup timer manifest (a YAML file naming
// timers to register before the HTTP API starts serving) and installs
// it onto a pkg/clock.Clock, reporting success or failure per timer.
package manifest

import (
	"fmt"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/Bucanero06/nautilus-clock/pkg/clock"
)

// TimerSpec describes a single timer to install at startup.
type TimerSpec struct {
	Name       string `yaml:"name"`
	IntervalNs uint64 `yaml:"interval_ns"`
	StartNs    uint64 `yaml:"start_ns,omitempty"` // 0 means "now", per clock.SetTimer's convention
	StopNs     uint64 `yaml:"stop_ns,omitempty"`  // 0 means "no stop"
	AllowPast  bool   `yaml:"allow_past,omitempty"`
}

// Manifest is the top-level YAML document shape.
type Manifest struct {
	Timers []TimerSpec `yaml:"timers"`
}

// Load reads and parses a manifest file from fs. An empty path is not
// an error: it returns an empty Manifest, since the manifest is
// optional.
func Load(fs afero.Fs, path string) (*Manifest, error) {
	if path == "" {
		return &Manifest{}, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %s: %w", path, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid manifest YAML: %w", err)
	}

	return &m, nil
}

// InstallResult reports the outcome of installing one TimerSpec.
type InstallResult struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// InstallResults is the aggregate outcome of Install.
type InstallResults struct {
	Total     int             `json:"total"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []InstallResult `json:"results"`
}

// Install registers every TimerSpec in m onto c without a callback, so
// each timer's events go to the clock's default handler; without one,
// SetTimer rejects the spec and it is reported as failed. Partial failure is reported,
// not returned as an error, so one malformed spec doesn't block the
// rest from installing.
func Install(c clock.Clock, m *Manifest) InstallResults {
	results := InstallResults{Total: len(m.Timers)}

	for _, spec := range m.Timers {
		err := installOne(c, spec)
		outcome := InstallResult{Name: spec.Name}
		if err != nil {
			outcome.Error = err.Error()
			results.Failed++
		} else {
			results.Succeeded++
		}
		results.Results = append(results.Results, outcome)
	}

	return results
}

func installOne(c clock.Clock, spec TimerSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("timer spec missing name")
	}
	if spec.IntervalNs == 0 {
		return fmt.Errorf("timer %q: interval_ns must be non-zero", spec.Name)
	}

	var stop *clock.Instant
	if spec.StopNs != 0 {
		s := clock.Instant(spec.StopNs)
		stop = &s
	}

	return c.SetTimer(
		clock.TimerName(spec.Name),
		clock.Interval(spec.IntervalNs),
		clock.Instant(spec.StartNs),
		stop,
		nil,
		spec.AllowPast,
	)
}

// Duration converts interval nanoseconds to a time.Duration, useful
// for logging a human-readable manifest summary.
func (s TimerSpec) Duration() time.Duration {
	return time.Duration(s.IntervalNs)
}
