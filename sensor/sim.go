// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package sensor provides a simulated industrial sensor producing correlated
// temperature and pressure readings, usable as a pipeline source.
package sensor

import (
	"math"
	"math/rand"
	"time"

	"github.com/alx-cc/industrial-sensor-sim/internal/wallclock"
	"github.com/alx-cc/industrial-sensor-sim/pipeline"
)

// Config groups the signal-synthesis settings. Units: Hz, degrees Celsius,
// kilopascals, radians.
type Config struct {
	// PressureFreqHz is the frequency at which pressure readings oscillate.
	PressureFreqHz float64

	// TempFreqHz is the frequency at which temperature readings oscillate.
	TempFreqHz float64

	// PressureAmpKPa is the pressure oscillation amplitude.
	PressureAmpKPa float64

	// TempAmpC is the temperature oscillation amplitude.
	TempAmpC float64

	// NoiseFraction scales uniform noise as a fraction of each amplitude,
	// e.g. 0.15 adds noise within ±15% of the amplitude.
	NoiseFraction float64

	// BaseTempC is the ambient baseline temperature.
	BaseTempC float64

	// BasePressureKPa is the nominal system pressure.
	BasePressureKPa float64

	// PressurePhaseRad de-syncs the pressure wave from the temperature wave.
	PressurePhaseRad float64

	// CorrKPaPerC couples pressure to the temperature deviation, so that a
	// temperature drift pulls pressure along without strict proportionality.
	CorrKPaPerC float64
}

// DefaultConfig returns settings that produce a plausible demo signal.
func DefaultConfig() Config {
	return Config{
		PressureFreqHz:   0.8333,
		TempFreqHz:       0.1,
		PressureAmpKPa:   15.0,
		TempAmpC:         400.0,
		NoiseFraction:    0.15,
		BaseTempC:        27.5,
		BasePressureKPa:  1400.0,
		PressurePhaseRad: 0.7,
		CorrKPaPerC:      0.5,
	}
}

// Sim synthesizes sensor samples at call time; no I/O and no allocation per
// read. The clock and random source are injected so that tests can pin both;
// time zero for the waveforms is captured at construction.
type Sim struct {
	config Config
	clock  wallclock.WallClock
	rng    *rand.Rand
	t0     time.Time
}

// NewSim constructs a simulated sensor. A nil clock falls back to the wall
// clock; a nil rng is seeded from it.
func NewSim(config Config, clock wallclock.WallClock, rng *rand.Rand) *Sim {
	if clock == nil {
		clock = wallclock.Instance
	}
	if rng == nil {
		// #nosec G404
		rng = rand.New(rand.NewSource(clock.Now().UnixNano()))
	}
	return &Sim{
		config: config,
		clock:  clock,
		rng:    rng,
		t0:     clock.Now(),
	}
}

// Read generates one sample at the current clock time. It implements
// pipeline.Source and must be called from a single goroutine.
func (s *Sim) Read() pipeline.Sample {
	now := s.clock.Now()
	t := now.Sub(s.t0).Seconds()
	cfg := &s.config

	// Temperature: slow variation around the baseline.
	temp := s.noisySine(t, cfg.TempFreqHz, cfg.TempAmpC, cfg.BaseTempC, 0)

	// Pressure: faster wave plus partial correlation to the temperature
	// deviation.
	fast := s.noisySine(
		t, cfg.PressureFreqHz, cfg.PressureAmpKPa, 0, cfg.PressurePhaseRad,
	)
	pressure := cfg.BasePressureKPa + fast + cfg.CorrKPaPerC*(temp-cfg.BaseTempC)

	return pipeline.Sample{
		TS:           now,
		TemperatureC: temp,
		PressureKPa:  pressure,
	}
}

func (s *Sim) noisySine(t, freq, amplitude, offset, phase float64) float64 {
	noiseRange := amplitude * s.config.NoiseFraction
	noise := (s.rng.Float64()*2 - 1) * noiseRange
	return offset + amplitude*math.Sin(2*math.Pi*freq*t+phase) + noise
}
