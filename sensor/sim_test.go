// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package sensor_test

import (
	"context"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/alx-cc/industrial-sensor-sim/internal/wallclock"
	"github.com/alx-cc/industrial-sensor-sim/sensor"
	"github.com/stretchr/testify/require"
)

// stepClock advances by a fixed step on every Now call, making waveform time
// fully deterministic.
type stepClock struct {
	now  time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{
		now:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		step: step,
	}
}

func (c *stepClock) Now() time.Time {
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

func (c *stepClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	return time.After(0)
}

func (c *stepClock) NewTimer(d time.Duration) wallclock.Timer {
	return wallclock.Instance.NewTimer(0)
}

func (c *stepClock) WithDeadlineCause(
	parent context.Context,
	deadline time.Time,
	cause error,
) (context.Context, context.CancelFunc) {
	return context.WithCancel(parent)
}

func TestReadDeterministicUnderPinnedClockAndSeed(t *testing.T) {
	cfg := sensor.DefaultConfig()

	a := sensor.NewSim(cfg, newStepClock(100*time.Millisecond), rand.New(rand.NewSource(42)))
	b := sensor.NewSim(cfg, newStepClock(100*time.Millisecond), rand.New(rand.NewSource(42)))

	for n := 0; n < 100; n++ {
		sa, sb := a.Read(), b.Read()
		require.Equal(t, sa.TemperatureC, sb.TemperatureC)
		require.Equal(t, sa.PressureKPa, sb.PressureKPa)
		require.Equal(t, sa.TS, sb.TS)
	}
}

func TestReadPureSineWithoutNoise(t *testing.T) {
	cfg := sensor.DefaultConfig()
	cfg.NoiseFraction = 0

	clock := newStepClock(100 * time.Millisecond)
	sim := sensor.NewSim(cfg, clock, rand.New(rand.NewSource(1)))

	// NewSim consumed one tick for time zero, so the k-th read sees
	// t = (k+1) * step.
	for k := 0; k < 50; k++ {
		s := sim.Read()
		tSec := float64(k+1) * 0.1

		temp := cfg.BaseTempC +
			cfg.TempAmpC*math.Sin(2*math.Pi*cfg.TempFreqHz*tSec)
		press := cfg.BasePressureKPa +
			cfg.PressureAmpKPa*math.Sin(
				2*math.Pi*cfg.PressureFreqHz*tSec+cfg.PressurePhaseRad,
			) +
			cfg.CorrKPaPerC*(temp-cfg.BaseTempC)

		require.InDelta(t, temp, s.TemperatureC, 1e-9, "read %d", k)
		require.InDelta(t, press, s.PressureKPa, 1e-9, "read %d", k)
	}
}

func TestReadNoiseStaysBounded(t *testing.T) {
	cfg := sensor.DefaultConfig()
	sim := sensor.NewSim(cfg, newStepClock(time.Millisecond), rand.New(rand.NewSource(7)))

	bound := cfg.TempAmpC * (1 + cfg.NoiseFraction)
	for n := 0; n < 1000; n++ {
		s := sim.Read()
		require.LessOrEqual(t, math.Abs(s.TemperatureC-cfg.BaseTempC), bound)
	}
}

func TestNewSimDefaults(t *testing.T) {
	sim := sensor.NewSim(sensor.DefaultConfig(), nil, nil)
	s := sim.Read()
	require.False(t, s.TS.IsZero())
}
