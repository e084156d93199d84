// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package pipeline

import (
	"log/slog"
	"time"

	"github.com/alx-cc/industrial-sensor-sim/internal/wallclock"
	"github.com/alx-cc/industrial-sensor-sim/ring"
)

// Config holds the pipeline's configuration surface. The zero value is not
// usable; start from DefaultConfig.
type Config struct {
	// RingCapacity is the fixed slot count of the transport ring. Must be a
	// power of two and at least 2.
	RingCapacity uint32

	// RingPolicy selects the transport's overflow behavior.
	RingPolicy ring.Policy

	// MaxWindow is the fixed maximum smoothing window.
	MaxWindow uint32

	// Window is the initial effective smoothing window, clamped to
	// [1, MaxWindow].
	Window uint32

	// SamplePeriod is the producer's fixed sampling cadence.
	SamplePeriod time.Duration

	// SampleCount is the number of samples the producer emits and the
	// consumer targets per run.
	SampleCount uint64

	// Deadline bounds the consumer's run from its start; the consumer exits
	// when it elapses even if fewer than SampleCount samples arrived.
	Deadline time.Duration

	// IdleBackoff is the consumer's fixed poll interval on an empty ring.
	IdleBackoff time.Duration

	// Logger receives structured run logs. Nil disables logging.
	Logger *slog.Logger

	// Clock drives all pipeline timing. Defaults to the wall clock;
	// replaceable for tests.
	Clock wallclock.WallClock
}

// DefaultConfig returns the configuration used before options are applied.
func DefaultConfig() Config {
	return Config{
		RingCapacity: 256,
		RingPolicy:   ring.RejectOnFull,
		MaxWindow:    256,
		Window:       8,
		SamplePeriod: 100 * time.Millisecond,
		SampleCount:  600,
		Deadline:     2 * time.Minute,
		IdleBackoff:  5 * time.Millisecond,
		Clock:        wallclock.Instance,
	}
}

// Option configures a pipeline at construction.
type Option func(*Pipeline)

// WithRingCapacity sets the transport ring's slot count.
func WithRingCapacity(capacity uint32) Option {
	return func(p *Pipeline) {
		p.config.RingCapacity = capacity
	}
}

// WithRingPolicy sets the transport's overflow policy.
func WithRingPolicy(policy ring.Policy) Option {
	return func(p *Pipeline) {
		p.config.RingPolicy = policy
	}
}

// WithMaxWindow sets the fixed maximum smoothing window.
func WithMaxWindow(capacity uint32) Option {
	return func(p *Pipeline) {
		p.config.MaxWindow = capacity
	}
}

// WithWindow sets the initial effective smoothing window.
func WithWindow(n uint32) Option {
	return func(p *Pipeline) {
		p.config.Window = n
	}
}

// WithSamplePeriod sets the producer's sampling cadence.
func WithSamplePeriod(d time.Duration) Option {
	return func(p *Pipeline) {
		p.config.SamplePeriod = d
	}
}

// WithSampleCount sets the per-run sample count.
func WithSampleCount(n uint64) Option {
	return func(p *Pipeline) {
		p.config.SampleCount = n
	}
}

// WithDeadline sets the consumer's wall-clock deadline per run.
func WithDeadline(d time.Duration) Option {
	return func(p *Pipeline) {
		p.config.Deadline = d
	}
}

// WithIdleBackoff sets the consumer's poll interval on an empty ring.
func WithIdleBackoff(d time.Duration) Option {
	return func(p *Pipeline) {
		p.config.IdleBackoff = d
	}
}

// WithLogger sets the logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.config.Logger = logger
	}
}

// WithClock replaces the pipeline's clock; intended for tests.
func WithClock(clock wallclock.WallClock) Option {
	return func(p *Pipeline) {
		p.config.Clock = clock
	}
}
