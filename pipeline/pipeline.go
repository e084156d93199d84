// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package pipeline moves measurement samples from a single producing
// goroutine to a single consuming goroutine over a lock-free bounded ring,
// applies a windowed smoothing filter to each measured quantity, and hands
// the result to an external sink.
package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alx-cc/industrial-sensor-sim/internal/log"
	"github.com/alx-cc/industrial-sensor-sim/ring"
	"github.com/alx-cc/industrial-sensor-sim/window"
)

type (
	// Sample is one measurement record. It is copied by value across the
	// producer/consumer boundary and holds no internal pointers.
	Sample struct {
		// TS is the capture time from the pipeline's clock.
		TS time.Time

		// TemperatureC is the measured temperature in degrees Celsius.
		TemperatureC float64

		// PressureKPa is the measured pressure in kilopascals.
		PressureKPa float64
	}

	// Source yields one sample per call. It is expected to be cheap and
	// non-blocking relative to the sampling period.
	Source interface {
		Read() Sample
	}

	// SourceFunc adapts a function to the Source interface.
	SourceFunc func() Sample

	// Sink receives one formatted record per consumed sample. Delivery is
	// fire-and-forget; a returned error is counted and logged but never
	// stops or slows the pipeline.
	Sink interface {
		Dispatch(ctx context.Context, payload []byte) error
	}

	// SinkFunc adapts a function to the Sink interface.
	SinkFunc func(ctx context.Context, payload []byte) error

	// Pipeline owns the ring buffer and the two smoothing filters and runs
	// the producer and consumer loops. A pipeline may be run once at a time;
	// a completed run may be started again.
	Pipeline struct {
		source Source
		sink   Sink

		buf      *ring.Buffer[Sample]
		tempAvg  *window.MovingAverage
		pressAvg *window.MovingAverage

		// Consumer-owned scratch for record formatting, reused across
		// dispatches to keep the consumer loop allocation-free.
		scratch []byte

		config Config
		state  atomic.Int32
		stats  runStats

		log logger
	}

	// Stats is a snapshot of the pipeline's run counters.
	Stats struct {
		// Produced is the number of samples successfully pushed.
		Produced uint64

		// Dropped is the number of samples rejected by a full ring. Always
		// zero under the DropOldest policy, where overwritten samples are
		// not individually counted.
		Dropped uint64

		// Consumed is the number of samples popped and smoothed.
		Consumed uint64

		// Published is the number of records accepted by the sink.
		Published uint64

		// PublishFailures is the number of records the sink returned an
		// error for.
		PublishFailures uint64
	}

	runStats struct {
		produced        atomic.Uint64
		dropped         atomic.Uint64
		consumed        atomic.Uint64
		published       atomic.Uint64
		publishFailures atomic.Uint64
	}
)

// Read implements Source.
func (f SourceFunc) Read() Sample { return f() }

// Dispatch implements Sink.
func (f SinkFunc) Dispatch(ctx context.Context, payload []byte) error {
	return f(ctx, payload)
}

// State indicates the current state of a pipeline run.
type State int32

const (
	// Idle indicates no run is in progress.
	Idle State = iota

	// Running indicates both loops are active.
	Running

	// Draining indicates the producer has emitted its configured count and
	// the consumer is still working off the ring.
	Draining

	// Terminated indicates the most recent run has finished. The pipeline
	// returns to Idle when Run is called again.
	Terminated
)

// New constructs a pipeline connecting source to sink with user options.
func New(source Source, sink Sink, opt ...Option) (*Pipeline, error) {
	if source == nil {
		return nil, &InvalidArgumentError{message: "source must not be nil"}
	}
	if sink == nil {
		return nil, &InvalidArgumentError{message: "sink must not be nil"}
	}

	p := &Pipeline{
		source: source,
		sink:   sink,
		config: DefaultConfig(),
	}
	for _, o := range opt {
		o(p)
	}

	buf, err := ring.New[Sample](p.config.RingCapacity, p.config.RingPolicy)
	if err != nil {
		return nil, err
	}
	p.buf = buf

	p.tempAvg = window.NewMovingAverage(p.config.MaxWindow)
	p.pressAvg = window.NewMovingAverage(p.config.MaxWindow)
	p.SetWindow(p.config.Window)

	p.scratch = make([]byte, 0, 64)
	p.log.Logger = log.Wrap(p.config.Logger)
	return p, nil
}

// SetWindow reconfigures the effective smoothing window on both filters,
// clamped to [1, MaxWindow]. All accumulated smoothing state is cleared. It
// must not be called while a run is in progress.
func (p *Pipeline) SetWindow(n uint32) {
	p.tempAvg.SetWindow(n)
	p.pressAvg.SetWindow(n)
}

// Window returns the current effective smoothing window.
func (p *Pipeline) Window() uint32 {
	return p.tempAvg.Window()
}

// State returns the state of the current run.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Stats returns a snapshot of the run counters. Counters reset when a new
// run starts.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Produced:        p.stats.produced.Load(),
		Dropped:         p.stats.dropped.Load(),
		Consumed:        p.stats.consumed.Load(),
		Published:       p.stats.published.Load(),
		PublishFailures: p.stats.publishFailures.Load(),
	}
}

// Run executes one pipeline run: the producer loop emits SampleCount samples
// at SamplePeriod cadence while the consumer loop drains the ring, smooths
// and dispatches. Run returns when the consumer has consumed SampleCount
// samples, the consumer deadline elapses, or ctx is canceled, whichever
// comes first. The deadline exit is a normal outcome and returns nil; only
// cancellation of ctx is reported as an error.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.state.CompareAndSwap(int32(Idle), int32(Running)) &&
		!p.state.CompareAndSwap(int32(Terminated), int32(Running)) {
		return &RunStateError{State: p.State()}
	}

	p.stats.produced.Store(0)
	p.stats.dropped.Store(0)
	p.stats.consumed.Store(0)
	p.stats.published.Store(0)
	p.stats.publishFailures.Store(0)
	p.buf.Clear()
	p.tempAvg.Reset()
	p.pressAvg.Reset()

	p.log.start(ctx, p.config)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		p.produce(ctx)
		p.state.CompareAndSwap(int32(Running), int32(Draining))
	}()
	go func() {
		defer wg.Done()
		p.consume(ctx)
	}()
	wg.Wait()

	p.state.Store(int32(Terminated))
	p.log.finish(ctx, p.Stats())
	return ctx.Err()
}

// produce reads one sample per period and pushes it onto the ring. The sleep
// targets an absolute next-deadline accumulator so that sampling cadence does
// not drift under processing jitter.
func (p *Pipeline) produce(ctx context.Context) {
	clock := p.config.Clock
	next := clock.Now().Add(p.config.SamplePeriod)

	for i := uint64(0); i < p.config.SampleCount; i++ {
		s := p.source.Read()
		if p.buf.TryPush(s) {
			p.stats.produced.Add(1)
		} else {
			p.stats.dropped.Add(1)
			p.log.drop(ctx, s)
		}

		if i == p.config.SampleCount-1 {
			break
		}

		if wait := next.Sub(clock.Now()); wait > 0 {
			select {
			case <-clock.After(wait):
			case <-ctx.Done():
				return
			}
		}
		next = next.Add(p.config.SamplePeriod)
	}
}

// consume drains the ring, smooths each quantity and dispatches the record.
// An empty ring backs off for the fixed idle interval to bound CPU usage of
// the poll. The loop is race-tolerant: it exits on its deadline even if the
// producer stalls and fewer samples arrive than requested.
func (p *Pipeline) consume(ctx context.Context) {
	clock := p.config.Clock
	deadline := clock.Now().Add(p.config.Deadline)
	ctx, cancel := clock.WithDeadlineCause(ctx, deadline, errConsumerDeadline)
	defer cancel()

	for consumed := uint64(0); consumed < p.config.SampleCount; {
		var s Sample
		if !p.buf.TryPop(&s) {
			select {
			case <-clock.After(p.config.IdleBackoff):
				continue
			case <-ctx.Done():
				return
			}
		}

		smoothedTemp := p.tempAvg.Push(s.TemperatureC)
		smoothedPress := p.pressAvg.Push(s.PressureKPa)
		consumed = p.stats.consumed.Add(1)

		p.scratch = AppendRecord(p.scratch[:0], s, smoothedTemp, smoothedPress)
		if err := p.sink.Dispatch(ctx, p.scratch); err != nil {
			p.stats.publishFailures.Add(1)
			p.log.publishFailure(ctx, err)
		} else {
			p.stats.published.Add(1)
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

type logger struct{ log.Logger }

func (l *logger) start(ctx context.Context, c Config) {
	l.Log(ctx, slog.LevelInfo, "pipeline run starting",
		slog.Uint64("samples", c.SampleCount),
		slog.Duration("period", c.SamplePeriod),
		slog.Uint64("window", uint64(c.Window)),
		slog.Uint64("ring_capacity", uint64(c.RingCapacity)),
	)
}

func (l *logger) finish(ctx context.Context, s Stats) {
	l.Log(ctx, slog.LevelInfo, "pipeline run finished",
		slog.Uint64("produced", s.Produced),
		slog.Uint64("dropped", s.Dropped),
		slog.Uint64("consumed", s.Consumed),
		slog.Uint64("published", s.Published),
		slog.Uint64("publish_failures", s.PublishFailures),
	)
}

func (l *logger) drop(ctx context.Context, s Sample) {
	l.Log(ctx, slog.LevelDebug, "ring full, sample dropped",
		slog.Time("ts", s.TS),
	)
}

func (l *logger) publishFailure(ctx context.Context, err error) {
	l.Log(ctx, slog.LevelWarn, "sink dispatch failed",
		slog.String("error", err.Error()),
	)
}
