// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package window provides an O(1) windowed smoothing filter over a scalar
// stream, with a runtime-adjustable effective window and a fixed maximum
// capacity.
package window

// MovingAverage accumulates the mean of the most recent window of pushed
// values using a running sum and a circular buffer. Storage is allocated once
// at construction. Not safe for concurrent use; the pipeline owns one
// instance per measured quantity on the consumer side.
type MovingAverage struct {
	buf   []float64
	head  uint32
	count uint32
	win   uint32
	sum   float64
}

// NewMovingAverage constructs a moving average with the given maximum window
// capacity. The initial effective window is 1; capacities below 1 are raised
// to 1.
func NewMovingAverage(capacity uint32) *MovingAverage {
	if capacity < 1 {
		capacity = 1
	}
	return &MovingAverage{
		buf: make([]float64, capacity),
		win: 1,
	}
}

// SetWindow clamps n into [1, Capacity], resets all accumulated state and
// applies the new effective window. It always succeeds.
func (m *MovingAverage) SetWindow(n uint32) {
	if n < 1 {
		n = 1
	}
	if max := uint32(len(m.buf)); n > max {
		n = max
	}
	m.Reset()
	m.win = n
}

// Window returns the current effective window.
func (m *MovingAverage) Window() uint32 {
	return m.win
}

// Capacity returns the maximum window.
func (m *MovingAverage) Capacity() uint32 {
	return uint32(len(m.buf))
}

// Size returns the number of values currently contributing to the average.
func (m *MovingAverage) Size() uint32 {
	return m.count
}

// Reset zeroes the accumulated state, keeping the configured window.
func (m *MovingAverage) Reset() {
	m.head = 0
	m.count = 0
	m.sum = 0
}

// Push incorporates x and returns the resulting average. While the window is
// filling the divisor is the number of values seen so far; once full, the
// oldest value is replaced and the divisor is the window itself.
func (m *MovingAverage) Push(x float64) float64 {
	if m.count < m.win {
		m.buf[m.head] = x
		m.sum += x
		m.head = (m.head + 1) % m.win
		m.count++
		return m.sum / float64(m.count)
	}

	old := m.buf[m.head]
	m.sum += x - old
	m.buf[m.head] = x
	m.head = (m.head + 1) % m.win
	return m.sum / float64(m.win)
}

// Get returns the current average without mutating state, or 0 when no
// values have been pushed.
func (m *MovingAverage) Get() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(min(m.count, m.win))
}
