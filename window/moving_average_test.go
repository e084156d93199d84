// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package window_test

import (
	"testing"

	"github.com/alx-cc/industrial-sensor-sim/window"
	"github.com/stretchr/testify/require"
)

func TestTwoPhaseDenominator(t *testing.T) {
	m := window.NewMovingAverage(8)
	m.SetWindow(4)

	values := []float64{2, 4, 6, 8}

	// While filling, the divisor is the number of values seen so far.
	sum := 0.0
	for k, v := range values {
		sum += v
		require.InDelta(t, sum/float64(k+1), m.Push(v), 1e-12)
		require.Equal(t, uint32(k+1), m.Size())
	}

	// Once full, the divisor is the window; each push evicts the oldest.
	require.InDelta(t, (4+6+8+10.0)/4, m.Push(10), 1e-12)
	require.InDelta(t, (6+8+10+12.0)/4, m.Push(12), 1e-12)
	require.Equal(t, uint32(4), m.Size())
}

func TestGetDoesNotMutate(t *testing.T) {
	m := window.NewMovingAverage(4)
	m.SetWindow(2)

	require.Zero(t, m.Get())

	m.Push(1)
	require.InDelta(t, 1.0, m.Get(), 1e-12)
	require.InDelta(t, 1.0, m.Get(), 1e-12)

	m.Push(3)
	require.InDelta(t, 2.0, m.Get(), 1e-12)
}

func TestSetWindowClampsAndClears(t *testing.T) {
	m := window.NewMovingAverage(8)

	tests := []struct {
		request  uint32
		expected uint32
	}{
		{0, 1},
		{1, 1},
		{5, 5},
		{8, 8},
		{9, 8},
		{1000, 8},
	}

	for _, test := range tests {
		m.Push(42)
		m.SetWindow(test.request)
		require.Equal(t, test.expected, m.Window(), "request %d", test.request)

		// Prior contributions are gone; behaves as freshly constructed.
		require.Zero(t, m.Size())
		require.Zero(t, m.Get())
		require.InDelta(t, 7.0, m.Push(7), 1e-12)
		m.Reset()
	}
}

func TestResetKeepsWindow(t *testing.T) {
	m := window.NewMovingAverage(8)
	m.SetWindow(3)
	m.Push(1)
	m.Push(2)

	m.Reset()
	require.Equal(t, uint32(3), m.Window())
	require.Zero(t, m.Size())
	require.Zero(t, m.Get())
}

func TestConstantSequence(t *testing.T) {
	m := window.NewMovingAverage(8)
	m.SetWindow(8)

	for n := 0; n < 8; n++ {
		require.InDelta(t, 10.0, m.Push(10.0), 1e-12)
	}
}

func TestStepResponse(t *testing.T) {
	m := window.NewMovingAverage(8)
	m.SetWindow(8)

	for n := 0; n < 8; n++ {
		m.Push(0)
	}
	// The window now holds 0,0,0,0,0,0,0,8.
	require.InDelta(t, 1.0, m.Push(8.0), 1e-12)
}

func TestCapacityFloor(t *testing.T) {
	m := window.NewMovingAverage(0)
	require.Equal(t, uint32(1), m.Capacity())
	require.InDelta(t, 5.0, m.Push(5), 1e-12)
	require.InDelta(t, 9.0, m.Push(9), 1e-12)
}
