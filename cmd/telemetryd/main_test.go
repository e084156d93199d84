// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		value    string
		expected time.Duration
	}{
		{"100ms", 100 * time.Millisecond},
		{"2m", 2 * time.Minute},
		{"PT0.1S", 100 * time.Millisecond},
		{"PT2M", 2 * time.Minute},
	}

	for _, test := range tests {
		d, err := parseDuration(test.value)
		require.NoError(t, err, "value %q", test.value)
		require.Equal(t, test.expected, d, "value %q", test.value)
	}

	_, err := parseDuration("soon")
	require.Error(t, err)
}

func TestPipelineOptionsFromEnv(t *testing.T) {
	t.Setenv("SIM_SAMPLE_PERIOD", "50ms")
	t.Setenv("SIM_SAMPLE_COUNT", "100")
	t.Setenv("SIM_WINDOW", "16")
	t.Setenv("SIM_DEADLINE", "PT30S")
	t.Setenv("SIM_RING_CAPACITY", "64")
	t.Setenv("SIM_RING_POLICY", "drop_oldest")

	opts, err := pipelineOptionsFromEnv()
	require.NoError(t, err)
	require.Len(t, opts, 6)
}

func TestPipelineOptionsFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad period", map[string]string{"SIM_SAMPLE_PERIOD": "soon"}},
		{"bad count", map[string]string{"SIM_SAMPLE_COUNT": "-1"}},
		{"bad window", map[string]string{"SIM_WINDOW": "eight"}},
		{"bad deadline", map[string]string{"SIM_DEADLINE": "later"}},
		{"bad capacity", map[string]string{"SIM_RING_CAPACITY": "many"}},
		{"bad policy", map[string]string{"SIM_RING_POLICY": "drop_newest"}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			_, err := pipelineOptionsFromEnv()
			require.Error(t, err)
		})
	}
}
