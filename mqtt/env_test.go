// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPublisherConfigFromEnv(t *testing.T) {
	passFile := t.TempDir() + "/password"
	require.NoError(t, os.WriteFile(passFile, []byte("pineapple"), 0o600))

	t.Setenv("MQTT_HOST", "broker.example")
	t.Setenv("MQTT_PORT", "11883")
	t.Setenv("MQTT_CLIENT_ID", "plantfloor1")
	t.Setenv("MQTT_USERNAME", "gary")
	t.Setenv("MQTT_PASSWORD_FILE", passFile)
	t.Setenv("MQTT_KEEP_ALIVE", "30")
	t.Setenv("MQTT_TOPIC", "sensors/line4/readings")
	t.Setenv("MQTT_QOS", "1")
	t.Setenv("MQTT_RETAIN", "true")

	conn, opts, err := PublisherConfigFromEnv()
	require.NoError(t, err)
	require.NotNil(t, conn)

	require.Equal(t, "plantfloor1", opts.ClientID)
	require.Equal(t, "gary", opts.Username)
	require.Equal(t, []byte("pineapple"), opts.Password)
	require.Equal(t, uint16(30), opts.KeepAlive)
	require.Equal(t, "sensors/line4/readings", opts.Topic)
	require.Equal(t, byte(1), opts.QoS)
	require.True(t, opts.Retain)
}

func TestPublisherConfigFromEnvEmpty(t *testing.T) {
	conn, opts, err := PublisherConfigFromEnv()
	require.NoError(t, err)
	require.Nil(t, conn)
	require.NotNil(t, opts)
}

func TestPublisherConfigFromEnvErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "bad port",
			env:  map[string]string{"MQTT_HOST": "h", "MQTT_PORT": "pots"},
		},
		{
			name: "bad qos",
			env:  map[string]string{"MQTT_HOST": "h", "MQTT_QOS": "pots"},
		},
		{
			name: "unsupported qos",
			env:  map[string]string{"MQTT_HOST": "h", "MQTT_QOS": "2"},
		},
		{
			name: "config without hostname",
			env:  map[string]string{"MQTT_PORT": "1883"},
		},
		{
			name: "tls files without tls",
			env: map[string]string{
				"MQTT_HOST":        "h",
				"MQTT_TLS_CA_FILE": "/does/not/matter",
			},
		},
		{
			name: "cert without key",
			env: map[string]string{
				"MQTT_HOST":          "h",
				"MQTT_USE_TLS":       "true",
				"MQTT_TLS_CERT_FILE": "/does/not/matter",
			},
		},
		{
			name: "websocket with tls",
			env: map[string]string{
				"MQTT_HOST":           "h",
				"MQTT_USE_TLS":        "true",
				"MQTT_WEBSOCKET_PATH": "/mqtt",
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			for k, v := range test.env {
				t.Setenv(k, v)
			}
			_, _, err := PublisherConfigFromEnv()
			var invalid *InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestPublisherConfigFromEnvQoSMessages(t *testing.T) {
	t.Setenv("MQTT_HOST", "h")

	// An out-of-range QoS parsed fine; the error must say so rather than
	// claim a parse failure.
	t.Setenv("MQTT_QOS", "2")
	_, _, err := PublisherConfigFromEnv()
	require.EqualError(t, err, "MQTT QoS must be 0 or 1")

	t.Setenv("MQTT_QOS", "pots")
	_, _, err = PublisherConfigFromEnv()
	require.ErrorContains(t, err, "could not parse MQTT QoS")
}

func TestNewPublisherFromEnvRequiresConnection(t *testing.T) {
	_, err := NewPublisherFromEnv()
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
}
