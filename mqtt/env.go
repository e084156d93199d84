// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"os"
	"strconv"
	"strings"
)

type connectionProviderBuilder struct {
	hostname string
	port     uint16
	useTLS   *bool
	wsPath   string
	caFile   string
	certFile string
	keyFile  string
	passFile string
}

// PublisherConfigFromEnv parses a publisher configuration from well-known
// environment variables. Note that this will only return an error if the
// environment variables parse incorrectly; it will not return an error if
// required parameters (e.g. for the connection provider) are missing, to
// allow optional parameters to be specified from environment independently.
func PublisherConfigFromEnv() (ConnectionProvider, *PublisherOptions, error) {
	opts := &PublisherOptions{}
	conn := connectionProviderBuilder{}

	for _, env := range os.Environ() {
		idx := strings.IndexByte(env, '=')
		key := env[:idx]
		val := env[idx+1:]
		switch key {
		case "MQTT_HOST":
			conn.hostname = val

		case "MQTT_PORT":
			port, err := strconv.ParseUint(val, 10, 16)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not parse broker TCP port",
					wrapped: err,
				}
			}
			conn.port = uint16(port)

		case "MQTT_USE_TLS":
			useTLS, err := strconv.ParseBool(val)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not parse MQTT use TLS",
					wrapped: err,
				}
			}
			conn.useTLS = &useTLS

		case "MQTT_WEBSOCKET_PATH":
			conn.wsPath = val

		case "MQTT_CLIENT_ID":
			opts.ClientID = val

		case "MQTT_USERNAME":
			opts.Username = val

		case "MQTT_PASSWORD_FILE":
			password, err := os.ReadFile(val)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not read MQTT password file",
					wrapped: err,
				}
			}
			opts.Password = password

		case "MQTT_KEEP_ALIVE":
			keepAlive, err := strconv.ParseUint(val, 10, 16)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not parse MQTT keep-alive",
					wrapped: err,
				}
			}
			opts.KeepAlive = uint16(keepAlive)

		case "MQTT_TOPIC":
			opts.Topic = val

		case "MQTT_QOS":
			qos, err := strconv.ParseUint(val, 10, 8)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not parse MQTT QoS",
					wrapped: err,
				}
			}
			if qos >= 2 {
				return nil, nil, &InvalidArgumentError{
					message: "MQTT QoS must be 0 or 1",
				}
			}
			opts.QoS = byte(qos)

		case "MQTT_RETAIN":
			retain, err := strconv.ParseBool(val)
			if err != nil {
				return nil, nil, &InvalidArgumentError{
					message: "could not parse MQTT retain",
					wrapped: err,
				}
			}
			opts.Retain = retain

		case "MQTT_TLS_CA_FILE":
			conn.caFile = val

		case "MQTT_TLS_CERT_FILE":
			conn.certFile = val

		case "MQTT_TLS_KEY_FILE":
			conn.keyFile = val

		case "MQTT_TLS_KEY_PASSWORD_FILE":
			conn.passFile = val
		}
	}

	connectionProvider, err := conn.build()
	if err != nil {
		return nil, nil, err
	}
	return connectionProvider, opts, nil
}

// NewPublisherFromEnv is a shorthand for constructing a publisher using
// PublisherConfigFromEnv.
func NewPublisherFromEnv(opt ...PublisherOption) (*Publisher, error) {
	connectionProvider, opts, err := PublisherConfigFromEnv()
	if err != nil {
		return nil, err
	}
	if connectionProvider == nil {
		return nil, &InvalidArgumentError{
			message: "connection must be configured",
		}
	}
	opts.Apply(opt)
	return NewPublisher(connectionProvider, opts)
}

func (b *connectionProviderBuilder) build() (ConnectionProvider, error) {
	if b.hostname == "" {
		if b.port != 0 || b.useTLS != nil || b.wsPath != "" || b.hasTLS() {
			return nil, &InvalidArgumentError{
				message: "connection configuration provided without hostname",
			}
		}
		return nil, nil
	}

	useTLS := b.useTLS != nil && *b.useTLS

	if !useTLS {
		if b.hasTLS() {
			return nil, &InvalidArgumentError{
				message: "TLS configuration provided but not using TLS",
			}
		}
		if b.wsPath != "" {
			if b.port == 0 {
				b.port = 80
			}
			return WebSocketConnection(b.hostname, b.port, b.wsPath), nil
		}
		if b.port == 0 {
			b.port = 1883
		}
		return TCPConnection(b.hostname, b.port), nil
	}

	if b.wsPath != "" {
		return nil, &InvalidArgumentError{
			message: "TLS over WebSocket is not supported",
		}
	}

	if (b.certFile != "") != (b.keyFile != "") {
		return nil, &InvalidArgumentError{
			message: "certificate file and key file must be provided together",
		}
	}

	if b.port == 0 {
		b.port = 8883
	}

	var tlsOpts []TLSOption

	// Bypasses hostname check in TLS config when deliberately connecting to
	// localhost.
	if b.hostname == "localhost" {
		tlsOpts = append(tlsOpts, WithInsecureSkipVerify())
	}

	if b.certFile != "" {
		if b.passFile != "" {
			tlsOpts = append(tlsOpts, WithEncryptedX509(
				b.certFile,
				b.keyFile,
				b.passFile,
			))
		} else {
			tlsOpts = append(tlsOpts, WithX509(
				b.certFile,
				b.keyFile,
			))
		}
	}

	if b.caFile != "" {
		tlsOpts = append(tlsOpts, WithCA(b.caFile))
	}

	return TLSConnection(b.hostname, b.port, tlsOpts...), nil
}

func (b *connectionProviderBuilder) hasTLS() bool {
	return b.caFile != "" || b.certFile != "" ||
		b.keyFile != "" || b.passFile != ""
}
