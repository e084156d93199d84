// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import (
	"log/slog"

	"github.com/alx-cc/industrial-sensor-sim/internal/retry"
)

type (
	// PublisherOptions are the resolved publisher options.
	PublisherOptions struct {
		// ClientID is the MQTT client ID. A random alphanumeric ID is
		// generated if unset.
		ClientID string

		// Username is sent in the CONNECT packet if set.
		Username string

		// Password is sent in the CONNECT packet if set.
		Password []byte

		// KeepAlive is the MQTT keep-alive interval in seconds. Defaults
		// to 60.
		KeepAlive uint16

		// Topic is the publish topic. Defaults to DefaultTopic.
		Topic string

		// QoS is the publish QoS, 0 or 1.
		QoS byte

		// Retain marks published messages as retained.
		Retain bool

		// ConnectionRetry is the retry policy for Connect. Defaults to a
		// bounded exponential backoff.
		ConnectionRetry retry.Policy

		// Logger receives structured client logs. Nil disables logging.
		Logger *slog.Logger
	}

	// PublisherOption modifies PublisherOptions.
	PublisherOption func(*PublisherOptions)
)

// Apply resolves the provided list of options.
func (o *PublisherOptions) Apply(
	opts []PublisherOption,
	rest ...PublisherOption,
) {
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	for _, opt := range rest {
		if opt != nil {
			opt(o)
		}
	}
}

// WithClientID sets the MQTT client ID.
func WithClientID(clientID string) PublisherOption {
	return func(o *PublisherOptions) {
		o.ClientID = clientID
	}
}

// WithUsername sets the CONNECT username.
func WithUsername(username string) PublisherOption {
	return func(o *PublisherOptions) {
		o.Username = username
	}
}

// WithPassword sets the CONNECT password.
func WithPassword(password []byte) PublisherOption {
	return func(o *PublisherOptions) {
		o.Password = password
	}
}

// WithKeepAlive sets the keep-alive interval in seconds.
func WithKeepAlive(keepAlive uint16) PublisherOption {
	return func(o *PublisherOptions) {
		o.KeepAlive = keepAlive
	}
}

// WithTopic sets the publish topic.
func WithTopic(topic string) PublisherOption {
	return func(o *PublisherOptions) {
		o.Topic = topic
	}
}

// WithQoS sets the publish QoS.
func WithQoS(qos byte) PublisherOption {
	return func(o *PublisherOptions) {
		o.QoS = qos
	}
}

// WithRetain marks published messages as retained.
func WithRetain(retain bool) PublisherOption {
	return func(o *PublisherOptions) {
		o.Retain = retain
	}
}

// WithConnectionRetry sets the retry policy for Connect.
func WithConnectionRetry(policy retry.Policy) PublisherOption {
	return func(o *PublisherOptions) {
		o.ConnectionRetry = policy
	}
}

// WithLogger sets the logger for the publisher.
func WithLogger(logger *slog.Logger) PublisherOption {
	return func(o *PublisherOptions) {
		o.Logger = logger
	}
}
