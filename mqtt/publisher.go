// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package mqtt provides the MQTT publishing sink for the telemetry pipeline,
// built on the paho.golang client.
package mqtt

import (
	"context"
	"net"
	"sync"

	"github.com/eclipse/paho.golang/paho"

	"github.com/alx-cc/industrial-sensor-sim/internal/log"
	"github.com/alx-cc/industrial-sensor-sim/internal/retry"
)

// DefaultTopic is the topic records are published to unless configured
// otherwise.
const DefaultTopic = "sensors/demo/readings"

// Publisher is a thin MQTT v5 publishing client with QoS 0 and QoS 1
// support. It implements the pipeline's Sink interface; delivery failures are
// reported to the caller, which is expected to treat them as fire-and-forget.
//
// The network connection is owned by the publisher: every failed connection
// attempt releases it before returning, and Disconnect releases it on every
// path.
type Publisher struct {
	connectionProvider ConnectionProvider
	options            PublisherOptions

	mu        sync.Mutex
	conn      net.Conn
	client    *paho.Client
	connected bool

	log logger
}

// NewPublisher constructs a publisher with user options. Nil options select
// all defaults.
func NewPublisher(
	connectionProvider ConnectionProvider,
	opts *PublisherOptions,
) (*Publisher, error) {
	if connectionProvider == nil {
		return nil, &InvalidArgumentError{
			message: "connection must be configured",
		}
	}

	p := &Publisher{connectionProvider: connectionProvider}
	if opts != nil {
		p.options = *opts
	}

	if p.options.QoS >= 2 {
		return nil, &InvalidArgumentError{message: "unsupported QoS"}
	}

	if p.options.ClientID == "" {
		p.options.ClientID = randomClientID()
	}
	if p.options.KeepAlive == 0 {
		p.options.KeepAlive = 60
	}
	if p.options.Topic == "" {
		p.options.Topic = DefaultTopic
	}
	if p.options.ConnectionRetry == nil {
		p.options.ConnectionRetry = &retry.ExponentialBackoff{
			MaxAttempts: 5,
			Logger:      p.options.Logger,
		}
	}

	p.log.Logger = log.Wrap(p.options.Logger)
	return p, nil
}

// ID returns the MQTT client ID for this publisher.
func (p *Publisher) ID() string {
	return p.options.ClientID
}

// Topic returns the configured publish topic.
func (p *Publisher) Topic() string {
	return p.options.Topic
}

// Connected reports whether the publisher currently holds a connection.
func (p *Publisher) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

// Connect opens the network connection and establishes the MQTT session,
// retrying under the configured retry policy. It is a no-op when already
// connected.
func (p *Publisher) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connected {
		return nil
	}

	return p.options.ConnectionRetry.Start(ctx, "mqtt connect",
		func(ctx context.Context) (bool, error) {
			return p.tryConnect(ctx)
		},
	)
}

func (p *Publisher) tryConnect(ctx context.Context) (bool, error) {
	conn, err := p.connectionProvider(ctx)
	if err != nil {
		return true, err
	}

	client := paho.NewClient(paho.ClientConfig{
		ClientID: p.options.ClientID,
		Conn:     conn,
	})

	packet := p.buildConnect()
	p.log.Packet(ctx, "connect", packet)

	connack, err := client.Connect(ctx, packet)
	if err != nil {
		_ = conn.Close()
		return true, &ConnectionError{
			message: "error establishing MQTT connection",
			wrapped: err,
		}
	}
	p.log.Packet(ctx, "connack", connack)

	if connack.ReasonCode >= 0x80 {
		_ = conn.Close()
		return isRetryableConnack(connack.ReasonCode),
			&ConnackError{ReasonCode: connack.ReasonCode}
	}

	p.conn = conn
	p.client = client
	p.connected = true
	return false, nil
}

func (p *Publisher) buildConnect() *paho.Connect {
	packet := &paho.Connect{
		ClientID:   p.options.ClientID,
		KeepAlive:  p.options.KeepAlive,
		CleanStart: true,
	}
	if p.options.Username != "" {
		packet.UsernameFlag = true
		packet.Username = p.options.Username
	}
	if p.options.Password != nil {
		packet.PasswordFlag = true
		packet.Password = p.options.Password
	}
	return packet
}

// Dispatch publishes one record payload to the configured topic, implementing
// the pipeline's Sink interface.
func (p *Publisher) Dispatch(ctx context.Context, payload []byte) error {
	p.mu.Lock()
	client, connected := p.client, p.connected
	p.mu.Unlock()

	if !connected {
		return &NotConnectedError{}
	}

	pub := &paho.Publish{
		QoS:     p.options.QoS,
		Retain:  p.options.Retain,
		Topic:   p.options.Topic,
		Payload: payload,
	}
	p.log.Packet(ctx, "publish", pub)

	resp, err := client.Publish(ctx, pub)
	if err != nil {
		return &PublishError{wrapped: err}
	}
	if p.options.QoS > 0 && resp != nil && resp.ReasonCode >= 0x80 {
		return &PublishError{ReasonCode: resp.ReasonCode}
	}
	return nil
}

// Disconnect sends a graceful DISCONNECT and releases the network
// connection. It is safe to call multiple times and when never connected.
func (p *Publisher) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.connected {
		return nil
	}

	err := p.client.Disconnect(&paho.Disconnect{ReasonCode: 0})
	_ = p.conn.Close()

	p.client = nil
	p.conn = nil
	p.connected = false
	return err
}

// Transient server conditions are worth another attempt; everything else
// (bad credentials, banned, malformed packet) is not.
func isRetryableConnack(code byte) bool {
	switch code {
	case 0x80, // unspecified error
		0x88, // server unavailable
		0x89, // server busy
		0x97: // quota exceeded
		return true
	}
	return false
}
