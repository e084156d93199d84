// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package mqtt

import "fmt"

// ConnectionError indicates an issue opening the network connection to the
// MQTT server. It may wrap an underlying error using Go standard error
// wrapping.
type ConnectionError struct {
	wrapped error
	message string
}

func (e *ConnectionError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ConnectionError) Unwrap() error {
	return e.wrapped
}

// ConnackError indicates that the server rejected the connection with an
// error reason code.
type ConnackError struct {
	ReasonCode byte
}

func (e *ConnackError) Error() string {
	return fmt.Sprintf(
		"received CONNACK packet with error reason code %x",
		e.ReasonCode,
	)
}

// NotConnectedError is returned by operations that require an established
// connection.
type NotConnectedError struct{}

func (*NotConnectedError) Error() string {
	return "the publisher is not connected"
}

// PublishError indicates that a publish was not accepted, either due to a
// transport error or a PUBACK with an error reason code.
type PublishError struct {
	wrapped    error
	ReasonCode byte
}

func (e *PublishError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("error publishing message: %v", e.wrapped)
	}
	return fmt.Sprintf(
		"received PUBACK packet with error reason code %x",
		e.ReasonCode,
	)
}

func (e *PublishError) Unwrap() error {
	return e.wrapped
}

// InvalidArgumentError indicates that the user has provided an invalid value
// for an option. It may wrap an underlying error using Go standard error
// wrapping.
type InvalidArgumentError struct {
	wrapped error
	message string
}

func (e *InvalidArgumentError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *InvalidArgumentError) Unwrap() error {
	return e.wrapped
}
