// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package pipeline

import "errors"

// InvalidArgumentError indicates that the user has provided an invalid value
// for a construction argument.
type InvalidArgumentError struct {
	message string
}

func (e *InvalidArgumentError) Error() string {
	return e.message
}

// RunStateError is returned by Run when a run is already in progress.
type RunStateError struct {
	State State
}

func (e *RunStateError) Error() string {
	switch e.State {
	case Running:
		return "a pipeline run is already in progress"
	case Draining:
		return "a pipeline run is still draining"
	default:
		// It should not be possible to get here.
		return "pipeline is not runnable"
	}
}

// errConsumerDeadline is the cause recorded when the consumer's deadline
// elapses. The deadline exit is a normal outcome, not a run failure.
var errConsumerDeadline = errors.New("consumer deadline elapsed")
