// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.
package ring

import "fmt"

// InvalidCapacityError indicates that a buffer was constructed with a
// capacity that is not a power of two or is below the minimum of 2.
type InvalidCapacityError struct {
	Capacity uint32
}

func (e *InvalidCapacityError) Error() string {
	return fmt.Sprintf(
		"ring capacity must be a power of two and at least 2, got %d",
		e.Capacity,
	)
}

// InvalidPolicyError indicates that a buffer was constructed with an
// unknown overflow policy value.
type InvalidPolicyError struct {
	Policy Policy
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("unknown ring overflow policy %d", e.Policy)
}
