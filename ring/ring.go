// Copyright (c) Microsoft Corporation.
// Licensed under the MIT License.

// Package ring provides a fixed-capacity, allocation-free bounded queue
// connecting exactly one producer goroutine and one consumer goroutine
// without locks.
package ring

import "sync/atomic"

// Policy selects the behavior of TryPush when the buffer is full. A single
// buffer instance uses exactly one policy for its whole lifetime.
type Policy byte

const (
	// RejectOnFull causes TryPush to fail on a full buffer, preserving the
	// oldest unread data. This is the default policy.
	RejectOnFull Policy = iota

	// DropOldest causes TryPush to always succeed, discarding the
	// least-recently-pushed unread item to make room when full.
	DropOldest
)

// Buffer is a single-producer/single-consumer bounded queue. TryPush may only
// be called from one goroutine at a time, and TryPop and Clear from one other.
// Storage is allocated once at construction; no allocation occurs afterward.
//
// The head cursor is written only by the producer and the tail cursor only by
// the consumer, with one exception: under the DropOldest policy the producer
// reclaims the oldest unread slot by compare-and-swapping tail forward, and
// the consumer pops via compare-and-swap so that a reclaimed slot is never
// handed out. Both cursors increase monotonically with unsigned wraparound;
// the queued count is always head-tail.
type Buffer[T any] struct {
	head atomic.Uint32
	tail atomic.Uint32

	mask   uint32
	policy Policy
	slots  []T
}

// New constructs a buffer with the given capacity and overflow policy. The
// capacity must be a power of two and at least 2.
func New[T any](capacity uint32, policy Policy) (*Buffer[T], error) {
	if capacity < 2 || capacity&(capacity-1) != 0 {
		return nil, &InvalidCapacityError{Capacity: capacity}
	}
	if policy > DropOldest {
		return nil, &InvalidPolicyError{Policy: policy}
	}
	return &Buffer[T]{
		mask:   capacity - 1,
		policy: policy,
		slots:  make([]T, capacity),
	}, nil
}

// Capacity returns the fixed slot count.
func (b *Buffer[T]) Capacity() uint32 {
	return uint32(len(b.slots))
}

// Policy returns the overflow policy selected at construction.
func (b *Buffer[T]) Policy() Policy {
	return b.policy
}

// TryPush appends v to the buffer. Producer-only. Under RejectOnFull it
// reports false on a full buffer and stores nothing; under DropOldest it
// always reports true, overwriting the oldest unread item when full.
//
// The slot write happens before the head store, so a consumer that observes
// the advanced head is guaranteed to observe the slot contents.
func (b *Buffer[T]) TryPush(v T) bool {
	head := b.head.Load()
	tail := b.tail.Load()
	if head-tail == uint32(len(b.slots)) {
		if b.policy == RejectOnFull {
			return false
		}
		// Reclaim the oldest unread slot. A failed swap means the consumer
		// advanced tail first and the slot is already free.
		b.tail.CompareAndSwap(tail, tail+1)
	}
	b.slots[head&b.mask] = v
	b.head.Store(head + 1)
	return true
}

// TryPop copies the oldest queued item into out and removes it, reporting
// false on an empty buffer. Consumer-only.
func (b *Buffer[T]) TryPop(out *T) bool {
	if b.policy == RejectOnFull {
		head := b.head.Load()
		tail := b.tail.Load()
		if head == tail {
			return false
		}
		*out = b.slots[tail&b.mask]
		b.tail.Store(tail + 1)
		return true
	}

	// Under DropOldest the producer may steal the slot mid-copy; the swap
	// detects that and the copy is retried from the new tail.
	for {
		tail := b.tail.Load()
		if b.head.Load() == tail {
			return false
		}
		v := b.slots[tail&b.mask]
		if b.tail.CompareAndSwap(tail, tail+1) {
			*out = v
			return true
		}
	}
}

// Len returns the number of queued items.
func (b *Buffer[T]) Len() uint32 {
	return b.head.Load() - b.tail.Load()
}

// Empty reports whether no items are queued.
func (b *Buffer[T]) Empty() bool {
	return b.Len() == 0
}

// Full reports whether the buffer holds Capacity items.
func (b *Buffer[T]) Full() bool {
	return b.Len() == uint32(len(b.slots))
}

// Clear discards all queued items by advancing tail to head. Consumer-only;
// the producer is unaffected and may continue pushing into the freed slots.
func (b *Buffer[T]) Clear() {
	b.tail.Store(b.head.Load())
}
