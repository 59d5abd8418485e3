// Lock-free single-producer/single-consumer packet ring
// https://github.com/kfriesth/rpidmx512
//
// Copyright (c) the rpidmx512 package authors
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dmx

import "sync/atomic"

// ring is a fixed-capacity single-producer/single-consumer circular
// buffer of frames. capacity must be a power of two; indices are wrapped
// with a bitwise mask rather than modulo. head is written only by the
// producer (the FIQ handler or a timer callback), tail only by the
// consumer (the foreground). The atomic loads/stores on head and tail
// stand in for the acquire/release memory barriers the hardware design
// issues on every FIQ entry/exit (see DESIGN.md).
type ring[T any] struct {
	slots []T
	mask  uint32
	head  uint32
	tail  uint32
}

// newRing allocates a ring with the given capacity, rounded up to the
// next power of two if necessary (minimum 2).
func newRing[T any](capacity int) *ring[T] {
	n := 2
	for n < capacity {
		n <<= 1
	}

	return &ring[T]{
		slots: make([]T, n),
		mask:  uint32(n - 1),
	}
}

// reserve returns a pointer to the next slot for the producer to fill,
// and whether one was available. The slot is owned by the producer until
// publish is called; on overflow (ring full) it returns false and the
// caller must drop the frame without mutating ring state (drop-newest).
func (r *ring[T]) reserve() (*T, bool) {
	head := atomic.LoadUint32(&r.head)
	tail := atomic.LoadUint32(&r.tail)

	if head-tail >= uint32(len(r.slots)) {
		return nil, false
	}

	return &r.slots[head&r.mask], true
}

// publish advances head, making the slot most recently returned by
// reserve visible to the consumer. Must be called at most once per
// reserve, and only by the producer.
func (r *ring[T]) publish() {
	atomic.AddUint32(&r.head, 1)
}

// pop returns the oldest unconsumed frame and advances tail, or returns
// false if the ring is empty.
func (r *ring[T]) pop() (T, bool) {
	var zero T

	head := atomic.LoadUint32(&r.head)
	tail := atomic.LoadUint32(&r.tail)

	if head == tail {
		return zero, false
	}

	v := r.slots[tail&r.mask]
	atomic.AddUint32(&r.tail, 1)

	return v, true
}

// len reports the number of unconsumed frames currently in the ring.
func (r *ring[T]) len() int {
	return int(atomic.LoadUint32(&r.head) - atomic.LoadUint32(&r.tail))
}
