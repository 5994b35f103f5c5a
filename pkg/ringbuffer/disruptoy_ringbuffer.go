// Package ringbuffer stores the payloads a sequencing.MultiProducerSequencer
// hands out slots for. It owns no coordination logic of its own: claiming,
// gating, publication and waiting are all delegated to pkg/sequencing, so
// this package is nothing more than a fixed-size, power-of-two-sized slice
// addressed by sequence number.
package ringbuffer

import (
	"github.com/arcentrix/ringlane/pkg/sequencing"
)

// RingBuffer is a Disruptor-style ring buffer for multi-producer, multi-
// consumer fan-out: every consumer independently reads every published
// event, in order, gated on a SequenceBarrier so none ever reads ahead
// of publication.
type RingBuffer[T any] struct {
	buf  []T
	mask int64

	sequencer *sequencing.MultiProducerSequencer
}

// NewRingBuffer creates a RingBuffer with the given power-of-two
// capacity. waitStrategy governs how consumers wait for new
// publications; nil selects sequencing's default (blocking).
func NewRingBuffer[T any](capacity int64, waitStrategy sequencing.WaitStrategy) (*RingBuffer[T], error) {
	sequencer, err := sequencing.NewMultiProducerSequencer(capacity, waitStrategy)
	if err != nil {
		return nil, err
	}
	return &RingBuffer[T]{
		buf:       make([]T, capacity),
		mask:      capacity - 1,
		sequencer: sequencer,
	}, nil
}

// Cursor returns the highest sequence claimed so far.
func (r *RingBuffer[T]) Cursor() int64 {
	return r.sequencer.Cursor()
}

// RemainingCapacity reports how many slots are free to claim right now.
func (r *RingBuffer[T]) RemainingCapacity() int64 {
	return r.sequencer.RemainingCapacity()
}

// BufferSize returns the ring's fixed power-of-two capacity.
func (r *RingBuffer[T]) BufferSize() int64 {
	return r.sequencer.BufferSize()
}

// RecoverTo fast-forwards the sequencer's cursor to sequence without
// publishing through the normal claim path. It sets the cursor only:
// the availability table and consumer sequences are left as they are. It is
// meant for startup recovery only, before any producer or consumer
// goroutine has been started against this RingBuffer: replaying a
// persisted checkpoint so producers resume claiming after the last
// sequence a prior run committed.
func (r *RingBuffer[T]) RecoverTo(sequence int64) {
	r.sequencer.Claim(sequence)
}

// Consumer reads every event from a RingBuffer in order via a
// SequenceBarrier, tracking its own progress in a Sequence that is
// registered with the sequencer as a gating dependency so producers
// never overwrite a slot this consumer hasn't read yet.
type Consumer struct {
	sequence *sequencing.Sequence
	barrier  *sequencing.SequenceBarrier
}

// AddConsumer registers a new consumer. Must be called before any
// producer starts claiming slots the consumer is meant to see, since
// the gating sequence it installs only protects slots claimed after
// registration.
func (r *RingBuffer[T]) AddConsumer() *Consumer {
	seq := sequencing.NewSequenceInitial()
	r.sequencer.AddGatingSequences(seq)
	return &Consumer{
		sequence: seq,
		barrier:  r.sequencer.NewBarrier(),
	}
}

// TryPublish claims and publishes v without blocking, returning
// (0, false) if the ring has no free capacity.
func (r *RingBuffer[T]) TryPublish(v T) (int64, bool) {
	seq, err := r.sequencer.TryNext()
	if err != nil {
		return 0, false
	}
	r.buf[seq&r.mask] = v
	r.sequencer.Publish(seq)
	return seq, true
}

// Publish claims the next slot, blocking until capacity allows, writes
// v into it, and publishes.
func (r *RingBuffer[T]) Publish(v T) (int64, error) {
	seq, err := r.sequencer.Next()
	if err != nil {
		return 0, err
	}
	r.buf[seq&r.mask] = v
	r.sequencer.Publish(seq)
	return seq, nil
}

// PublishWith claims the next slot and hands the caller a pointer to
// write into directly, avoiding a copy for large payloads.
func (r *RingBuffer[T]) PublishWith(write func(slot *T)) (int64, error) {
	seq, err := r.sequencer.Next()
	if err != nil {
		return 0, err
	}
	write(&r.buf[seq&r.mask])
	r.sequencer.Publish(seq)
	return seq, nil
}

// Consume blocks until the next sequence is available for c, returns
// its value, and advances c's gating sequence so the slot can be
// reclaimed once every consumer has passed it.
func (r *RingBuffer[T]) Consume(c *Consumer) (T, int64, error) {
	next := c.sequence.Get() + 1

	for {
		available, err := c.barrier.WaitFor(next)
		if err != nil {
			var zero T
			return zero, 0, err
		}
		if available >= next {
			break
		}
	}

	v := r.buf[next&r.mask]
	c.sequence.Set(next)
	return v, next, nil
}

// ConsumeBatch waits for new sequences to become available and invokes
// handle for every one of them in order, advancing c's
// gating sequence after each successful call so producers can reclaim
// slots as soon as they're processed rather than waiting for the whole
// batch to finish. handle is told whether its sequence is the last one
// in the batch so it can defer expensive work (flushing, batched
// logging) to the final call.
//
// If handle returns an error, ConsumeBatch stops at that sequence
// without advancing past it and returns the error; everything before it
// in the batch is already committed.
//
// If the barrier reports nothing new (the next sequence is claimed but
// not yet published), ConsumeBatch returns nil without calling handle.
func (r *RingBuffer[T]) ConsumeBatch(c *Consumer, handle func(v T, seq int64, endOfBatch bool) error) error {
	next := c.sequence.Get() + 1

	available, err := c.barrier.WaitFor(next)
	if err != nil {
		return err
	}

	for seq := next; seq <= available; seq++ {
		v := r.buf[seq&r.mask]
		if err := handle(v, seq, seq == available); err != nil {
			return err
		}
		c.sequence.Set(seq)
	}
	return nil
}

// Shutdown alerts the consumer's barrier so a goroutine parked in
// Consume or ConsumeBatch unwinds instead of blocking forever.
func (c *Consumer) Shutdown() {
	c.barrier.Alert()
}
