// Copyright 2026 Arcentra Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sequencing

import (
	"sync/atomic"
	"time"
)

// MultiProducerSequencer hands out contiguous, non-overlapping ranges of
// sequence numbers to any number of concurrent producers, and tracks
// which of those sequences have actually been published so consumers
// never read ahead of what was written.
//
// It owns three pieces of moving state: the cursor (highest sequence
// claimed by any producer, not necessarily published), the availability
// table (which claimed sequences are published), and a cache of the
// slowest gating sequence so most claims never have to re-walk the
// gating set.
type MultiProducerSequencer struct {
	bufferSize     int64
	log2BufferSize uint
	waitStrategy   WaitStrategy

	cursor *Sequence

	// gatingCache mirrors the minimum of gatingSequences, re-synced only
	// when a claim looks like it might overrun it. Padded the same as
	// Sequence since it sits next to cursor and takes the same
	// concurrent-CAS traffic.
	gatingCache *Sequence

	gatingSequences atomic.Pointer[[]*Sequence]

	available *availabilityTable
}

// NewMultiProducerSequencer creates a sequencer over a ring of the given
// bufferSize, which must be a power of two. waitStrategy governs how
// SequenceBarriers built from this sequencer await new publications.
func NewMultiProducerSequencer(bufferSize int64, waitStrategy WaitStrategy) (*MultiProducerSequencer, error) {
	if !IsPowerOfTwo(bufferSize) {
		return nil, ErrInvalidArgument
	}
	if waitStrategy == nil {
		waitStrategy = NewBlockingWaitStrategy()
	}
	s := &MultiProducerSequencer{
		bufferSize:     bufferSize,
		log2BufferSize: Log2(bufferSize),
		waitStrategy:   waitStrategy,
		cursor:         NewSequenceInitial(),
		gatingCache:    NewSequenceInitial(),
		available:      newAvailabilityTable(bufferSize, Log2(bufferSize)),
	}
	empty := make([]*Sequence, 0)
	s.gatingSequences.Store(&empty)
	return s, nil
}

// BufferSize returns the ring size this sequencer was constructed with.
func (s *MultiProducerSequencer) BufferSize() int64 {
	return s.bufferSize
}

// Cursor returns the highest sequence claimed so far. It is not safe to
// read slot data up to Cursor() without also checking IsAvailable: a
// claimed sequence may not yet be published.
func (s *MultiProducerSequencer) Cursor() int64 {
	return s.cursor.Get()
}

// AddGatingSequences registers consumer sequences the sequencer must not
// let producers overrun. Safe to call concurrently with claims, though
// typically done once at wiring time before any producer starts.
func (s *MultiProducerSequencer) AddGatingSequences(sequences ...*Sequence) {
	for {
		oldPtr := s.gatingSequences.Load()
		old := *oldPtr
		updated := make([]*Sequence, 0, len(old)+len(sequences))
		updated = append(updated, old...)
		updated = append(updated, sequences...)
		if s.gatingSequences.CompareAndSwap(oldPtr, &updated) {
			return
		}
	}
}

// RemoveGatingSequence unregisters sequence, if present. Returns whether
// it was found.
func (s *MultiProducerSequencer) RemoveGatingSequence(sequence *Sequence) bool {
	for {
		oldPtr := s.gatingSequences.Load()
		old := *oldPtr
		idx := -1
		for i, gs := range old {
			if gs == sequence {
				idx = i
				break
			}
		}
		if idx == -1 {
			return false
		}
		updated := make([]*Sequence, 0, len(old)-1)
		updated = append(updated, old[:idx]...)
		updated = append(updated, old[idx+1:]...)
		if s.gatingSequences.CompareAndSwap(oldPtr, &updated) {
			return true
		}
	}
}

func (s *MultiProducerSequencer) gatingSequenceSlice() []*Sequence {
	return *s.gatingSequences.Load()
}

// minimumGatingSequence returns the minimum of the registered gating
// sequences, or floor if none are registered.
func (s *MultiProducerSequencer) minimumGatingSequence(floor int64) int64 {
	return Minimum(s.gatingSequenceSlice(), floor)
}

// Next claims the single next sequence, blocking (via a tight CAS/park
// loop, not the configured WaitStrategy) until capacity is available.
func (s *MultiProducerSequencer) Next() (int64, error) {
	return s.NextN(1)
}

// NextN claims a contiguous range of n sequences, returning the highest
// one claimed; the range is [returned-n+1, returned]. It blocks until
// the whole range fits without overrunning the gating sequences.
func (s *MultiProducerSequencer) NextN(n int64) (int64, error) {
	if n < 1 {
		return 0, ErrInvalidArgument
	}

	for {
		current := s.cursor.Get()
		next := current + n
		wrapPoint := next - s.bufferSize
		cachedGating := s.gatingCache.Get()

		if wrapPoint > cachedGating || cachedGating > current {
			// The cache looks stale or risky; re-derive it from the live
			// gating set before trusting it to gate a claim.
			gatingSequence := s.minimumGatingSequence(current)
			if wrapPoint > gatingSequence {
				time.Sleep(time.Nanosecond)
				continue
			}
			s.gatingCache.Set(gatingSequence)
			continue
		}

		if s.cursor.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// TryNext attempts to claim the single next sequence without blocking.
func (s *MultiProducerSequencer) TryNext() (int64, error) {
	return s.TryNextN(1)
}

// TryNextN attempts to claim a contiguous range of n sequences without
// blocking, failing with ErrInsufficientCapacity if the range would
// overrun the gating sequences.
func (s *MultiProducerSequencer) TryNextN(n int64) (int64, error) {
	if n < 1 {
		return 0, ErrInvalidArgument
	}

	for {
		current := s.cursor.Get()
		next := current + n

		if !s.hasAvailableCapacityAt(current, n) {
			return 0, ErrInsufficientCapacity
		}
		if s.cursor.CompareAndSwap(current, next) {
			return next, nil
		}
	}
}

// HasAvailableCapacity reports whether n sequences could be claimed
// right now without blocking. The result can go stale the instant it is
// returned under concurrent claims; it is a hint, not a reservation.
func (s *MultiProducerSequencer) HasAvailableCapacity(n int64) bool {
	return s.hasAvailableCapacityAt(s.cursor.Get(), n)
}

func (s *MultiProducerSequencer) hasAvailableCapacityAt(current, n int64) bool {
	next := current + n
	wrapPoint := next - s.bufferSize
	cachedGating := s.gatingCache.Get()

	if wrapPoint > cachedGating || cachedGating > current {
		gatingSequence := s.minimumGatingSequence(current)
		s.gatingCache.Set(gatingSequence)
		if wrapPoint > gatingSequence {
			return false
		}
	}
	return true
}

// RemainingCapacity reports how many slots could still be claimed as of
// a single snapshot of the cursor and gating sequences, taken together
// so the result is never negative and never inflated by a torn read
// across two independent loads.
func (s *MultiProducerSequencer) RemainingCapacity() int64 {
	consumed := s.cursor.Get()
	produced := s.minimumGatingSequence(consumed)
	return s.bufferSize - (consumed - produced)
}

// Publish marks sequence as available for consumers to read. It performs
// a release store into the availability table, then wakes any consumers
// parked in a blocking WaitStrategy.
func (s *MultiProducerSequencer) Publish(sequence int64) {
	s.available.markPublished(sequence)
	s.waitStrategy.SignalAllWhenBlocking()
}

// PublishRange marks every sequence in [lo, hi] as available, in
// ascending order, then wakes parked consumers once.
func (s *MultiProducerSequencer) PublishRange(lo, hi int64) {
	for seq := lo; seq <= hi; seq++ {
		s.available.markPublished(seq)
	}
	s.waitStrategy.SignalAllWhenBlocking()
}

// IsAvailable reports whether sequence has been published.
func (s *MultiProducerSequencer) IsAvailable(sequence int64) bool {
	return s.available.isAvailable(sequence)
}

// GetHighestPublishedSequence scans forward from lowerBound looking for
// the highest contiguously published sequence not exceeding
// availableSequence. It stops at the first gap, since a consumer may
// never skip over an unpublished slot.
func (s *MultiProducerSequencer) GetHighestPublishedSequence(lowerBound, availableSequence int64) int64 {
	for seq := lowerBound; seq <= availableSequence; seq++ {
		if !s.available.isAvailable(seq) {
			return seq - 1
		}
	}
	return availableSequence
}

// Claim forcibly sets the cursor to sequence, bypassing the claim
// algorithm entirely. Only valid before any producer has started, or
// during recovery from a persisted checkpoint.
func (s *MultiProducerSequencer) Claim(sequence int64) {
	s.cursor.Set(sequence)
}

// NewBarrier builds a SequenceBarrier over this sequencer that gates on
// sequencesToTrack in addition to the sequencer's own cursor. An empty
// sequencesToTrack means the barrier tracks the cursor directly.
func (s *MultiProducerSequencer) NewBarrier(sequencesToTrack ...*Sequence) *SequenceBarrier {
	return newSequenceBarrier(s, s.waitStrategy, s.cursor, sequencesToTrack)
}
