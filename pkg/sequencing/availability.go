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

import "sync/atomic"

// unpublishedFlag is the sentinel flag value no non-negative sequence can
// ever produce, so every slot starts out as "not published".
const unpublishedFlag int32 = -1

// availabilityTable is a fixed-size array of per-slot publication marks,
// one entry per ring position. A slot s is published iff the entry at
// index(s) equals flag(s): the "wrap count" s would itself write.
//
// It is a plain heap-allocated int32 slice with explicit per-element
// atomics, not an atomic-of-slice abstraction: many producers write it
// concurrently, but each producer only ever writes the slots its own
// claimed range covers, and the gating invariant (cursor - min(gating) <=
// bufferSize) guarantees a slot can't be reclaimed for a new wrap until
// every consumer has moved past its previous occupant. That rules out
// write-write races on any single element across wraps without requiring
// CAS on the array itself.
type availabilityTable struct {
	entries  []int32
	indexMask int64
	shift    uint
}

func newAvailabilityTable(bufferSize int64, log2BufferSize uint) *availabilityTable {
	t := &availabilityTable{
		entries:   make([]int32, bufferSize),
		indexMask: bufferSize - 1,
		shift:     log2BufferSize,
	}
	t.reset()
	return t
}

// reset marks every slot unpublished. Order of iteration has no semantic
// consequence; a plain forward loop is used here.
func (t *availabilityTable) reset() {
	for i := range t.entries {
		t.entries[i] = unpublishedFlag
	}
}

func (t *availabilityTable) index(seq int64) int64 {
	return seq & t.indexMask
}

func (t *availabilityTable) flag(seq int64) int32 {
	return int32(seq >> t.shift)
}

// markPublished stores flag at the slot for seq with release ordering.
// It does not need a full fence: readers pair it with an acquire load in
// isAvailable.
func (t *availabilityTable) markPublished(seq int64) {
	idx := t.index(seq)
	flag := t.flag(seq)
	atomic.StoreInt32(&t.entries[idx], flag)
}

// isAvailable reports whether seq has been published, via an acquire
// load compared against the flag seq itself would have written.
func (t *availabilityTable) isAvailable(seq int64) bool {
	idx := t.index(seq)
	flag := t.flag(seq)
	return atomic.LoadInt32(&t.entries[idx]) == flag
}
