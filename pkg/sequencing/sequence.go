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

// InitialSequenceValue is the "pre-first" sentinel: no sequence has been
// claimed or published yet.
const InitialSequenceValue int64 = -1

// cacheLineBytes is the assumed platform cache-line size used to pad
// Sequence so neighboring Sequences (e.g. adjacent entries in a gating
// set, or the cursor sitting next to the gating-sequence cache) never
// share a line and false-share under concurrent CAS/load traffic.
const cacheLineBytes = 64

// Sequence is a cache-line-padded, atomically updated 64-bit counter.
//
// Reads use acquire semantics, writes use release semantics, and
// CompareAndSwap is a full fence — Go's sync/atomic primitives are
// sequentially consistent, which is strictly stronger than what the
// contract requires but never weaker.
//
// The leading and trailing padding arrays exist only to keep the value
// field from sharing a cache line with whatever the allocator places
// immediately before or after this struct; they are never read.
type Sequence struct {
	_     [cacheLineBytes]byte
	value int64
	_     [cacheLineBytes - 8]byte
}

// NewSequence creates a Sequence initialized to initial.
func NewSequence(initial int64) *Sequence {
	return &Sequence{value: initial}
}

// NewSequenceInitial creates a Sequence at InitialSequenceValue.
func NewSequenceInitial() *Sequence {
	return NewSequence(InitialSequenceValue)
}

// Get loads the current value with acquire semantics.
func (s *Sequence) Get() int64 {
	return atomic.LoadInt64(&s.value)
}

// Set stores v with release semantics.
func (s *Sequence) Set(v int64) {
	atomic.StoreInt64(&s.value, v)
}

// CompareAndSwap atomically sets the value to new if it currently equals
// old, returning whether the swap took place.
func (s *Sequence) CompareAndSwap(old, new int64) bool {
	return atomic.CompareAndSwapInt64(&s.value, old, new)
}

// AddAndGet atomically adds delta and returns the resulting value.
func (s *Sequence) AddAndGet(delta int64) int64 {
	return atomic.AddInt64(&s.value, delta)
}
