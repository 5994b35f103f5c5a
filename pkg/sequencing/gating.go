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

import "math/bits"

// Minimum folds over sequences, returning the smallest of minimumSoFar
// and every sequence's current value. An empty slice returns
// minimumSoFar unchanged: a sequencer with no gating sequences yet
// registered is gated only by its own cursor and runs effectively
// unbounded.
func Minimum(sequences []*Sequence, minimumSoFar int64) int64 {
	m := minimumSoFar
	for _, s := range sequences {
		if v := s.Get(); v < m {
			m = v
		}
	}
	return m
}

// Log2 returns log base 2 of n, which must be a power of two.
func Log2(n int64) uint {
	return uint(bits.TrailingZeros64(uint64(n)))
}

// IsPowerOfTwo reports whether n is a positive power of two.
func IsPowerOfTwo(n int64) bool {
	return n > 0 && n&(n-1) == 0
}

// SequenceGroup is a read-only grouping view over a fixed set of
// Sequences, such as the dependent sequences a SequenceBarrier gates on
// or the gating set a MultiProducerSequencer must not overrun. Its Get
// recomputes the minimum on every call — the group itself is immutable
// once constructed, but the Sequences it holds keep moving.
type SequenceGroup struct {
	sequences []*Sequence
}

// NewSequenceGroup creates a SequenceGroup over sequences. The slice is
// copied so later mutation of the caller's slice has no effect.
func NewSequenceGroup(sequences ...*Sequence) *SequenceGroup {
	cp := make([]*Sequence, len(sequences))
	copy(cp, sequences)
	return &SequenceGroup{sequences: cp}
}

// Get returns the minimum of the group's sequences, or InitialSequenceValue
// if the group is empty.
func (g *SequenceGroup) Get() int64 {
	if len(g.sequences) == 0 {
		return InitialSequenceValue
	}
	return Minimum(g.sequences, g.sequences[0].Get())
}

// Len reports how many sequences are in the group.
func (g *SequenceGroup) Len() int {
	return len(g.sequences)
}
