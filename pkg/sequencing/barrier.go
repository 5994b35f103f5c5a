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

// SequenceBarrier lets a consumer wait for a target sequence to become
// available, gated by both the sequencer's cursor and any dependent
// consumer sequences (so a downstream stage never laps an upstream
// one). It can be woken early by Alert, for coordinated shutdown.
type SequenceBarrier struct {
	sequencer    *MultiProducerSequencer
	waitStrategy WaitStrategy
	cursor       *Sequence
	dependents   *SequenceGroup
	alerted      atomic.Bool
}

func newSequenceBarrier(sequencer *MultiProducerSequencer, waitStrategy WaitStrategy, cursor *Sequence, sequencesToTrack []*Sequence) *SequenceBarrier {
	return &SequenceBarrier{
		sequencer:    sequencer,
		waitStrategy: waitStrategy,
		cursor:       cursor,
		dependents:   NewSequenceGroup(sequencesToTrack...),
	}
}

// WaitFor waits, through the wait strategy, until the cursor (or, if the
// barrier tracks dependent sequences, their minimum) reaches sequence.
// It then returns the highest contiguously published sequence starting
// at sequence, which may exceed the requested one. If sequence itself is
// claimed but not yet published, the result is sequence-1: nothing new
// is readable yet and the caller waits again. An alert raised during the
// wait returns ErrAlerted.
func (b *SequenceBarrier) WaitFor(sequence int64) (int64, error) {
	if err := b.CheckAlert(); err != nil {
		return 0, err
	}

	var dependent Gettable = b.cursor
	if b.dependents.Len() > 0 {
		dependent = dependentSequence{group: b.dependents}
	}

	available, err := b.waitStrategy.WaitFor(sequence, b.cursor, dependent, b)
	if err != nil {
		return available, err
	}

	if available < sequence {
		return available, nil
	}

	return b.sequencer.GetHighestPublishedSequence(sequence, available), nil
}

// Cursor returns the barrier's effective dependent sequence: the
// minimum of its tracked consumer sequences, or the sequencer's cursor
// if it tracks none. This mirrors the consumer's own view of progress,
// not necessarily the producer cursor.
func (b *SequenceBarrier) Cursor() int64 {
	if b.dependents.Len() > 0 {
		return b.dependents.Get()
	}
	return b.cursor.Get()
}

// Alert marks the barrier alerted; any goroutine parked in WaitFor wakes
// with ErrAlerted, and future WaitFor/CheckAlert calls fail immediately
// until ClearAlert is called.
func (b *SequenceBarrier) Alert() {
	b.alerted.Store(true)
	b.waitStrategy.SignalAllWhenBlocking()
}

// ClearAlert resets the alerted flag so the barrier can be reused.
func (b *SequenceBarrier) ClearAlert() {
	b.alerted.Store(false)
}

// IsAlerted reports whether Alert has been called since the last
// ClearAlert.
func (b *SequenceBarrier) IsAlerted() bool {
	return b.alerted.Load()
}

// CheckAlert returns ErrAlerted if the barrier is currently alerted, nil
// otherwise.
func (b *SequenceBarrier) CheckAlert() error {
	if b.alerted.Load() {
		return ErrAlerted
	}
	return nil
}

// dependentSequence adapts a SequenceGroup's minimum to the Gettable
// interface WaitStrategy.WaitFor expects for its dependent argument.
type dependentSequence struct {
	group *SequenceGroup
}

func (d dependentSequence) Get() int64 {
	return d.group.Get()
}
