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

// Package sequencing implements the multi-producer sequencing core of a
// bounded, lock-free ring-buffer coordination system in the LMAX Disruptor
// family.
//
// Producers claim exclusive, contiguous ranges of monotonically increasing
// sequence numbers via a MultiProducerSequencer, publish them in any order,
// and consumers follow behind through a SequenceBarrier that gates on a
// dependency graph of upstream Sequences. The package coordinates slot
// ownership only; it does not own the payload storage (see pkg/ringbuffer)
// and it never logs. Barrier waits can be cut short with Alert; a
// blocking producer claim (Next, NextN) has no such escape and parks
// until the gating consumers advance.
package sequencing
