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

import "errors"

var (
	// ErrInvalidArgument is returned by Next/TryNext for n < 1, and by
	// constructors for a non-power-of-two buffer size.
	ErrInvalidArgument = errors.New("sequencing: invalid argument")

	// ErrInsufficientCapacity is returned by TryNext/TryNext(n) when the
	// claim would overrun the slowest gating consumer.
	ErrInsufficientCapacity = errors.New("sequencing: insufficient capacity")

	// ErrAlerted is returned by SequenceBarrier.WaitFor and CheckAlert
	// once Alert has been called; the consumer should unwind without
	// advancing its gating sequence.
	ErrAlerted = errors.New("sequencing: alerted")

	// ErrInterrupted is the error kind for an interrupted blocking wait.
	// No wait strategy in this package returns it; they take no context
	// and are unblocked only through Alert.
	ErrInterrupted = errors.New("sequencing: interrupted")
)
