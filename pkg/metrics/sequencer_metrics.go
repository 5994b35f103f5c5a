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

package metrics

import gometrics "github.com/hashicorp/go-metrics"

// SequencerObserver reports the moving parts of a sequencer that matter
// operationally: how full the ring is, how far behind the slowest
// consumer trails, and how often a producer had to back off waiting for
// capacity.
type SequencerObserver struct {
	sink gometrics.MetricSink
	name string
}

// NewSequencerObserver builds an observer that labels every metric with
// name, so multiple sequencers in one process stay distinguishable.
func NewSequencerObserver(sink gometrics.MetricSink, name string) *SequencerObserver {
	return &SequencerObserver{sink: sink, name: name}
}

func (o *SequencerObserver) labels() []gometrics.Label {
	return []gometrics.Label{{Name: "sequencer", Value: o.name}}
}

// ObserveCursor records the sequencer's current cursor position.
func (o *SequencerObserver) ObserveCursor(cursor int64) {
	o.sink.SetGaugeWithLabels([]string{"ringlane", "sequencer", "cursor"}, float32(cursor), o.labels())
}

// ObserveRemainingCapacity records free ring slots.
func (o *SequencerObserver) ObserveRemainingCapacity(remaining int64) {
	o.sink.SetGaugeWithLabels([]string{"ringlane", "sequencer", "remaining_capacity"}, float32(remaining), o.labels())
}

// IncClaimParked counts a claim loop iteration that had to park because
// it would have overrun the gating sequences.
func (o *SequencerObserver) IncClaimParked() {
	o.sink.IncrCounterWithLabels([]string{"ringlane", "sequencer", "claim_parked_total"}, 1, o.labels())
}

// IncInsufficientCapacity counts a TryNext call that failed outright.
func (o *SequencerObserver) IncInsufficientCapacity() {
	o.sink.IncrCounterWithLabels([]string{"ringlane", "sequencer", "insufficient_capacity_total"}, 1, o.labels())
}

// IncPublished counts a published sequence.
func (o *SequencerObserver) IncPublished(n int64) {
	o.sink.IncrCounterWithLabels([]string{"ringlane", "sequencer", "published_total"}, float32(n), o.labels())
}

// IncAlerted counts a barrier wait that returned due to an alert.
func (o *SequencerObserver) IncAlerted() {
	o.sink.IncrCounterWithLabels([]string{"ringlane", "barrier", "alerted_total"}, 1, o.labels())
}
