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

import (
	"fmt"
	"sync"

	gometrics "github.com/hashicorp/go-metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink adapts hashicorp/go-metrics' key/value emission model
// onto lazily-created Prometheus vectors registered against a single
// registry. Sequencer components call SetGauge/IncrCounter without
// knowing Prometheus exists; the HTTP exposition comes from Server.
type PrometheusSink struct {
	registry   *prometheus.Registry
	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec
}

func newPrometheusSink(registry *prometheus.Registry) *PrometheusSink {
	return &PrometheusSink{
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}
}

func (s *PrometheusSink) SetGauge(key []string, val float32) {
	s.SetGaugeWithLabels(key, val, nil)
}

func (s *PrometheusSink) SetGaugeWithLabels(key []string, val float32, labels []gometrics.Label) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sanitizeMetricName(key)
	gauge, ok := s.gauges[name]
	if !ok {
		gauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: name,
			Help: fmt.Sprintf("gauge metric for %s", name),
		}, labelNames(labels))
		s.registry.MustRegister(gauge)
		s.gauges[name] = gauge
	}
	gauge.With(toPromLabels(labels)).Set(float64(val))
}

func (s *PrometheusSink) EmitKey(key []string, val float32) {
	s.SetGauge(key, val)
}

func (s *PrometheusSink) IncrCounter(key []string, val float32) {
	s.IncrCounterWithLabels(key, val, nil)
}

func (s *PrometheusSink) IncrCounterWithLabels(key []string, val float32, labels []gometrics.Label) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sanitizeMetricName(key)
	counter, ok := s.counters[name]
	if !ok {
		counter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: name,
			Help: fmt.Sprintf("counter metric for %s", name),
		}, labelNames(labels))
		s.registry.MustRegister(counter)
		s.counters[name] = counter
	}
	counter.With(toPromLabels(labels)).Add(float64(val))
}

func (s *PrometheusSink) AddSample(key []string, val float32) {
	s.AddSampleWithLabels(key, val, nil)
}

func (s *PrometheusSink) AddSampleWithLabels(key []string, val float32, labels []gometrics.Label) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := sanitizeMetricName(key)
	histogram, ok := s.histograms[name]
	if !ok {
		histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    name,
			Help:    fmt.Sprintf("histogram metric for %s", name),
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15),
		}, labelNames(labels))
		s.registry.MustRegister(histogram)
		s.histograms[name] = histogram
	}
	histogram.With(toPromLabels(labels)).Observe(float64(val))
}

func sanitizeMetricName(key []string) string {
	if len(key) == 0 {
		return "unknown"
	}
	name := key[0]
	for _, k := range key[1:] {
		name += "_" + k
	}
	return prometheus.BuildFQName("", "", name)
}

func labelNames(labels []gometrics.Label) []string {
	if len(labels) == 0 {
		return nil
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.Name
	}
	return names
}

func toPromLabels(labels []gometrics.Label) prometheus.Labels {
	if len(labels) == 0 {
		return nil
	}
	out := make(prometheus.Labels, len(labels))
	for _, l := range labels {
		out[l.Name] = l.Value
	}
	return out
}
