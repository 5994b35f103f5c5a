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

// Package alertsink publishes sequencer alert and capacity-exhaustion
// events to an external collaborator so operators hear about backpressure
// without tailing logs.
package alertsink

import (
	"context"
	"fmt"
	"time"

	"github.com/arcentrix/ringlane/pkg/mq/kafka"
	"github.com/bytedance/sonic"
)

const alertsTopic = "RINGLANE_ALERTS"

// Reason enumerates why an alert was raised.
type Reason string

const (
	ReasonInsufficientCapacity Reason = "insufficient_capacity"
	ReasonBarrierAlerted       Reason = "barrier_alerted"
	ReasonConsumerStalled      Reason = "consumer_stalled"
)

// Alert is the payload published for every raised alert.
type Alert struct {
	Sequencer string    `json:"sequencer"`
	Reason    Reason    `json:"reason"`
	Sequence  int64     `json:"sequence"`
	Detail    string    `json:"detail,omitempty"`
	Time      time.Time `json:"time"`
}

// Sink publishes Alerts to Kafka. A nil *Sink is valid and every method
// on it is a no-op, so callers can wire alerting optionally without a
// feature flag.
type Sink struct {
	producer *kafka.Producer
}

// NewSink builds a Sink from cfg. If cfg.BootstrapServers is empty,
// NewSink returns (nil, nil): alerting is disabled, not an error.
func NewSink(cfg kafka.Config, clientID string) (*Sink, error) {
	if cfg.BootstrapServers == "" {
		return nil, nil
	}

	producer, err := kafka.NewProducer(
		cfg.BootstrapServers,
		clientID,
		kafka.WithProducerClientOptions(
			kafka.WithSecurityProtocol(cfg.SecurityProtocol),
			kafka.WithSaslMechanism(cfg.Sasl.Mechanism),
			kafka.WithSaslUsername(cfg.Sasl.Username),
			kafka.WithSaslPassword(cfg.Sasl.Password),
			kafka.WithSslCaFile(cfg.Ssl.CaFile),
			kafka.WithSslCertFile(cfg.Ssl.CertFile),
			kafka.WithSslKeyFile(cfg.Ssl.KeyFile),
			kafka.WithSslPassword(cfg.Ssl.Password),
		),
		kafka.WithProducerAcks(cfg.Acks),
		kafka.WithProducerRetries(cfg.Retries),
		kafka.WithProducerCompression(cfg.Compression),
	)
	if err != nil {
		return nil, fmt.Errorf("create alert producer: %w", err)
	}
	return &Sink{producer: producer}, nil
}

// Publish sends an Alert. A nil Sink silently drops it.
func (s *Sink) Publish(ctx context.Context, alert Alert) error {
	if s == nil || s.producer == nil {
		return nil
	}
	payload, err := sonic.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	return s.producer.Send(ctx, alertsTopic, alert.Sequencer, payload, map[string]string{
		"reason": string(alert.Reason),
	})
}

// Close releases the underlying producer, if any.
func (s *Sink) Close() {
	if s == nil || s.producer == nil {
		return
	}
	s.producer.Close()
}
