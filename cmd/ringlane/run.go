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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/arcentrix/ringlane/internal/alertsink"
	"github.com/arcentrix/ringlane/internal/checkpoint"
	"github.com/arcentrix/ringlane/internal/config"
	"github.com/arcentrix/ringlane/internal/pipeline"
	"github.com/arcentrix/ringlane/pkg/log"
	"github.com/arcentrix/ringlane/pkg/metrics"
	"github.com/arcentrix/ringlane/pkg/ringbuffer"
	"github.com/arcentrix/ringlane/pkg/safe"
	"github.com/arcentrix/ringlane/pkg/sequencing"
	gometrics "github.com/hashicorp/go-metrics"
	"github.com/spf13/cobra"
)

var configPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "run producers and consumers over the configured rings until interrupted",
	RunE:  runRings,
}

func init() {
	runCmd.Flags().StringVar(&configPath, "config", "config.yaml", "path to the ringlane config file")
}

// message is the demo payload published onto every ring. A real
// integration replaces this with its own event type; RingBuffer and
// pipeline.Executor are generic over it.
type message struct {
	Producer int
	Seq      int64
	Emitted  time.Time
}

func runRings(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log.MustInit(&cfg.Log)

	metricsServer := metrics.NewServer(cfg.Metrics)
	if err := metricsServer.Start(); err != nil {
		return fmt.Errorf("start metrics server: %w", err)
	}

	alerts, err := alertsink.NewSink(cfg.AlertKafka, "ringlane")
	if err != nil {
		return fmt.Errorf("create alert sink: %w", err)
	}
	defer alerts.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rings []*ringDemo
	for _, ringCfg := range cfg.Rings {
		r, err := newRingDemo(ringCfg, alerts, metricsServer.GetSink())
		if err != nil {
			return fmt.Errorf("start ring %q: %w", ringCfg.Name, err)
		}
		r.start(ctx)
		rings = append(rings, r)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Infow("shutdown signal received, draining rings")

	cancel()
	for _, r := range rings {
		r.stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Stop(shutdownCtx); err != nil {
		log.Errorw("metrics server shutdown error", "error", err)
	}
	return nil
}

// ringDemo wires one configured ring to its producers, consumers,
// checkpoint store and metrics observer.
type ringDemo struct {
	name       string
	rb         *ringbuffer.RingBuffer[message]
	store      *checkpoint.Store
	observer   *metrics.SequencerObserver
	alerts     *alertsink.Sink
	executors  []*pipeline.Executor[message]
	producers  int
	seqCounter atomic.Int64
	done       chan struct{}
}

func newRingDemo(cfg config.RingConfig, alerts *alertsink.Sink, sink gometrics.MetricSink) (*ringDemo, error) {
	waitStrategy := buildWaitStrategy(cfg)
	rb, err := ringbuffer.NewRingBuffer[message](cfg.BufferSize, waitStrategy)
	if err != nil {
		return nil, err
	}

	store := checkpoint.NewStore(filepath.Join(config.Get().Checkpoint.Dir, cfg.Name))
	if last, found, err := store.Load(); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	} else if found {
		rb.RecoverTo(last)
		log.Infow("recovered ring from checkpoint", "ring", cfg.Name, "sequence", last)
	}

	observer := metrics.NewSequencerObserver(sink, cfg.Name)

	r := &ringDemo{
		name:      cfg.Name,
		rb:        rb,
		store:     store,
		observer:  observer,
		alerts:    alerts,
		producers: 1,
		done:      make(chan struct{}),
	}

	for i := 0; i < cfg.Consumers; i++ {
		handler := pipeline.HandlerFunc[message](r.handleMessage)
		r.executors = append(r.executors, pipeline.NewExecutor(fmt.Sprintf("%s-consumer-%d", cfg.Name, i), rb, handler, alerts))
	}
	return r, nil
}

func (r *ringDemo) handleMessage(event message, sequence int64, endOfBatch bool) error {
	if endOfBatch {
		log.Debugw("ring batch drained", "ring", r.name, "sequence", sequence)
	}
	return nil
}

func buildWaitStrategy(cfg config.RingConfig) sequencing.WaitStrategy {
	switch strings.ToLower(cfg.WaitStrategy) {
	case "sleeping":
		return sequencing.NewSleepingWaitStrategy()
	case "yielding":
		return sequencing.NewYieldingWaitStrategy()
	case "busyspin":
		return sequencing.NewBusySpinWaitStrategy()
	case "phased":
		return sequencing.NewPhasedBackoffWaitStrategy(cfg.SpinTimeout, cfg.YieldTimeout, sequencing.NewSleepingWaitStrategy())
	default:
		return sequencing.NewBlockingWaitStrategy()
	}
}

func (r *ringDemo) start(ctx context.Context) {
	for _, executor := range r.executors {
		executor.Start(ctx)
	}
	safe.Go(func() { r.produce(ctx) })
	safe.Go(func() { r.checkpointLoop(ctx) })
}

func (r *ringDemo) produce(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(r.done)
			return
		default:
		}
		seq, err := r.rb.Publish(message{
			Producer: 0,
			Seq:      r.seqCounter.Add(1),
			Emitted:  time.Now(),
		})
		if err != nil {
			log.Errorw("publish failed", "ring", r.name, "error", err)
			continue
		}
		r.observer.IncPublished(1)
		r.observer.ObserveCursor(seq)
		r.observer.ObserveRemainingCapacity(r.rb.RemainingCapacity())
	}
}

func (r *ringDemo) checkpointLoop(ctx context.Context) {
	ticker := time.NewTicker(config.Get().Checkpoint.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = r.store.Save(r.rb.Cursor())
			return
		case <-ticker.C:
			if err := r.store.Save(r.rb.Cursor()); err != nil {
				log.Errorw("checkpoint save failed", "ring", r.name, "error", err)
			}
		}
	}
}

func (r *ringDemo) stop() {
	<-r.done
	for _, executor := range r.executors {
		executor.Stop()
	}
}
