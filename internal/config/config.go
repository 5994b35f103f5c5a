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

// Package config loads and hot-reloads ringlane's process configuration.
package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/arcentrix/ringlane/pkg/env"
	"github.com/arcentrix/ringlane/pkg/log"
	"github.com/arcentrix/ringlane/pkg/metrics"
	"github.com/arcentrix/ringlane/pkg/mq/kafka"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// RingConfig describes one sequencer/ring-buffer instance.
type RingConfig struct {
	Name         string        `mapstructure:"name"`
	BufferSize   int64         `mapstructure:"bufferSize"`
	WaitStrategy string        `mapstructure:"waitStrategy"` // blocking, sleeping, yielding, busyspin, phased
	SpinTimeout  time.Duration `mapstructure:"spinTimeout"`
	YieldTimeout time.Duration `mapstructure:"yieldTimeout"`
	Consumers    int           `mapstructure:"consumers"`
}

// SetDefaults fills unset fields with sane values.
func (r *RingConfig) SetDefaults() {
	if r.BufferSize == 0 {
		r.BufferSize = 1024
	}
	if r.WaitStrategy == "" {
		r.WaitStrategy = "blocking"
	}
	if r.SpinTimeout == 0 {
		r.SpinTimeout = 10 * time.Microsecond
	}
	if r.YieldTimeout == 0 {
		r.YieldTimeout = 10 * time.Microsecond
	}
	if r.Consumers == 0 {
		r.Consumers = 1
	}
}

// Validate reports a configuration error without mutating r.
func (r *RingConfig) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("ring config: name is required")
	}
	if r.BufferSize <= 0 || r.BufferSize&(r.BufferSize-1) != 0 {
		return fmt.Errorf("ring config %q: bufferSize must be a positive power of two, got %d", r.Name, r.BufferSize)
	}
	if r.Consumers < 1 {
		return fmt.Errorf("ring config %q: consumers must be at least 1", r.Name)
	}
	return nil
}

// CheckpointConfig controls where sequencer cursor checkpoints persist.
type CheckpointConfig struct {
	Dir      string        `mapstructure:"dir"`
	Interval time.Duration `mapstructure:"interval"`
}

func (c *CheckpointConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "./data/checkpoint"
	}
	if c.Interval == 0 {
		c.Interval = 5 * time.Second
	}
}

// AppConfig is the top-level process configuration.
type AppConfig struct {
	Log        log.Conf         `mapstructure:"log"`
	Metrics    metrics.Config   `mapstructure:"metrics"`
	Rings      []RingConfig     `mapstructure:"rings"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	AlertKafka kafka.Config     `mapstructure:"alertKafka"`
}

// applyEnvOverrides lets a handful of operational knobs be overridden
// without touching the config file, for the values an operator most
// often needs to flip per-environment (container port, checkpoint
// volume path) rather than per-deployment (ring topology stays in the
// file). Each falls back to the value already loaded from file when
// its env var is unset.
func (c *AppConfig) applyEnvOverrides() {
	c.Metrics.Host = env.GetEnvString("RINGLANE_METRICS_HOST", c.Metrics.Host)
	c.Metrics.Port = env.GetEnvInt("RINGLANE_METRICS_PORT", c.Metrics.Port)
	c.Metrics.Enable = env.GetEnvBool("RINGLANE_METRICS_ENABLE", c.Metrics.Enable)
	c.Checkpoint.Dir = env.GetEnvString("RINGLANE_CHECKPOINT_DIR", c.Checkpoint.Dir)
	c.Checkpoint.Interval = env.GetEnvDuration("RINGLANE_CHECKPOINT_INTERVAL", c.Checkpoint.Interval)
	c.AlertKafka.BootstrapServers = env.GetEnvString("RINGLANE_ALERT_KAFKA_BOOTSTRAP_SERVERS", c.AlertKafka.BootstrapServers)
}

func (c *AppConfig) setDefaults() {
	c.Metrics.SetDefaults()
	c.Checkpoint.SetDefaults()
	for i := range c.Rings {
		c.Rings[i].SetDefaults()
	}
}

func (c *AppConfig) validate() error {
	for i := range c.Rings {
		if err := c.Rings[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

var (
	cfg  AppConfig
	mu   sync.RWMutex
	once sync.Once
)

// Load reads path once per process, installs a watcher for hot reload,
// and returns the parsed configuration. Subsequent calls return the
// already-loaded config regardless of path.
func Load(path string) (*AppConfig, error) {
	var loadErr error
	once.Do(func() {
		loadErr = loadFile(path)
	})
	if loadErr != nil {
		return nil, loadErr
	}
	mu.RLock()
	defer mu.RUnlock()
	c := cfg
	return &c, nil
}

// Get returns the current configuration, reflecting the latest reload.
func Get() AppConfig {
	mu.RLock()
	defer mu.RUnlock()
	return cfg
}

func loadFile(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log.Infow("configuration file changed, reloading", "file", e.Name)
		if err := v.ReadInConfig(); err != nil {
			log.Errorw("failed to re-read configuration file", "error", err, "file", e.Name)
			return
		}
		var next AppConfig
		if err := v.Unmarshal(&next); err != nil {
			log.Errorw("failed to unmarshal configuration file", "error", err, "file", e.Name)
			return
		}
		next.applyEnvOverrides()
		next.setDefaults()
		if err := next.validate(); err != nil {
			log.Errorw("rejected invalid configuration reload, keeping previous config", "error", err, "file", e.Name)
			return
		}
		mu.Lock()
		cfg = next
		mu.Unlock()
		log.Infow("configuration reloaded", "file", e.Name)
	})

	var loaded AppConfig
	if err := v.Unmarshal(&loaded); err != nil {
		return fmt.Errorf("unmarshal config file: %w", err)
	}
	loaded.applyEnvOverrides()
	loaded.setDefaults()
	if err := loaded.validate(); err != nil {
		return err
	}

	mu.Lock()
	cfg = loaded
	mu.Unlock()

	log.Infow("config file loaded", "path", path)
	return nil
}
