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
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/arcentrix/ringlane/pkg/log"
	"github.com/arcentrix/ringlane/pkg/safe"
	gometrics "github.com/hashicorp/go-metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds metrics server configuration.
type Config struct {
	Host   string
	Port   int
	Enable bool
	Path   string
}

// SetDefaults fills unset fields with the package defaults.
func (c *Config) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8082
	}
	if c.Path == "" {
		c.Path = "/metrics"
	}
}

// Server exposes a Prometheus registry over HTTP and, through GetSink,
// hands out a gometrics.MetricSink backed by that registry so sequencer
// components can emit gauges and counters without importing prometheus
// directly.
type Server struct {
	config   Config
	server   *http.Server
	registry *prometheus.Registry
	sink     *PrometheusSink
	mu       sync.Mutex
}

// NewServer builds a metrics Server with the Go runtime and process
// collectors already registered.
func NewServer(config Config) *Server {
	config.SetDefaults()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Server{
		config:   config,
		registry: registry,
		sink:     newPrometheusSink(registry),
	}
}

// GetSink returns the gometrics sink backing this server's registry.
func (s *Server) GetSink() gometrics.MetricSink {
	return s.sink
}

// GetRegistry returns the underlying Prometheus registry, for
// registering collectors this package doesn't know about.
func (s *Server) GetRegistry() *prometheus.Registry {
	return s.registry
}

// RegisterCollector registers an additional prometheus.Collector.
func (s *Server) RegisterCollector(collector prometheus.Collector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.registry.Register(collector); err != nil {
		return fmt.Errorf("register collector: %w", err)
	}
	return nil
}

// Start launches the metrics HTTP listener in the background. A no-op
// if the server is disabled.
func (s *Server) Start() error {
	if !s.config.Enable {
		log.Info("metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(s.config.Path, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{Addr: addr, Handler: mux}

	safe.Go(func() {
		log.Infow("metrics listener started", "address", addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw("metrics listener stopped", "error", err)
		}
	})

	return nil
}

// Stop gracefully shuts the metrics listener down.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}
