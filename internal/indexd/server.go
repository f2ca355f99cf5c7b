// Package indexd wires together the ghost index daemon.
package indexd

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/veldra/ghosttape/internal/storage/registry"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
	"github.com/veldra/ghosttape/internal/telemetry/metric"
)

// Server is the assembled ghost index daemon.
type Server struct {
	cfg     *Config
	log     logger.Logger
	metrics *metric.Registry

	registry *registry.Registry
	watcher  *registry.Watcher

	httpServer *http.Server

	stopCh chan struct{}
	doneCh chan struct{}
}

// New assembles a daemon from the given configuration.
func New(cfg *Config, log logger.Logger) (*Server, error) {
	if err := Verify(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Default()
	}

	reg, err := registry.Open(registry.DefaultConfig(cfg.DataDir), log)
	if err != nil {
		return nil, err
	}

	watcher, err := registry.NewWatcher(reg, log)
	if err != nil {
		reg.Close()
		return nil, err
	}

	metrics := metric.NewRegistry()
	metrics.MustRegister(metric.NewCollector(func() metric.IndexStats {
		stats, err := reg.Stats()
		if err != nil {
			log.Error("failed to read index stats", "error", err)
			return metric.IndexStats{}
		}
		return metric.IndexStats{
			Traces:  stats.Traces,
			Maps:    stats.Maps,
			Skipped: int(stats.Skipped),
		}
	}))

	s := &Server{
		cfg:      cfg,
		log:      log,
		metrics:  metrics,
		registry: reg,
		watcher:  watcher,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}

	if cfg.Metrics.Enabled {
		s.httpServer = &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           s.handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	return s, nil
}

// Start performs the initial scan and launches the watcher, the rescan
// loop, and the metrics endpoint.
func (s *Server) Start(ctx context.Context) error {
	if err := s.rescan(ctx); err != nil {
		return err
	}

	if err := s.watcher.Watch(s.cfg.GhostDir); err != nil {
		return err
	}
	s.watcher.StartAsync()

	go s.rescanLoop()

	if s.httpServer != nil {
		go func() {
			s.log.Info("http endpoint listening", "addr", s.cfg.Metrics.Address)
			if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.log.Error("http endpoint error", "error", err)
			}
		}()
	}

	s.log.Info("ghost index daemon started", "ghost_dir", s.cfg.GhostDir)
	return nil
}

// Shutdown stops all daemon components.
func (s *Server) Shutdown(ctx context.Context) error {
	close(s.stopCh)
	<-s.doneCh

	var firstErr error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			firstErr = err
		}
	}
	if err := s.watcher.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.registry.Close(); err != nil && firstErr == nil {
		firstErr = err
	}

	s.log.Info("ghost index daemon stopped")
	return firstErr
}

// Registry exposes the underlying index for query surfaces.
func (s *Server) Registry() *registry.Registry {
	return s.registry
}

// rescan runs one full directory scan and updates the index gauges.
func (s *Server) rescan(ctx context.Context) error {
	result, err := s.registry.ScanDir(ctx, s.cfg.GhostDir)
	if err != nil {
		return err
	}

	s.metrics.IndexScanDuration.Observe(result.Elapsed.Seconds())
	s.metrics.TraceLoads.Add(float64(result.Indexed))
	s.metrics.LoadFailures.WithLabelValues(metric.ReasonCorrupt).Add(float64(result.SkippedCorrupt))
	s.metrics.LoadFailures.WithLabelValues(metric.ReasonUnsupportedSchema).Add(float64(result.SkippedUnsupported))
	s.metrics.LoadFailures.WithLabelValues(metric.ReasonIO).Add(float64(result.SkippedIO))

	stats, err := s.registry.Stats()
	if err != nil {
		return err
	}
	s.metrics.TracesIndexed.Set(float64(stats.Traces))
	return nil
}

// rescanLoop heals missed watcher events with periodic full scans.
func (s *Server) rescanLoop() {
	defer close(s.doneCh)

	if s.cfg.ScanInterval <= 0 {
		<-s.stopCh
		return
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			if err := s.rescan(ctx); err != nil {
				s.log.Error("periodic rescan failed", "error", err)
			}
			cancel()
		case <-s.stopCh:
			return
		}
	}
}
